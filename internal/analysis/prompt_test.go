package analysis

import (
	"strings"
	"testing"
)

func TestGeneratePromptKnownTypes(t *testing.T) {
	for _, typ := range []string{"security", "presence", "lighting", "classroom", "workplace"} {
		t.Run(typ, func(t *testing.T) {
			p := GeneratePrompt(typ, "formal", "")
			if !strings.Contains(p, "STATUS: [NORMAL/WARNING/DANGER]") {
				t.Error("prompt missing response contract")
			}
			if !strings.Contains(p, styleInstructions["formal"]) {
				t.Error("prompt missing style instruction")
			}
		})
	}
}

func TestGeneratePromptCustomType(t *testing.T) {
	p := GeneratePrompt("custom", "technical", "watch the loading dock")
	if !strings.Contains(p, "watch the loading dock") {
		t.Error("custom context not embedded in prompt")
	}
	if !strings.Contains(p, styleInstructions["technical"]) {
		t.Error("style instruction missing")
	}
}

func TestGeneratePromptCustomTypeWithoutContext(t *testing.T) {
	p := GeneratePrompt("custom", "formal", "  ")
	if !strings.Contains(p, "monitoring specialist") {
		t.Error("expected generic prompt when custom context is blank")
	}
}

func TestGeneratePromptUnknownTypeAndStyle(t *testing.T) {
	p := GeneratePrompt("submarine", "shouty", "")
	if !strings.Contains(p, "general environmental monitoring") {
		t.Error("unknown type should fall back to the general template")
	}
	if !strings.Contains(p, styleInstructions["formal"]) {
		t.Error("unknown style should fall back to formal")
	}
}

func TestGeneratePromptContextAppendedForKnownType(t *testing.T) {
	p := GeneratePrompt("security", "formal", "focus on the back door")
	if !strings.Contains(p, "Focus: focus on the back door") {
		t.Error("context not appended as focus line")
	}
}

func TestGeneratePromptTruncatesLongContext(t *testing.T) {
	long := strings.Repeat("x", 300)
	p := GeneratePrompt("custom", "formal", long)
	if strings.Contains(p, long) {
		t.Error("custom context should be truncated")
	}
	if !strings.Contains(p, strings.Repeat("x", 100)) {
		t.Error("truncated context missing")
	}
}

func TestSupportedLists(t *testing.T) {
	types := SupportedMonitoringTypes()
	for _, typ := range types {
		if typ == "custom" {
			continue
		}
		if _, ok := monitoringPrompts[typ]; !ok {
			t.Errorf("supported type %q has no prompt template", typ)
		}
	}
	for _, style := range SupportedPromptStyles() {
		if _, ok := styleInstructions[style]; !ok {
			t.Errorf("supported style %q has no instruction", style)
		}
	}
}
