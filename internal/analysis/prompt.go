package analysis

import (
	"fmt"
	"strings"
)

// Prompt templates per monitoring type. Each instructs the model to answer
// in the labeled-line contract that Parse understands.
var monitoringPrompts = map[string]string{
	"security": `I'm your security guard monitoring this location. Compare these surveillance images from my patrol.

I check for: unauthorized persons, moved/stolen items, open doors/windows, suspicious behavior, equipment changes, lighting tampering.

IMPORTANT: Respond in plain text only. Do not use any formatting like ** or _ or other markdown.

STATUS: [NORMAL/WARNING/DANGER]
CONFIDENCE: [0-100]
THREAT_LEVEL: [0-10]
SUMMARY: [Security status in one sentence]
ANALYSIS: [My security assessment]
ACTION: [My security recommendations]`,

	"presence": `I'm your facility supervisor tracking occupancy. Analyzing these images for presence changes.

I monitor: people entering/leaving, occupant numbers, body positions, belongings, seating changes, activity signs.

IMPORTANT: Respond in plain text only. Do not use any formatting like ** or _ or other markdown.

STATUS: [NORMAL/WARNING/DANGER]
CONFIDENCE: [0-100]
THREAT_LEVEL: [0-10]
SUMMARY: [Occupancy status in one sentence]
ANALYSIS: [My facility assessment]
ACTION: [My management recommendations]`,

	"lighting": `I'm your electrical technician checking power systems. Examining these images for electrical changes.

I inspect: lights ON/OFF, brightness changes, shadows, screens, emergency lighting, natural light, indicators, power issues.

IMPORTANT: Respond in plain text only. Do not use any formatting like ** or _ or other markdown.

STATUS: [NORMAL/WARNING/DANGER]
CONFIDENCE: [0-100]
THREAT_LEVEL: [0-10]
SUMMARY: [Electrical status in one sentence]
ANALYSIS: [My technical assessment]
ACTION: [My electrical recommendations]`,

	"classroom": `I'm your classroom teacher observing the learning environment. Reviewing these images for educational insights.

I assess: student attendance/engagement, teacher presence, participation, equipment use, organization, attention, group work, disruptions.

IMPORTANT: Respond in plain text only. Do not use any formatting like ** or _ or other markdown.

STATUS: [NORMAL/WARNING/DANGER]
CONFIDENCE: [0-100]
THREAT_LEVEL: [0-10]
SUMMARY: [Classroom status in one sentence]
ANALYSIS: [My educational assessment]
ACTION: [My teaching recommendations]`,

	"workplace": `I'm your safety officer evaluating workplace conditions. Analyzing these images for safety and efficiency.

I check: employee activity, safety compliance, equipment status, emergency access, organization, hazards, occupancy, productivity.

IMPORTANT: Respond in plain text only. Do not use any formatting like ** or _ or other markdown.

STATUS: [NORMAL/WARNING/DANGER]
CONFIDENCE: [0-100]
THREAT_LEVEL: [0-10]
SUMMARY: [Workplace status in one sentence]
ANALYSIS: [My safety assessment]
ACTION: [My compliance recommendations]`,
}

const customPromptTemplate = `I'm your specialist monitoring professional. Analyzing these images for your specific requirements: %s

IMPORTANT: Respond in plain text only. Do not use any formatting like ** or _ or other markdown.

STATUS: [NORMAL/WARNING/DANGER]
CONFIDENCE: [0-100]
THREAT_LEVEL: [0-10]
SUMMARY: [Status in one sentence]
ANALYSIS: [My specialist assessment]
ACTION: [My expert recommendations]`

const genericPrompt = `I'm your monitoring specialist. Compare these images and analyze significant changes.

IMPORTANT: Respond in plain text only. Do not use any formatting like ** or _ or other markdown.

STATUS: [NORMAL/WARNING/DANGER]
CONFIDENCE: [0-100]
THREAT_LEVEL: [0-10]
SUMMARY: [Main change in one sentence]
ANALYSIS: [Detailed change description]
ACTION: [Recommended response]`

var styleInstructions = map[string]string{
	"formal":    "Use formal professional language for official reports. Write in plain text without any bold, italic, or markdown formatting.",
	"technical": "Provide technical details with measurements and expert terminology. Use plain text only, no formatting.",
	"casual":    "Explain like a helpful colleague in simple terms. Use plain text without any formatting.",
	"security":  "Communicate like experienced security personnel focused on threats. Use plain text only.",
	"report":    "Present findings like a consultant briefing executives. Write in plain text without formatting.",
}

// GeneratePrompt renders the analysis prompt for a monitoring type, style
// and optional free-text context. Pure function, no state.
func GeneratePrompt(monitoringType, style, customContext string) string {
	customContext = strings.TrimSpace(customContext)

	var base string
	switch {
	case monitoringType == "custom" && customContext != "":
		base = fmt.Sprintf(customPromptTemplate, truncate(customContext, 100))
	case monitoringType == "custom":
		base = genericPrompt
	default:
		var ok bool
		if base, ok = monitoringPrompts[monitoringType]; !ok {
			base = fmt.Sprintf(customPromptTemplate, "general environmental monitoring")
		}
	}

	instruction, ok := styleInstructions[style]
	if !ok {
		instruction = styleInstructions["formal"]
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\nStyle: ")
	b.WriteString(instruction)

	if monitoringType != "custom" && customContext != "" {
		b.WriteString("\nFocus: ")
		b.WriteString(truncate(customContext, 80))
	}

	b.WriteString("\n\nRemember: Use only plain text in your response. No bold, italic, asterisks, underscores, or any markdown formatting.")
	return b.String()
}

// SupportedMonitoringTypes lists the known prompt templates plus "custom".
func SupportedMonitoringTypes() []string {
	return []string{"security", "presence", "lighting", "classroom", "workplace", "custom"}
}

// SupportedPromptStyles lists the known style modifiers.
func SupportedPromptStyles() []string {
	return []string{"formal", "technical", "casual", "security", "report"}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
