package analysis

import (
	"testing"

	"github.com/msmahdinejad/smart-monitoring-system/internal/models"
)

func TestTestResponseFixedPattern(t *testing.T) {
	r := testResponse("fixed", "danger")
	if r.Status != models.StatusDanger || r.ThreatLevel != 9 {
		t.Errorf("fixed danger scenario = %s/%d", r.Status, r.ThreatLevel)
	}
}

func TestTestResponseFixedUnknownKeyFallsBack(t *testing.T) {
	r := testResponse("fixed", "no-such-scenario")
	if r.Status != models.StatusNormal {
		t.Errorf("unknown fixed key should fall back to normal, got %s", r.Status)
	}
}

func TestTestResponseRandomAlwaysKnown(t *testing.T) {
	for i := 0; i < 50; i++ {
		r := testResponse("random", "")
		found := false
		for _, s := range testScenarios {
			if s.Summary == r.Summary {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("random pattern returned unknown scenario: %q", r.Summary)
		}
	}
}

func TestTestScenarioKeysSorted(t *testing.T) {
	keys := TestScenarioKeys()
	if len(keys) != len(testScenarios) {
		t.Fatalf("got %d keys, want %d", len(keys), len(testScenarios))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Errorf("keys not sorted: %q before %q", keys[i-1], keys[i])
		}
	}
}
