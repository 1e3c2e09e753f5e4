package analysis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/msmahdinejad/smart-monitoring-system/internal/models"
)

var (
	statusRe     = regexp.MustCompile(`(?i)STATUS:\s*([A-Z]+)`)
	confidenceRe = regexp.MustCompile(`(?i)CONFIDENCE:\s*([0-9]+(?:\.[0-9]+)?)`)
	threatRe     = regexp.MustCompile(`(?i)THREAT[_\s]*LEVEL:\s*([0-9]+)`)
	summaryRe    = regexp.MustCompile(`(?im)SUMMARY:\s*(.+?)\s*$`)
	actionRe     = regexp.MustCompile(`(?im)ACTION:\s*(.+?)\s*$`)
	analysisRe   = regexp.MustCompile(`(?is)ANALYSIS:\s*(.+?)(?:\nACTION:|$)`)
)

// Parse extracts structured fields from a loosely formatted AI response by
// locating case-insensitive "LABEL: value" lines. It is total: malformed or
// unlabeled input degrades field-by-field to the documented defaults
// (status NORMAL, confidence 50.0, threat level 0) and never fails.
func Parse(text string) models.AnalysisResult {
	result := models.AnalysisResult{
		Status:      models.StatusNormal,
		Confidence:  0.0,
		ThreatLevel: 0,
		Analysis:    text,
	}

	if m := statusRe.FindStringSubmatch(text); m != nil {
		switch status := strings.ToUpper(m[1]); status {
		case models.StatusNormal, models.StatusWarning, models.StatusDanger:
			result.Status = status
		}
	}

	if m := confidenceRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			result.Confidence = v
		}
	}

	if m := threatRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v >= 0 && v <= 10 {
			result.ThreatLevel = v
		}
	}

	if m := summaryRe.FindStringSubmatch(text); m != nil {
		result.Summary = strings.TrimSpace(m[1])
	}

	if m := actionRe.FindStringSubmatch(text); m != nil {
		result.Action = strings.TrimSpace(m[1])
	}

	if m := analysisRe.FindStringSubmatch(text); m != nil {
		result.Analysis = strings.TrimSpace(m[1])
	}

	// A response with no usable confidence value gets the neutral default.
	if result.Confidence == 0.0 {
		result.Confidence = 50.0
	}

	return result
}
