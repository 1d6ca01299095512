package rag

import (
	"regexp"
	"strings"
)

const maxSponsorAmounts = 3

// SponsorHints are approximate cues pulled from free-text sponsor context.
// They only steer the prompt and are never treated as parsed facts.
type SponsorHints struct {
	Name            string
	HasFocusAreas   bool
	HasRequirements bool
	Amounts         []string
}

var (
	sponsorNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:sponsor|funder|grantor|foundation|organization|company).*?[:is]\s*([A-Z][^.\n]{5,50})`),
		regexp.MustCompile(`(?i)(?:from|by|through)\s+([A-Z][^.\n]{5,50})(?:\s+foundation|\s+grants?|\s+program)?`),
		regexp.MustCompile(`(?i)([A-Z][A-Za-z\s&]{5,50})(?:\s+Foundation|\s+Grants?|\s+Program|\s+Initiative)`),
	}
	amountRe = regexp.MustCompile(`\$[\d,]+(?:,\d{3})*(?:\.\d{2})?`)

	focusMarkers       = []string{"priorit", "focus", "goal", "mission", "objective"}
	requirementMarkers = []string{"requirement", "must", "should", "criteria", "eligib"}
)

// ExtractSponsorHints scans sponsor context for a likely sponsor name,
// focus-area and requirement language, and up to three dollar amounts.
func ExtractSponsorHints(text string) SponsorHints {
	var h SponsorHints
	text = strings.TrimSpace(text)
	if text == "" {
		return h
	}

	for _, re := range sponsorNamePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			h.Name = strings.TrimSpace(m[1])
			break
		}
	}

	lower := strings.ToLower(text)
	h.HasFocusAreas = containsAny(lower, focusMarkers)
	h.HasRequirements = containsAny(lower, requirementMarkers)

	h.Amounts = amountRe.FindAllString(text, maxSponsorAmounts)
	return h
}

// Empty reports whether no hint was found.
func (h SponsorHints) Empty() bool {
	return h.Name == "" && !h.HasFocusAreas && !h.HasRequirements && len(h.Amounts) == 0
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
