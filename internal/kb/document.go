// Package kb loads the knowledge base: a directory tree of organization
// documents whose folder names encode a topical priority tier.
package kb

import (
	"strings"
)

// Priority tiers assigned from a document's folder path.
const (
	PriorityQuantitative     = 4.0
	PriorityQualitative      = 3.0
	PriorityGrantExample     = 2.0
	PriorityDonationsSummary = 2.0
	PriorityContact          = 1.0
	PriorityDefault          = 1.5
)

// Document is one loaded knowledge-base file. It is immutable after load.
type Document struct {
	Path     string  // Relative path from the knowledge-base root, slash separated
	Filename string  // Base name of the file
	Title    string  // Heading-derived or filename-derived title
	Content  string  // Extracted plain text
	Priority float64 // Topical tier weight derived from Path
}

// Priority returns the tier weight for a relative document path.
//
// Quantitative material ranks highest, except the donations summary, which is
// demoted so historical fundraising totals are not favored in retrieval.
func Priority(relPath string) float64 {
	p := foldPath(relPath)
	switch {
	case strings.Contains(p, "quantitative"):
		if strings.Contains(p, "donations_summary") {
			return PriorityDonationsSummary
		}
		return PriorityQuantitative
	case strings.Contains(p, "qualitative"):
		return PriorityQualitative
	case strings.Contains(p, "grant_example"):
		return PriorityGrantExample
	case strings.Contains(p, "contact"):
		return PriorityContact
	default:
		return PriorityDefault
	}
}

// foldPath lower-cases a path and folds dashes and spaces to underscores so
// "Donations Summary" and "donations-summary" match the same marker.
func foldPath(p string) string {
	return strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(p))
}
