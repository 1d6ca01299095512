package kb

import "testing"

func TestPriority(t *testing.T) {
	tests := []struct {
		name string
		path string
		want float64
	}{
		{name: "quantitative", path: "quantitative/impact_stats.md", want: PriorityQuantitative},
		{name: "quantitative uppercase folder", path: "Quantitative/Program_Numbers.txt", want: PriorityQuantitative},
		{name: "donations summary demoted", path: "quantitative/donations_summary.md", want: PriorityDonationsSummary},
		{name: "donations summary with dashes", path: "quantitative/Donations-Summary-2023.pdf", want: PriorityDonationsSummary},
		{name: "donations summary outside quantitative", path: "archive/donations_summary.md", want: PriorityDefault},
		{name: "qualitative", path: "qualitative/stories.md", want: PriorityQualitative},
		{name: "grant examples", path: "grant_examples/2022_city_grant.docx", want: PriorityGrantExample},
		{name: "grant examples with spaces", path: "Grant Examples/city.md", want: PriorityGrantExample},
		{name: "contact", path: "contact/address.md", want: PriorityContact},
		{name: "default", path: "misc/notes.md", want: PriorityDefault},
		{name: "root file", path: "readme.txt", want: PriorityDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Priority(tt.path); got != tt.want {
				t.Errorf("Priority(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "impact_stats.md", want: "Impact Stats"},
		{input: "dir/annual-report-2023.pdf", want: "Annual Report 2023"},
		{input: "contact.txt", want: "Contact"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := TitleFromFilename(tt.input); got != tt.want {
				t.Errorf("TitleFromFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
