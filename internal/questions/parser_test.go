package questions

import (
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace only",
			input: "  \n\t\n ",
			want:  nil,
		},
		{
			name:  "one question per line",
			input: "What is X?\nWhat is Y?",
			want:  []string{"What is X?", "What is Y?"},
		},
		{
			name:  "numbered list",
			input: "1. First question here\n2. Second question here",
			want:  []string{"First question here", "Second question here"},
		},
		{
			name:  "case and whitespace duplicates collapse to first",
			input: "What is your mission?\nwhat is   YOUR mission?",
			want:  []string{"What is your mission?"},
		},
		{
			name:  "prefixes and bullets",
			input: "Q: What is your budget?\n- Who are your partners?\n• How do you measure impact?",
			want:  []string{"What is your budget?", "Who are your partners?", "How do you measure impact?"},
		},
		{
			name:  "parenthesized markers get terminal punctuation",
			input: "(a) Describe your program goals\n(b) Explain your evaluation plan",
			want:  []string{"Describe your program goals.", "Explain your evaluation plan."},
		},
		{
			name:  "roman numerals",
			input: "I. What is the need?\nII. How will funds be used?",
			want:  []string{"What is the need?", "How will funds be used?"},
		},
		{
			name:  "continuation lines are joined",
			input: "Describe the community you serve\nand the outcomes you expect",
			want:  []string{"Describe the community you serve and the outcomes you expect."},
		},
		{
			name:  "interrogative word earns a question mark",
			input: "Please explain how the program reaches rural families",
			want:  []string{"Please explain how the program reaches rural families?"},
		},
		{
			name:  "markdown bold and heading",
			input: "**What is your mission?**\n## How many people do you serve?",
			want:  []string{"What is your mission?", "How many people do you serve?"},
		},
		{
			name:  "trailing colon and CRLF",
			input: "Question: Describe your staff qualifications:\r\nWhat is your timeline?",
			want:  []string{"Describe your staff qualifications.", "What is your timeline?"},
		},
		{
			name:  "formatting artifacts and noise are dropped",
			input: "Question\n\n$$$ %%% ^^^ &&&\n\nWhat is your annual budget?",
			want:  []string{"What is your annual budget?"},
		},
		{
			name:  "blank line separates questions",
			input: "Tell us about your\norganization history\n\nexplain the budget\nin detail please",
			want:  []string{"Tell us about your organization history.", "Explain the budget in detail please."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Parse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSentences(t *testing.T) {
	c := newCollector()
	parseSentences("Tell me about it. Also the budget. What else?", c)

	want := []string{"Tell me about it. Also the budget.", "What else?"}
	if !slices.Equal(c.items, want) {
		t.Errorf("parseSentences() = %q, want %q", c.items, want)
	}
}

func TestParseSentencesKeepsInnerDots(t *testing.T) {
	c := newCollector()
	parseSentences("Version 2.0 is here and we want details. Is it funded?", c)

	want := []string{"Version 2.0 is here and we want details. Is it funded?"}
	if !slices.Equal(c.items, want) {
		t.Errorf("parseSentences() = %q, want %q", c.items, want)
	}
}

func TestParseBlocks(t *testing.T) {
	c := newCollector()
	parseBlocks("1. Describe the program\nin a few lines\n\nlist your partners please", c)

	want := []string{"Describe the program in a few lines", "List your partners please"}
	if !slices.Equal(c.items, want) {
		t.Errorf("parseBlocks() = %q, want %q", c.items, want)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bold", input: "**What** is this?", want: "What is this?"},
		{name: "italic", input: "What is *this*?", want: "What is this?"},
		{name: "inline code", input: "What is `x`?", want: "What is x?"},
		{name: "heading", input: "### what is this?", want: "What is this?"},
		{name: "collapse whitespace", input: "what   is\n\tthis?", want: "What is this?"},
		{name: "leading colon", input: ": what is this?", want: "What is this?"},
		{name: "trailing dash", input: "What is this -", want: "What is this"},
		{name: "non-ascii first letter", input: "évaluation plan details", want: "Évaluation plan details"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "normal question", input: "What is your mission?", want: true},
		{name: "too short", input: "Why?", want: false},
		{name: "two words without question mark", input: "Organization history", want: false},
		{name: "two words with question mark", input: "Budget breakdown?", want: true},
		{name: "artifact", input: "Question", want: false},
		{name: "mostly symbols", input: "@@ ## $$ %% ^^ && **", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.input); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"What is X?", " what is  x? ", "", "What is Y?"})
	want := []string{"What is X?", "What is Y?"}
	if !slices.Equal(got, want) {
		t.Errorf("Dedupe() = %q, want %q", got, want)
	}
}
