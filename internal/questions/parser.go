// Package questions turns freeform pasted text into a clean, deduplicated
// list of grant questions.
package questions

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// minQuestionRunes is the shortest text accepted as a question.
	minQuestionRunes = 10
	// maxHeadingWords is the longest capitalized line treated as a question start.
	maxHeadingWords = 15
	// punctuateAfterRunes is the length above which missing terminal punctuation is added.
	punctuateAfterRunes = 20
)

var (
	crRe         = regexp.MustCompile(`\r\n?`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	blockSplitRe = regexp.MustCompile(`\n{2,}`)
	terminatorRe = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

	// markerPatterns are applied in order to every line.
	markerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:Q:|Question:)\s*`),
		regexp.MustCompile(`^\d+[.)]\s*`),
		regexp.MustCompile(`^[a-zA-Z][.)]\s*`),
		regexp.MustCompile(`^[-•→▶▪▫]\s*`),
		regexp.MustCompile(`^\*\s+`),
		regexp.MustCompile(`^[IVX]+[.)]\s*`),
		regexp.MustCompile(`(?i)^\([a-z0-9]+\)\s*`),
		regexp.MustCompile(`:\s*$`),
	}

	interrogatives   = `what|who|when|where|why|how|which|can|could|would|should|is|are|do|does|did|will|has|have`
	interrogativeRe  = regexp.MustCompile(`(?i)^(?:` + interrogatives + `)\b`)
	interrogativeAny = regexp.MustCompile(`(?i)\b(?:` + interrogatives + `)\b`)

	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*]+)\*`)
	codeRe       = regexp.MustCompile("`([^`]+)`")
	headingRe    = regexp.MustCompile(`#{1,6}\s+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	leadPunctRe  = regexp.MustCompile(`^[:\-–—]\s+`)
	trailPunctRe = regexp.MustCompile(`\s+[:\-–—]$`)

	formattingArtifacts = map[string]struct{}{
		"question": {}, "answer": {}, "q:": {}, "a:": {}, "note:": {}, "see:": {},
	}
)

// Parse splits raw user input into an ordered, deduplicated list of questions.
//
// Strategies run as a fallback cascade: line accumulation first, then
// blank-line blocks when at most one question was found, then sentence
// boundaries when none was found, and finally the whole input as one question.
func Parse(raw string) []string {
	text := normalize(raw)
	if text == "" {
		return nil
	}

	c := newCollector()
	parseLines(text, c)

	if len(c.items) <= 1 && strings.Contains(text, "\n\n") {
		parseBlocks(text, c)
	}
	if len(c.items) == 0 {
		parseSentences(text, c)
	}
	if len(c.items) == 0 {
		c.add(text)
	}

	return finalize(c.items)
}

// Clean strips markdown markup and stray punctuation from a candidate
// question and capitalizes its first letter.
func Clean(q string) string {
	q = boldRe.ReplaceAllString(q, "$1")
	q = italicRe.ReplaceAllString(q, "$1")
	q = codeRe.ReplaceAllString(q, "$1")
	q = headingRe.ReplaceAllString(q, "")
	q = strings.TrimSpace(whitespaceRe.ReplaceAllString(q, " "))
	q = leadPunctRe.ReplaceAllString(q, "")
	q = trailPunctRe.ReplaceAllString(q, "")

	r, size := utf8.DecodeRuneInString(q)
	if size > 0 && unicode.IsLower(r) {
		q = string(unicode.ToUpper(r)) + q[size:]
	}
	return q
}

// IsValid reports whether q looks like a real question rather than a
// formatting artifact or symbol noise.
func IsValid(q string) bool {
	if _, artifact := formattingArtifacts[strings.ToLower(strings.TrimSpace(q))]; artifact {
		return false
	}

	n := utf8.RuneCountInString(q)
	if n < minQuestionRunes {
		return false
	}
	if len(strings.Fields(q)) < 3 && !strings.HasSuffix(q, "?") {
		return false
	}

	textual := 0
	for _, r := range q {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			textual++
		}
	}
	return float64(textual) >= float64(n)*0.5
}

// Key returns the deduplication key for a question: lower-cased, trimmed,
// with internal whitespace collapsed.
func Key(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// Dedupe removes questions whose Key repeats an earlier entry, keeping the
// first occurrence and the original order. Blank entries are dropped.
func Dedupe(qs []string) []string {
	seen := make(map[string]struct{}, len(qs))
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		key := Key(q)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(q))
	}
	return out
}

func normalize(raw string) string {
	text := crRe.ReplaceAllString(strings.TrimSpace(raw), "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func stripMarkers(line string) string {
	for _, re := range markerPatterns {
		line = re.ReplaceAllString(line, "")
	}
	return strings.TrimSpace(line)
}

// startsQuestion reports whether a marker-stripped line opens a new question.
func startsQuestion(line string) bool {
	if strings.HasSuffix(line, "?") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(line)
	if unicode.IsUpper(r) && len(strings.Fields(line)) <= maxHeadingWords {
		return true
	}
	return interrogativeRe.MatchString(line)
}

func parseLines(text string, c *collector) {
	var current []string
	flush := func() {
		if len(current) > 0 {
			c.add(strings.Join(current, " "))
			current = current[:0]
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		line = stripMarkers(line)
		if line == "" {
			continue
		}
		if startsQuestion(line) && len(current) > 0 {
			flush()
		}
		current = append(current, line)
	}
	flush()
}

func parseBlocks(text string, c *collector) {
	for _, block := range blockSplitRe.Split(text, -1) {
		if block = strings.TrimSpace(block); block != "" {
			c.add(stripMarkers(block))
		}
	}
}

func parseSentences(text string, c *collector) {
	var current []string
	flush := func() {
		if len(current) > 0 {
			c.add(strings.Join(current, " "))
			current = current[:0]
		}
	}

	prev := 0
	for _, loc := range terminatorRe.FindAllStringIndex(text, -1) {
		sentence := strings.TrimSpace(text[prev:loc[1]])
		prev = loc[1]
		if sentence == "" {
			continue
		}
		current = append(current, sentence)
		if strings.HasSuffix(sentence, "?") || (strings.HasSuffix(sentence, ".") && len(current) >= 2) {
			flush()
		}
	}
	if rest := strings.TrimSpace(text[prev:]); rest != "" {
		current = append(current, rest)
	}
	flush()
}

// finalize re-cleans every question and adds terminal punctuation to long
// questions that lack it.
func finalize(items []string) []string {
	out := newCollector()
	for _, q := range items {
		q = Clean(q)
		if utf8.RuneCountInString(q) > punctuateAfterRunes && !strings.ContainsAny(q[len(q)-1:], ".!?") {
			if interrogativeAny.MatchString(q) {
				q += "?"
			} else {
				q += "."
			}
		}
		out.push(q)
	}
	return out.items
}

type collector struct {
	items []string
	seen  map[string]struct{}
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

// add cleans and validates a candidate before keeping it.
func (c *collector) add(candidate string) {
	q := Clean(candidate)
	if q == "" || !IsValid(q) {
		return
	}
	c.push(q)
}

func (c *collector) push(q string) {
	key := Key(q)
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = struct{}{}
	c.items = append(c.items, q)
}
