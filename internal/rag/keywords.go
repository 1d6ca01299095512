package rag

import (
	"strings"
	"unicode"
)

const (
	maxKeywordsPerQuestion = 5
	maxCombinedKeywords    = 20
	minKeywordRunes        = 4
)

var queryStopwords = map[string]struct{}{
	"what": {}, "how": {}, "when": {}, "where": {}, "why": {}, "does": {},
	"is": {}, "are": {}, "the": {}, "and": {}, "for": {}, "with": {},
}

// combinedQuery builds one search query from the salient words of every
// question.
func combinedQuery(questions []string) string {
	var keywords []string
	for _, q := range questions {
		taken := 0
		for _, token := range tokenize(q) {
			if taken == maxKeywordsPerQuestion {
				break
			}
			if len([]rune(token)) < minKeywordRunes {
				continue
			}
			if _, stop := queryStopwords[token]; stop {
				continue
			}
			keywords = append(keywords, token)
			taken++
		}
	}
	if len(keywords) > maxCombinedKeywords {
		keywords = keywords[:maxCombinedKeywords]
	}
	return strings.Join(keywords, " ")
}

// wordSet returns the distinct lower-cased whitespace-delimited words of text.
func wordSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// overlap counts the words of query that also occur in content.
func overlap(query map[string]struct{}, content string) int {
	n := 0
	for w := range wordSet(content) {
		if _, ok := query[w]; ok {
			n++
		}
	}
	return n
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
