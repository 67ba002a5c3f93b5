package transform

import "strings"

// splitSentences breaks text after '.', '?', '!' or ';' when followed by
// whitespace. Runs of whitespace collapse to a single space.
func splitSentences(text string) []string {
	var (
		sentences []string
		current   []string
	)
	for _, word := range strings.Fields(text) {
		current = append(current, word)
		if strings.ContainsAny(word[len(word)-1:], ".?!;") {
			sentences = append(sentences, strings.Join(current, " "))
			current = nil
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, strings.Join(current, " "))
	}
	return sentences
}
