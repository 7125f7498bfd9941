package export

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"chatgraph/msg"
)

// exampleMaxRunes caps the length of a representative message in the
// topics table.
const exampleMaxRunes = 200

// representativeMessage picks the message body that best illustrates a
// topic label: the body mentioning the most label words, with shorter
// bodies winning ties. Returns empty when nothing mentions the label.
func representativeMessage(messages []msg.Message, label string) string {
	labelWords := significantWords(label)
	lowerLabel := strings.ToLower(label)

	var best string
	bestScore := 0
	for _, m := range messages {
		if m.Body == "" {
			continue
		}
		body := strings.ToLower(m.Body)

		score := 0
		if strings.Contains(body, lowerLabel) {
			score += 2
		}
		for w := range labelWords {
			if strings.Contains(body, w) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		if score > bestScore || (score == bestScore && len(m.Body) < len(best)) {
			best = m.Body
			bestScore = score
		}
	}
	return truncateExample(best)
}

// significantWords returns the set of lowercased words of at least four
// characters, excluding common stop words.
func significantWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) >= 4 && !exampleStopWords[w] {
			words[w] = true
		}
	}
	return words
}

// truncateExample cuts on a word boundary so spreadsheet cells stay
// readable.
func truncateExample(text string) string {
	if utf8.RuneCountInString(text) <= exampleMaxRunes {
		return text
	}
	cut := string([]rune(text)[:exampleMaxRunes])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

var exampleStopWords = map[string]bool{
	"that": true, "this": true, "with": true, "from": true,
	"have": true, "been": true, "were": true, "they": true,
	"about": true, "what": true, "when": true, "your": true,
	"just": true, "some": true, "then": true, "than": true,
}
