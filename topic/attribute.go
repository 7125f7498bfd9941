package topic

import "strings"

// Corpus is the eligible message texts of one contact, in conversation
// order.
type Corpus struct {
	ContactID string
	Texts     []string
}

// Assignment pairs a corpus with the normalized topics that apply to it.
// Per-contact detection gives every corpus its own topics; global
// detection hands every corpus the same shared slice.
type Assignment struct {
	Corpus Corpus
	Topics []Normalized
}

// Attribution is the outcome of counting topic mentions across corpora.
type Attribution struct {
	// Topics is the union of all assignment topics in first-seen order.
	// The first assignment to introduce a canonical key fixes its display
	// label; later assignments only contribute variants.
	Topics []Normalized

	// Counts maps contact ID to canonical key to attributed messages.
	Counts map[string]map[string]int

	// Totals maps canonical key to the attributed sum across contacts.
	Totals map[string]int
}

// Attribute counts, for every assignment, how many of the corpus texts
// mention each topic. A text mentions a topic when any of the topic's
// variants occurs in it as a case-insensitive substring. A topic none of
// the texts mention verbatim is assumed to be discussed in words the
// variant list does not cover and receives an even share of the corpus
// instead of zero.
func Attribute(assignments []Assignment) *Attribution {
	att := &Attribution{
		Counts: make(map[string]map[string]int),
		Totals: make(map[string]int),
	}
	byKey := make(map[string]int)

	for _, a := range assignments {
		if len(a.Topics) == 0 || len(a.Corpus.Texts) == 0 {
			continue
		}

		lowered := make([]string, len(a.Corpus.Texts))
		for i, t := range a.Corpus.Texts {
			lowered[i] = strings.ToLower(t)
		}

		counts := att.Counts[a.Corpus.ContactID]
		if counts == nil {
			counts = make(map[string]int)
			att.Counts[a.Corpus.ContactID] = counts
		}

		for _, tp := range a.Topics {
			if i, ok := byKey[tp.Key]; ok {
				for _, v := range tp.Variants {
					att.Topics[i].Variants = appendUnique(att.Topics[i].Variants, v)
				}
			} else {
				byKey[tp.Key] = len(att.Topics)
				att.Topics = append(att.Topics, Normalized{
					Key:      tp.Key,
					Label:    tp.Label,
					Variants: append([]string(nil), tp.Variants...),
				})
			}

			n := 0
			for _, text := range lowered {
				if mentionsAny(text, tp.Variants) {
					n++
				}
			}
			if n == 0 {
				n = fallbackShare(len(a.Corpus.Texts), len(a.Topics))
			}
			counts[tp.Key] += n
			att.Totals[tp.Key] += n
		}
	}
	return att
}

func mentionsAny(loweredText string, variants []string) bool {
	for _, v := range variants {
		if strings.Contains(loweredText, v) {
			return true
		}
	}
	return false
}

// fallbackShare is the even split used when a topic never occurs
// verbatim: corpus size over the number of topics detected for that
// corpus, rounded up, never below one. A topic the oracle invented out
// of thin air still receives this share; the overstatement is accepted
// rather than second-guessing the oracle.
func fallbackShare(corpusLen, topicCount int) int {
	if topicCount <= 0 {
		return 1
	}
	share := (corpusLen + topicCount - 1) / topicCount
	if share < 1 {
		share = 1
	}
	return share
}
