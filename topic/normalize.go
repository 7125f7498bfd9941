package topic

import (
	"strings"
	"unicode/utf8"
)

// Label length bounds, measured in runes after trimming. Anything shorter
// is an artifact of reply parsing ("a", "ok"), anything longer is a
// sentence the model failed to compress into a label.
const (
	minLabelRunes = 3
	maxLabelRunes = 30
)

// labelCutset holds the characters stripped from both ends of a raw
// candidate: whitespace, quotes, bullets and stray punctuation the model
// wraps labels in.
const labelCutset = " \t\r\n\"'`“”‘’*•·-–—.,:;!?()[]{}"

// Normalized is one canonical conversation topic. Key is the identity
// used for counting and merging, Label the display form from the first
// surface seen, and Variants every lowercased surface observed for the
// key (the key itself included) for substring matching during
// attribution.
type Normalized struct {
	Key      string
	Label    string
	Variants []string
}

// Normalize reduces raw oracle candidates to canonical topics. Candidates
// are trimmed, length-filtered, deduplicated case-insensitively and then
// collapsed through the synonym table. The first surface form seen for a
// canonical key fixes its display label; later variants only extend the
// match list. Output order is first-seen order of canonical keys, and the
// whole pass is idempotent: normalizing the output labels again changes
// nothing.
func Normalize(candidates []string) []Normalized {
	seen := make(map[string]bool)
	byKey := make(map[string]int)
	var out []Normalized

	for _, raw := range candidates {
		label := strings.Trim(raw, labelCutset)
		if label == "" {
			continue
		}
		if n := utf8.RuneCountInString(label); n < minLabelRunes || n > maxLabelRunes {
			continue
		}

		lowered := strings.ToLower(label)
		if seen[lowered] {
			continue
		}
		seen[lowered] = true

		key := canonicalKey(lowered)
		if i, ok := byKey[key]; ok {
			out[i].Variants = appendUnique(out[i].Variants, lowered)
			continue
		}
		byKey[key] = len(out)
		out = append(out, Normalized{
			Key:      key,
			Label:    label,
			Variants: appendUnique([]string{key}, lowered),
		})
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
