package topic

// Sampling bounds how much of a corpus is shown to the oracle. The budget
// steps up with corpus size rather than scaling linearly, and unlimited
// mode doubles each step because it needs enough spread to surface minor
// topics, not just the dominant ones.
const (
	sampleCapSmall  = 40  // corpora up to 200 texts
	sampleCapMedium = 80  // corpora up to 1000 texts
	sampleCapLarge  = 120 // everything bigger

	sampleSmallMax  = 200
	sampleMediumMax = 1000

	// maxPromptTexts bounds how many sampled texts end up in a single
	// prompt regardless of corpus size, so the request stays inside the
	// context window of small local models.
	maxPromptTexts = 30

	// maxPromptTextRunes truncates a single message body inside the
	// prompt. Long bodies are almost always forwarded articles or pasted
	// links, and their opening lines carry the topic.
	maxPromptTextRunes = 300
)

// SampleCap returns the sampling budget for a corpus of n texts in the
// given mode.
func SampleCap(n int, mode Mode) int {
	var budget int
	switch {
	case n <= sampleSmallMax:
		budget = sampleCapSmall
	case n <= sampleMediumMax:
		budget = sampleCapMedium
	default:
		budget = sampleCapLarge
	}
	if mode == ModeUnlimited {
		budget *= 2
	}
	return budget
}

// SampleIndices returns the indices of the texts selected from a corpus of
// length n under the given budget. Selection walks the corpus at a fixed
// stride so the sample spans the whole conversation history, and the
// result is fully determined by (n, budget): the same corpus always
// yields the same sample.
func SampleIndices(n, budget int) []int {
	if n <= 0 || budget <= 0 {
		return nil
	}
	if n <= budget {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	stride := n / budget
	idx := make([]int, 0, budget)
	for i := 0; i < n && len(idx) < budget; i += stride {
		idx = append(idx, i)
	}
	return idx
}

// Sample returns the texts chosen from corpus under the mode's budget,
// preserving corpus order.
func Sample(texts []string, mode Mode) []string {
	idx := SampleIndices(len(texts), SampleCap(len(texts), mode))
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = texts[j]
	}
	return out
}
