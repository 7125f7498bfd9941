package topic

import (
	"context"
	"fmt"
	"testing"

	"chatgraph/llm"
)

// fakeEmbedder returns scripted unit vectors per label.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	return nil, fmt.Errorf("fakeEmbedder: chat not scripted")
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, ok := f.vectors[text]
		if !ok {
			return nil, fmt.Errorf("fakeEmbedder: no vector for %q", text)
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Ping(ctx context.Context) error { return nil }

func TestSuggestSynonyms(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"korona":  {0.98, 0.199, 0},
		"covid":   {1, 0, 0},
		"surfing": {0, 1, 0},
	}}

	got, err := SuggestSynonyms(context.Background(), embedder,
		[]string{"Korona", "covid", "Surfing"}, 10)
	if err != nil {
		t.Fatalf("SuggestSynonyms: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d suggestions %v, want 1", len(got), got)
	}
	s := got[0]
	pair := map[string]bool{s.Label: true, s.Candidate: true}
	if !pair["korona"] || !pair["covid"] {
		t.Errorf("suggested pair = %q/%q, want korona/covid", s.Label, s.Candidate)
	}
	if s.Similarity < 0.9 {
		t.Errorf("similarity = %f, want close to 0.98", s.Similarity)
	}
}

// TestSuggestSkipsMergedPairs confirms pairs the synonym table already
// collapses are not re-suggested, however close their embeddings sit.
func TestSuggestSkipsMergedPairs(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"covid":  {1, 0, 0},
		"corona": {1, 0, 0},
	}}

	got, err := SuggestSynonyms(context.Background(), embedder,
		[]string{"covid", "corona"}, 10)
	if err != nil {
		t.Fatalf("SuggestSynonyms: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no suggestions for an already-merged pair", got)
	}
}

func TestSuggestTooFewLabels(t *testing.T) {
	got, err := SuggestSynonyms(context.Background(), &fakeEmbedder{}, []string{"covid"}, 10)
	if err != nil {
		t.Fatalf("SuggestSynonyms: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil for a single label", got)
	}
}

func TestSuggestLimit(t *testing.T) {
	// Four labels clustered tightly in pairs produce at least two
	// suggestions; a limit of 1 keeps only the closest.
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"cinema":  {1, 0, 0},
		"movies":  {0.999, 0.0447, 0},
		"hiking":  {0, 1, 0},
		"walking": {0.0447, 0.999, 0},
	}}

	got, err := SuggestSynonyms(context.Background(), embedder,
		[]string{"cinema", "movies", "hiking", "walking"}, 1)
	if err != nil {
		t.Fatalf("SuggestSynonyms: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d suggestions, want limit of 1", len(got))
	}
}
