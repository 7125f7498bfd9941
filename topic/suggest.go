package topic

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"chatgraph/llm"
)

func init() {
	sqlite_vec.Auto()
}

// suggestSimilarityMin is the cosine similarity floor for proposing a
// pair. Below this, embedding neighbours are topical cousins ("work" and
// "money"), not phrasings of the same topic.
const suggestSimilarityMin = 0.80

// suggestNeighbours is how many nearest labels are examined per label.
const suggestNeighbours = 4

// Suggestion is a candidate entry for the synonym table: two labels the
// embedding space places close together but the table keeps separate.
type Suggestion struct {
	Label      string  `json:"label"`
	Candidate  string  `json:"candidate"`
	Similarity float64 `json:"similarity"`
}

// SuggestSynonyms embeds the given topic labels, indexes them in an
// in-memory sqlite-vec table and reports the closest pairs the synonym
// table does not already merge. The result is advisory: the table itself
// is fixed, and merging stays a deliberate edit, so the tool only points
// at candidates.
func SuggestSynonyms(ctx context.Context, embedder llm.Provider, labels []string, limit int) ([]Suggestion, error) {
	distinct := distinctLowered(labels)
	if len(distinct) < 2 {
		return nil, nil
	}

	vecs, err := embedder.Embed(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("embedding labels: %w", err)
	}

	dim := 0
	for _, v := range vecs {
		if len(v) > 0 {
			dim = len(v)
			break
		}
	}
	if dim == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	defer db.Close()
	// A :memory: database exists per connection; the pool must not open a
	// second one.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, fmt.Sprintf(
		`CREATE VIRTUAL TABLE vec_labels USING vec0(label_id INTEGER PRIMARY KEY, embedding float[%d] distance_metric=cosine)`,
		dim)); err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	for i, v := range vecs {
		if len(v) != dim {
			continue
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO vec_labels (label_id, embedding) VALUES (?, ?)",
			i, serializeFloat32(v)); err != nil {
			return nil, fmt.Errorf("indexing label %q: %w", distinct[i], err)
		}
	}

	type pairKey struct{ a, b int }
	seen := make(map[pairKey]bool)
	var out []Suggestion

	for i, v := range vecs {
		if len(v) != dim {
			continue
		}
		rows, err := db.QueryContext(ctx, `
			SELECT label_id, distance FROM vec_labels
			WHERE embedding MATCH ? AND k = ?
			ORDER BY distance
		`, serializeFloat32(v), suggestNeighbours)
		if err != nil {
			return nil, fmt.Errorf("querying neighbours of %q: %w", distinct[i], err)
		}

		for rows.Next() {
			var j int
			var distance float64
			if err := rows.Scan(&j, &distance); err != nil {
				rows.Close()
				return nil, err
			}
			if j == i {
				continue
			}
			similarity := 1.0 - distance
			if similarity < suggestSimilarityMin {
				continue
			}
			// Pairs the table already collapses need no suggestion.
			if canonicalKey(distinct[i]) == canonicalKey(distinct[j]) {
				continue
			}
			key := pairKey{min(i, j), max(i, j)}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Suggestion{
				Label:      distinct[key.a],
				Candidate:  distinct[key.b],
				Similarity: similarity,
			})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	sort.Slice(out, func(a, b int) bool { return out[a].Similarity > out[b].Similarity })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func distinctLowered(labels []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// serializeFloat32 converts a float32 slice to little-endian bytes for sqlite-vec.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
