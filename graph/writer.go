package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Write serializes the document to w. Field order and the non-nil slice
// guarantee on Graph keep the output shape identical from run to run;
// encoding/json handles the escaping of quotes and control characters in
// message-derived names.
func Write(w io.Writer, g *Graph) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	return nil
}

// Read parses a document produced by Write.
func Read(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decoding graph: %w", err)
	}
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Links == nil {
		g.Links = []Link{}
	}
	return &g, nil
}

// ReadFile reads a graph artifact from disk.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// WriteFile writes the document to path atomically: the JSON goes to a
// temporary file in the same directory and is renamed into place, so a
// crash mid-write never leaves a truncated artifact behind. This is the
// one stage of the pipeline that does not degrade; any failure here is
// returned to the caller.
func WriteFile(path string, g *Graph) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".graph-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if err := Write(tmp, g); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
