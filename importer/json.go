package importer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chatgraph/msg"
)

// JSONImporter reads message dumps in the tool's own JSON shape: a bare
// array of messages, an object with a "messages" key, or line-delimited
// JSON with one message per line (.jsonl).
type JSONImporter struct{}

func (p *JSONImporter) SupportedFormats() []string {
	return []string{"json", "jsonl"}
}

func (p *JSONImporter) Import(ctx context.Context, path string) ([]msg.Message, error) {
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return p.importLines(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading json export: %w", err)
	}

	var list []msg.Message
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapper struct {
		Messages []msg.Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parsing json export: %w", err)
	}
	return wrapper.Messages, nil
}

func (p *JSONImporter) importLines(path string) ([]msg.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading jsonl export: %w", err)
	}
	defer f.Close()

	var out []msg.Message
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var m msg.Message
		if err := json.Unmarshal([]byte(text), &m); err != nil {
			return nil, fmt.Errorf("parsing jsonl line %d: %w", line, err)
		}
		out = append(out, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading jsonl export: %w", err)
	}
	return out, nil
}
