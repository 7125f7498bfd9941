// Package importer reads chat export files into normalized messages.
// Each importer owns one source format; the registry routes files to
// them by extension.
package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"chatgraph/msg"
)

// Options carries the owner identity importers need to orient messages.
// Transcript formats name participants, so SelfName marks the owner's
// lines; mailbox formats address them, so SelfAddress does.
type Options struct {
	SelfName    string
	SelfAddress string
}

// Importer reads one source format into normalized messages.
type Importer interface {
	Import(ctx context.Context, path string) ([]msg.Message, error)
	SupportedFormats() []string
}

// Registry maps file formats to importers.
type Registry struct {
	importers map[string]Importer
}

// NewRegistry creates a registry with the built-in importers.
func NewRegistry(opts Options) *Registry {
	r := &Registry{importers: make(map[string]Importer)}

	builtin := []Importer{
		&SMSImporter{},
		&JSONImporter{},
		&TranscriptImporter{SelfName: opts.SelfName},
		&MboxImporter{SelfAddress: opts.SelfAddress},
		&PDFImporter{SelfName: opts.SelfName},
	}
	for _, imp := range builtin {
		for _, f := range imp.SupportedFormats() {
			r.importers[f] = imp
		}
	}
	return r
}

// Get returns the importer for a format name or file extension.
func (r *Registry) Get(format string) (Importer, error) {
	key := strings.ToLower(strings.TrimPrefix(format, "."))
	imp, ok := r.importers[key]
	if !ok {
		return nil, fmt.Errorf("no importer for format: %s", format)
	}
	return imp, nil
}

// Register adds or overrides the importer for a format.
func (r *Registry) Register(format string, imp Importer) {
	r.importers[strings.ToLower(format)] = imp
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.importers))
	for f := range r.importers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ImportFile routes a file to its importer by extension.
func (r *Registry) ImportFile(ctx context.Context, path string) ([]msg.Message, error) {
	imp, err := r.Get(filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return imp.Import(ctx, path)
}
