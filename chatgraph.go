// Package chatgraph turns exported personal message archives into a
// weighted relationship graph. Contacts are linked to the owner by
// message volume; conversation topics are extracted with a locally
// hosted LLM and linked to the contacts that discussed them. The
// engine degrades to a contact-only graph when no LLM is reachable.
package chatgraph

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"chatgraph/export"
	"chatgraph/graph"
	"chatgraph/importer"
	"chatgraph/llm"
	"chatgraph/msg"
	"chatgraph/topic"
)

// Analyzer is the main entry point for the chat graph engine.
type Analyzer interface {
	// LoadMessages imports every file matched by the given paths or
	// glob patterns, routed to importers by extension.
	LoadMessages(ctx context.Context, patterns ...string) ([]msg.Message, error)

	// BuildGraph folds messages into per-contact corpora, extracts and
	// attributes topics, and assembles the relationship graph.
	BuildGraph(ctx context.Context, messages []msg.Message, opts ...BuildOption) (*graph.Graph, error)

	// WriteGraph writes the graph JSON artifact atomically.
	WriteGraph(g *graph.Graph, path string) error

	// Export writes the messages and graph-derived tables to an
	// external format (csv, jsonl, sqlite, xlsx, parquet).
	Export(ctx context.Context, messages []msg.Message, g *graph.Graph, format, path string) error

	// SuggestSynonyms embeds the graph's topic labels and reports pairs
	// similar enough to deserve a synonym table entry.
	SuggestSynonyms(ctx context.Context, g *graph.Graph, limit int) ([]topic.Suggestion, error)

	// ImportFormats returns the supported input formats.
	ImportFormats() []string

	// ExportFormats returns the supported export formats.
	ExportFormats() []string
}

// BuildOption overrides configured build behavior for one call.
type BuildOption func(*buildOptions)

type buildOptions struct {
	skipTopics       bool
	globalTopics     bool
	topicsRequested  int
	minTopicMessages int
}

// WithSkipTopics builds a contact-only graph without topic extraction.
func WithSkipTopics() BuildOption {
	return func(o *buildOptions) { o.skipTopics = true }
}

// WithGlobalTopics extracts one shared topic list from all contacts'
// messages instead of one list per contact.
func WithGlobalTopics() BuildOption {
	return func(o *buildOptions) { o.globalTopics = true }
}

// WithTopicsRequested overrides the legacy-mode topic count for this build.
func WithTopicsRequested(n int) BuildOption {
	return func(o *buildOptions) {
		if n > 0 {
			o.topicsRequested = n
		}
	}
}

// WithMinTopicMessages overrides the unlimited-mode retention floor for
// this build.
func WithMinTopicMessages(n int) BuildOption {
	return func(o *buildOptions) {
		if n > 0 {
			o.minTopicMessages = n
		}
	}
}

// analyzer is the concrete implementation of Analyzer.
type analyzer struct {
	cfg       Config
	mode      topic.Mode
	oracle    *topic.Oracle
	embedder  llm.Provider
	importers *importer.Registry
	exporters *export.Registry
}

// New creates an analyzer from the given configuration.
func New(cfg Config) (Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := topic.ParseMode(cfg.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var oracle *topic.Oracle
	if cfg.Oracle.Provider != "" {
		provider, err := llm.NewProvider(cfg.Oracle)
		if err != nil {
			return nil, fmt.Errorf("creating oracle provider: %w", err)
		}
		oracle = topic.NewOracle(provider, cfg.Oracle.Model, time.Duration(cfg.OracleTimeoutSeconds)*time.Second)
	}

	var embedder llm.Provider
	if cfg.Embedding.Provider != "" {
		embedder, err = llm.NewProvider(cfg.Embedding)
		if err != nil {
			return nil, fmt.Errorf("creating embedding provider: %w", err)
		}
	}

	return &analyzer{
		cfg:      cfg,
		mode:     mode,
		oracle:   oracle,
		embedder: embedder,
		importers: importer.NewRegistry(importer.Options{
			SelfName:    cfg.SelfName,
			SelfAddress: cfg.SelfAddress,
		}),
		exporters: export.NewRegistry(),
	}, nil
}

// LoadMessages imports all files matched by the given paths or globs.
func (a *analyzer) LoadMessages(ctx context.Context, patterns ...string) ([]msg.Message, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, pat := range patterns {
		if !strings.ContainsAny(pat, "*?[{") {
			add(pat)
			continue
		}
		matches, err := doublestar.FilepathGlob(pat)
		if err != nil {
			return nil, fmt.Errorf("bad input pattern %q: %w", pat, err)
		}
		for _, m := range matches {
			add(m)
		}
	}
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}

	var all []msg.Message
	for _, path := range paths {
		msgs, err := a.importers.ImportFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", path, err)
		}
		slog.Info("import: file loaded",
			"file", filepath.Base(path), "messages", len(msgs))
		all = append(all, msgs...)
	}
	return all, nil
}

// BuildGraph runs the analysis pipeline: collect corpora, extract and
// attribute topics, assemble the graph. Topic extraction failures are
// logged and degrade the result rather than failing the build.
func (a *analyzer) BuildGraph(ctx context.Context, messages []msg.Message, opts ...BuildOption) (*graph.Graph, error) {
	options := &buildOptions{
		skipTopics:       a.cfg.SkipTopics,
		globalTopics:     a.cfg.GlobalTopics,
		topicsRequested:  a.cfg.TopicsRequested,
		minTopicMessages: a.cfg.MinTopicMessages,
	}
	for _, o := range opts {
		o(options)
	}

	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	collector := graph.NewCollector(a.cfg.SelfID, a.cfg.MinMessageLength, options.globalTopics)
	for _, m := range messages {
		collector.Add(m)
	}
	contacts := collector.Contacts()
	slog.Info("graph: messages collected",
		"messages", collector.TotalMessages(), "contacts", len(contacts))

	var att *topic.Attribution
	switch {
	case options.skipTopics || a.oracle == nil:
		slog.Info("topics: extraction disabled")
	case !a.oracle.Available(ctx):
		slog.Warn("topics: oracle unavailable, building contact graph only")
	default:
		att = a.extractTopics(ctx, contacts, collector.GlobalTexts(), options)
	}

	g := graph.Assemble(a.cfg.SelfID, a.cfg.SelfName, contacts, att, a.mode, options.minTopicMessages)
	slog.Info("graph: assembled",
		"nodes", len(g.Nodes), "links", len(g.Links), "topics", g.TopicCount())
	return g, nil
}

// extractTopics asks the oracle for topics and attributes them to
// contacts. Per-corpus failures are logged and skipped so one bad LLM
// reply does not lose the rest of the graph.
func (a *analyzer) extractTopics(ctx context.Context, contacts []graph.ContactCorpus, globalTexts []string, options *buildOptions) *topic.Attribution {
	var assignments []topic.Assignment

	if options.globalTopics {
		sampled := topic.Sample(globalTexts, a.mode)
		raw, err := a.oracle.ExtractTopics(ctx, sampled, options.topicsRequested, a.mode)
		if err != nil {
			slog.Warn("topics: global extraction failed", "error", err)
			return nil
		}
		topics := topic.Normalize(raw)
		if len(topics) == 0 {
			return nil
		}
		slog.Info("topics: global list extracted", "topics", len(topics))
		for _, c := range contacts {
			assignments = append(assignments, topic.Assignment{
				Corpus: topic.Corpus{ContactID: c.ID, Texts: c.Texts},
				Topics: topics,
			})
		}
	} else {
		for _, c := range contacts {
			if len(c.Texts) == 0 {
				continue
			}
			sampled := topic.Sample(c.Texts, a.mode)
			raw, err := a.oracle.ExtractTopics(ctx, sampled, options.topicsRequested, a.mode)
			if err != nil {
				slog.Warn("topics: extraction failed for contact",
					"contact", c.ID, "error", err)
				continue
			}
			topics := topic.Normalize(raw)
			if len(topics) == 0 {
				continue
			}
			slog.Debug("topics: extracted",
				"contact", c.ID, "topics", len(topics), "sampled", len(sampled))
			assignments = append(assignments, topic.Assignment{
				Corpus: topic.Corpus{ContactID: c.ID, Texts: c.Texts},
				Topics: topics,
			})
		}
	}

	if len(assignments) == 0 {
		return nil
	}
	return topic.Attribute(assignments)
}

// WriteGraph writes the graph artifact. Unlike topic extraction this is
// not allowed to degrade: a failed write is a failed run.
func (a *analyzer) WriteGraph(g *graph.Graph, path string) error {
	if err := graph.WriteFile(path, g); err != nil {
		return fmt.Errorf("writing graph: %w", err)
	}
	slog.Info("graph: written",
		"path", path, "nodes", len(g.Nodes), "links", len(g.Links))
	return nil
}

// Export writes the dataset derived from messages and graph to an
// external format.
func (a *analyzer) Export(ctx context.Context, messages []msg.Message, g *graph.Graph, format, path string) error {
	exp, err := a.exporters.Get(format)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	ds := export.BuildDataset(messages, g)
	if err := exp.Export(ctx, ds, path); err != nil {
		return fmt.Errorf("exporting %s: %w", format, err)
	}
	slog.Info("export: complete",
		"format", format, "path", path,
		"messages", len(ds.Messages), "contacts", len(ds.Contacts), "topics", len(ds.Topics))
	return nil
}

// SuggestSynonyms embeds the graph's topic labels and reports pairs
// that look like unmerged synonyms.
func (a *analyzer) SuggestSynonyms(ctx context.Context, g *graph.Graph, limit int) ([]topic.Suggestion, error) {
	if a.embedder == nil {
		return nil, ErrNoEmbedder
	}

	var labels []string
	for _, n := range g.Nodes {
		if n.Group == graph.GroupTopic {
			labels = append(labels, n.Name)
		}
	}
	if len(labels) < 2 {
		return nil, nil
	}
	return topic.SuggestSynonyms(ctx, a.embedder, labels, limit)
}

// ImportFormats returns the supported input formats.
func (a *analyzer) ImportFormats() []string {
	return a.importers.Formats()
}

// ExportFormats returns the supported export formats.
func (a *analyzer) ExportFormats() []string {
	return a.exporters.Formats()
}
