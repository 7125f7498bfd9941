// Package export writes analysis results to tabular formats for use
// outside the tool: spreadsheets, SQL, columnar files and re-importable
// dumps.
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"chatgraph/graph"
	"chatgraph/msg"
)

// Dataset is the flattened, table-shaped view of one analysis run: the
// imported messages plus the contact, topic and contact-topic rows
// derived from the graph.
type Dataset struct {
	Messages      []msg.Message
	Contacts      []ContactRow
	Topics        []TopicRow
	ContactTopics []ContactTopicRow
}

type ContactRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Messages int    `json:"messages"`
}

type TopicRow struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Total   int    `json:"total"`
	Example string `json:"example,omitempty"`
}

type ContactTopicRow struct {
	ContactID string `json:"contact_id"`
	TopicID   string `json:"topic_id"`
	Label     string `json:"label"`
	Count     int    `json:"count"`
}

// BuildDataset flattens a graph into exportable rows. A nil graph
// yields a dataset with messages only.
func BuildDataset(messages []msg.Message, g *graph.Graph) *Dataset {
	ds := &Dataset{Messages: messages}
	if g == nil {
		return ds
	}

	labels := make(map[string]string)
	for _, n := range g.Nodes {
		switch n.Group {
		case graph.GroupContact:
			ds.Contacts = append(ds.Contacts, ContactRow{ID: n.ID, Name: n.Name, Messages: n.Value})
		case graph.GroupTopic:
			ds.Topics = append(ds.Topics, TopicRow{
				ID:      n.ID,
				Label:   n.Name,
				Total:   n.Value,
				Example: representativeMessage(messages, n.Name),
			})
			labels[n.ID] = n.Name
		}
	}
	for _, l := range g.Links {
		if !strings.HasPrefix(l.Target, graph.TopicIDPrefix) {
			continue
		}
		ds.ContactTopics = append(ds.ContactTopics, ContactTopicRow{
			ContactID: l.Source,
			TopicID:   l.Target,
			Label:     labels[l.Target],
			Count:     l.Value,
		})
	}
	return ds
}

// Row builders shared by the csv and xlsx exporters.

func (ds *Dataset) messageRows() [][]string {
	rows := make([][]string, 0, len(ds.Messages))
	for _, m := range ds.Messages {
		ts := ""
		if !m.Time.IsZero() {
			ts = m.Time.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{m.ContactID, m.ContactName, m.Direction.String(), ts, m.Body})
	}
	return rows
}

func (ds *Dataset) contactRows() [][]string {
	rows := make([][]string, 0, len(ds.Contacts))
	for _, c := range ds.Contacts {
		rows = append(rows, []string{c.ID, c.Name, fmt.Sprint(c.Messages)})
	}
	return rows
}

func (ds *Dataset) topicRows() [][]string {
	rows := make([][]string, 0, len(ds.Topics))
	for _, tp := range ds.Topics {
		rows = append(rows, []string{tp.ID, tp.Label, fmt.Sprint(tp.Total), tp.Example})
	}
	return rows
}

func (ds *Dataset) contactTopicRows() [][]string {
	rows := make([][]string, 0, len(ds.ContactTopics))
	for _, ct := range ds.ContactTopics {
		rows = append(rows, []string{ct.ContactID, ct.TopicID, ct.Label, fmt.Sprint(ct.Count)})
	}
	return rows
}

// Exporter writes a dataset to one target format.
type Exporter interface {
	Export(ctx context.Context, ds *Dataset, path string) error
	SupportedFormats() []string
}

// Registry maps output formats to exporters.
type Registry struct {
	exporters map[string]Exporter
}

// NewRegistry creates a registry with the built-in exporters.
func NewRegistry() *Registry {
	r := &Registry{exporters: make(map[string]Exporter)}

	builtin := []Exporter{
		&CSVExporter{},
		&JSONLExporter{},
		&SQLiteExporter{},
		&XLSXExporter{},
		&ParquetExporter{},
	}
	for _, e := range builtin {
		for _, f := range e.SupportedFormats() {
			r.exporters[f] = e
		}
	}
	return r
}

// Get returns the exporter for a format name or file extension.
func (r *Registry) Get(format string) (Exporter, error) {
	key := strings.ToLower(strings.TrimPrefix(format, "."))
	e, ok := r.exporters[key]
	if !ok {
		return nil, fmt.Errorf("no exporter for format: %s", format)
	}
	return e, nil
}

// Register adds or overrides the exporter for a format.
func (r *Registry) Register(format string, e Exporter) {
	r.exporters[strings.ToLower(format)] = e
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.exporters))
	for f := range r.exporters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ExportFile routes a dataset to an exporter by file extension.
func (r *Registry) ExportFile(ctx context.Context, ds *Dataset, path string) error {
	e, err := r.Get(filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return e.Export(ctx, ds, path)
}
