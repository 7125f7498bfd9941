package graph

import (
	"unicode/utf8"

	"chatgraph/msg"
)

// DefaultMinBodyRunes is the significance threshold: a message joins a
// contact's topic corpus only when its body is strictly longer than this
// many runes. Shorter bodies ("ok", "see you", bare emoji) dominate chat
// history without carrying topical signal.
const DefaultMinBodyRunes = 10

// Collector accumulates normalized messages into per-contact aggregates:
// the exchanged-message total that weighs the contact in the graph, and
// the significant-text corpus handed to topic detection. Contacts keep
// the order in which they first appeared in the input.
type Collector struct {
	selfID   string
	minRunes int
	global   bool

	order       []string
	contacts    map[string]*contactAgg
	globalTexts []string
	total       int
}

type contactAgg struct {
	name   string
	total  int
	corpus []string
}

// ContactCorpus is one contact's aggregate, in input order.
type ContactCorpus struct {
	ID    string
	Name  string
	Total int      // messages exchanged, both directions, any length
	Texts []string // significant bodies only, in input order
}

// NewCollector creates a collector. Messages addressed to selfID are
// dropped (notes-to-self are not a relationship). A non-positive
// minRunes selects DefaultMinBodyRunes. When global is set the
// significant texts are additionally pooled across contacts for
// whole-history topic detection.
func NewCollector(selfID string, minRunes int, global bool) *Collector {
	if minRunes <= 0 {
		minRunes = DefaultMinBodyRunes
	}
	return &Collector{
		selfID:   selfID,
		minRunes: minRunes,
		global:   global,
		contacts: make(map[string]*contactAgg),
	}
}

// Add folds one message into the aggregates.
func (c *Collector) Add(m msg.Message) {
	if m.ContactID == "" || m.ContactID == c.selfID {
		return
	}

	agg := c.contacts[m.ContactID]
	if agg == nil {
		agg = &contactAgg{}
		c.contacts[m.ContactID] = agg
		c.order = append(c.order, m.ContactID)
	}

	agg.total++
	c.total++
	if agg.name == "" && m.ContactName != "" {
		agg.name = m.ContactName
	}

	// Length is measured in runes, not bytes, so non-ASCII scripts meet
	// the threshold at the same visible length.
	if utf8.RuneCountInString(m.Body) > c.minRunes {
		agg.corpus = append(agg.corpus, m.Body)
		if c.global {
			c.globalTexts = append(c.globalTexts, m.Body)
		}
	}
}

// Contacts returns the aggregates in first-seen order. A contact without
// any recorded display name falls back to its identifier.
func (c *Collector) Contacts() []ContactCorpus {
	out := make([]ContactCorpus, 0, len(c.order))
	for _, id := range c.order {
		agg := c.contacts[id]
		name := agg.name
		if name == "" {
			name = id
		}
		out = append(out, ContactCorpus{
			ID:    id,
			Name:  name,
			Total: agg.total,
			Texts: agg.corpus,
		})
	}
	return out
}

// GlobalTexts returns the pooled significant texts across all contacts,
// in input order. Empty unless the collector was created in global mode.
func (c *Collector) GlobalTexts() []string {
	return c.globalTexts
}

// TotalMessages returns the number of messages accepted across all
// contacts.
func (c *Collector) TotalMessages() int {
	return c.total
}
