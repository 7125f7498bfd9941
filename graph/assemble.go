package graph

import (
	"sort"

	"chatgraph/topic"
)

// DefaultMinTopicMessages is the unlimited-mode pruning floor: topics
// attributed fewer total messages than this across all contacts are
// dropped from the document.
const DefaultMinTopicMessages = 5

// legacyTopicDisplay caps the per-contact topics list in legacy mode.
const legacyTopicDisplay = 10

// Assemble builds the document from the collected contacts and an
// optional topic attribution. A nil attribution (oracle down, extraction
// failed everywhere, topics skipped) yields the contact-only graph: the
// self node, one node and one link per contact, and no topics field
// anywhere.
func Assemble(selfID, selfName string, contacts []ContactCorpus, att *topic.Attribution, mode topic.Mode, minTopicMessages int) *Graph {
	if minTopicMessages <= 0 {
		minTopicMessages = DefaultMinTopicMessages
	}

	g := &Graph{Nodes: []Node{}, Links: []Link{}}

	total := 0
	for _, c := range contacts {
		total += c.Total
	}
	g.Nodes = append(g.Nodes, Node{
		ID:    selfID,
		Name:  selfName,
		Group: GroupSelf,
		Value: total,
	})

	contactNode := make(map[string]int, len(contacts))
	for _, c := range contacts {
		contactNode[c.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{
			ID:    c.ID,
			Name:  c.Name,
			Group: GroupContact,
			Value: c.Total,
		})
		g.Links = append(g.Links, Link{
			Source: selfID,
			Target: c.ID,
			Value:  c.Total,
		})
	}

	if att == nil || len(att.Topics) == 0 {
		return g
	}

	// Prune, then rank by attributed total. The sort is stable so equal
	// totals keep their first-seen order, which pins topic IDs for a
	// given input.
	var retained []topic.Normalized
	for _, tp := range att.Topics {
		switch mode {
		case topic.ModeLegacy:
			if att.Totals[tp.Key] >= 1 {
				retained = append(retained, tp)
			}
		default:
			if att.Totals[tp.Key] >= minTopicMessages {
				retained = append(retained, tp)
			}
		}
	}
	sort.SliceStable(retained, func(i, j int) bool {
		return att.Totals[retained[i].Key] > att.Totals[retained[j].Key]
	})

	type contactTopic struct {
		label string
		count int
	}
	perContact := make(map[string][]contactTopic)

	for rank, tp := range retained {
		id := TopicID(rank)
		g.Nodes = append(g.Nodes, Node{
			ID:    id,
			Name:  tp.Label,
			Group: GroupTopic,
			Value: att.Totals[tp.Key],
		})
		for _, c := range contacts {
			count := att.Counts[c.ID][tp.Key]
			if count <= 0 {
				continue
			}
			g.Links = append(g.Links, Link{
				Source: c.ID,
				Target: id,
				Value:  count,
			})
			perContact[c.ID] = append(perContact[c.ID], contactTopic{tp.Label, count})
		}
	}

	for id, list := range perContact {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].count > list[j].count
		})
		if mode == topic.ModeLegacy && len(list) > legacyTopicDisplay {
			list = list[:legacyTopicDisplay]
		}
		names := make([]string, len(list))
		for i, ct := range list {
			names[i] = ct.label
		}
		g.Nodes[contactNode[id]].Topics = names
	}

	return g
}
