// Package graph turns collected message corpora and topic attributions
// into the force-graph document consumed by the viewer: a flat node list
// (self, contacts, topics) and weighted links between them.
package graph

import "fmt"

// Group partitions nodes in the rendered document. The viewer keys its
// colouring and layout off these values, so they are part of the wire
// contract.
type Group int

const (
	GroupSelf    Group = 0
	GroupContact Group = 1
	GroupTopic   Group = 2
)

// TopicIDPrefix namespaces topic identifiers. Contact identifiers come
// from the source data (phone numbers, addresses, names) and can be
// anything, so topics get a reserved prefix instead of trusting the
// input to avoid collisions.
const TopicIDPrefix = "topic:"

// TopicID returns the identifier for the topic at the given rank.
func TopicID(rank int) string {
	return fmt.Sprintf("%s%d", TopicIDPrefix, rank)
}

// Node is one vertex of the rendered document. Topics is only populated
// on contact nodes, and only when topic detection ran; the field is
// absent from the JSON otherwise.
type Node struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Group  Group    `json:"group"`
	Value  int      `json:"value"`
	Topics []string `json:"topics,omitempty"`
}

// Link is one weighted edge. Source and Target reference node IDs.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

// Graph is the complete document. Both slices are always non-nil so an
// empty graph renders as [] rather than null.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// TopicCount returns how many topic nodes the document carries.
func (g *Graph) TopicCount() int {
	n := 0
	for _, node := range g.Nodes {
		if node.Group == GroupTopic {
			n++
		}
	}
	return n
}
