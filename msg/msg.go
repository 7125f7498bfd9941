// Package msg defines the normalized message record shared by importers,
// the graph builder and the exporters. Every source format is reduced to
// this shape before analysis.
package msg

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Direction tells whether the account owner received or sent a message.
type Direction int

const (
	Incoming Direction = iota
	Outgoing
)

func (d Direction) String() string {
	switch d {
	case Incoming:
		return "incoming"
	case Outgoing:
		return "outgoing"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection converts the wire representation back to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incoming", "received", "in":
		return Incoming, nil
	case "outgoing", "sent", "out":
		return Outgoing, nil
	default:
		return Incoming, fmt.Errorf("unknown direction %q", s)
	}
}

// MarshalJSON encodes the direction as its lowercase name.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts either the lowercase name or a bare integer so
// hand-written fixtures keep working.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := ParseDirection(s)
		if perr != nil {
			return perr
		}
		*d = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("direction must be a string or integer: %s", data)
	}
	*d = Direction(n)
	return nil
}

// Message is one normalized personal message. ContactID identifies the
// counterparty regardless of direction; the owner never appears as a
// contact.
type Message struct {
	ContactID   string    `json:"contact_id"`
	ContactName string    `json:"contact_name,omitempty"`
	Body        string    `json:"body"`
	Direction   Direction `json:"direction"`
	Time        time.Time `json:"time,omitzero"`
}
