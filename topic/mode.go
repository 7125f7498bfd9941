// Package topic turns corpora of message texts into a deduplicated set of
// conversation topics with per-contact message counts. Detection is
// delegated to an external language-model oracle; everything downstream of
// the oracle call is deterministic.
package topic

import (
	"fmt"
	"strings"
)

// Mode selects how many topics the oracle is asked for and how detected
// topics are pruned afterwards.
type Mode int

const (
	// ModeLegacy asks for a fixed number of prominent topics per corpus
	// and keeps every topic that ends up with at least one message.
	ModeLegacy Mode = iota

	// ModeUnlimited asks for every meaningful topic and prunes by a
	// minimum total message count instead of capping the request.
	ModeUnlimited
)

func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "legacy"
	case ModeUnlimited:
		return "unlimited"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy":
		return ModeLegacy, nil
	case "unlimited", "":
		return ModeUnlimited, nil
	default:
		return ModeUnlimited, fmt.Errorf("unknown topic mode %q", s)
	}
}
