package chatgraph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"chatgraph/llm"
	"chatgraph/topic"
)

// Config holds all configuration for the analyzer.
type Config struct {
	// SelfID is the node ID for the graph owner.
	SelfID string `json:"self_id" yaml:"self_id"`

	// SelfName is the display name for the owner node. It also marks the
	// owner's lines in chat transcript imports.
	SelfName string `json:"self_name" yaml:"self_name"`

	// SelfAddress is the owner's address in mailbox imports.
	SelfAddress string `json:"self_address" yaml:"self_address"`

	// Mode selects topic extraction behavior: "legacy" asks for a fixed
	// number of topics per contact and shows the top ten, "unlimited"
	// (default) extracts every meaningful topic and prunes the ones
	// mentioned fewer than MinTopicMessages times.
	Mode string `json:"mode" yaml:"mode"`

	// GlobalTopics pools every contact's messages into one corpus and
	// extracts a single shared topic list instead of one per contact.
	GlobalTopics bool `json:"global_topics" yaml:"global_topics"`

	// SkipTopics builds a contact-only graph without calling the LLM.
	SkipTopics bool `json:"skip_topics" yaml:"skip_topics"`

	// MinMessageLength is the rune count a message body must exceed to
	// join the topic corpus.
	MinMessageLength int `json:"min_message_length" yaml:"min_message_length"`

	// MinTopicMessages is the retention floor for unlimited mode.
	MinTopicMessages int `json:"min_topic_messages" yaml:"min_topic_messages"`

	// TopicsRequested is the topic count asked of the LLM per corpus in
	// legacy mode.
	TopicsRequested int `json:"topics_requested" yaml:"topics_requested"`

	// OracleTimeoutSeconds bounds each topic extraction call.
	OracleTimeoutSeconds int `json:"oracle_timeout_seconds" yaml:"oracle_timeout_seconds"`

	// LLM providers
	Oracle    llm.Config `json:"oracle" yaml:"oracle"`
	Embedding llm.Config `json:"embedding" yaml:"embedding"` // optional: synonym suggestions
}

// DefaultConfig returns a Config with sensible defaults for local
// inference.
func DefaultConfig() Config {
	return Config{
		SelfID:               "self",
		SelfName:             "Me",
		Mode:                 "unlimited",
		MinMessageLength:     10,
		MinTopicMessages:     5,
		TopicsRequested:      10,
		OracleTimeoutSeconds: 60,
		Oracle: llm.Config{
			Provider: "ollama",
			Model:    "llama3.1:8b",
			BaseURL:  "http://localhost:11434",
		},
		Embedding: llm.Config{
			Provider: "ollama",
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
	}
}

// LoadConfig reads a JSON or YAML config file over the defaults. The
// format is chosen by extension; anything that is not .yaml or .yml is
// parsed as JSON.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}
	return cfg, nil
}

// ApplyEnvOverrides overrides config fields from CHATGRAPH_* environment
// variables, and falls back to the conventional OPENAI_API_KEY for the
// openai provider.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHATGRAPH_SELF_ID"); v != "" {
		c.SelfID = v
	}
	if v := os.Getenv("CHATGRAPH_SELF_NAME"); v != "" {
		c.SelfName = v
	}
	if v := os.Getenv("CHATGRAPH_ORACLE_BASE_URL"); v != "" {
		c.Oracle.BaseURL = v
	}
	if v := os.Getenv("CHATGRAPH_ORACLE_MODEL"); v != "" {
		c.Oracle.Model = v
	}
	if v := os.Getenv("CHATGRAPH_ORACLE_PROVIDER"); v != "" {
		c.Oracle.Provider = v
	}
	if v := os.Getenv("CHATGRAPH_ORACLE_API_KEY"); v != "" {
		c.Oracle.APIKey = v
	}
	if v := os.Getenv("CHATGRAPH_EMBED_BASE_URL"); v != "" {
		c.Embedding.BaseURL = v
	}
	if v := os.Getenv("CHATGRAPH_EMBED_MODEL"); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv("CHATGRAPH_EMBED_PROVIDER"); v != "" {
		c.Embedding.Provider = v
	}
	if v := os.Getenv("CHATGRAPH_EMBED_API_KEY"); v != "" {
		c.Embedding.APIKey = v
	}

	if c.Oracle.APIKey == "" && c.Oracle.Provider == "openai" {
		c.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Embedding.APIKey == "" && c.Embedding.Provider == "openai" {
		c.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate checks the configuration for values the analyzer cannot run
// with.
func (c *Config) Validate() error {
	if c.SelfID == "" {
		return fmt.Errorf("%w: self_id must not be empty", ErrInvalidConfig)
	}
	if _, err := topic.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.MinMessageLength < 0 {
		return fmt.Errorf("%w: min_message_length must not be negative", ErrInvalidConfig)
	}
	if c.MinTopicMessages < 0 {
		return fmt.Errorf("%w: min_topic_messages must not be negative", ErrInvalidConfig)
	}
	if c.TopicsRequested < 0 {
		return fmt.Errorf("%w: topics_requested must not be negative", ErrInvalidConfig)
	}
	if c.OracleTimeoutSeconds < 0 {
		return fmt.Errorf("%w: oracle_timeout_seconds must not be negative", ErrInvalidConfig)
	}
	return nil
}
