package topic

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"chatgraph/llm"
)

// DefaultTimeout caps a single topic extraction call. Local models can
// take a while on a cold start, but a corpus that cannot be answered in a
// minute is skipped rather than waited out.
const DefaultTimeout = 60 * time.Second

// probeTimeout caps the one-off availability probe. The probe endpoint
// answers instantly on a healthy backend, so a short deadline is enough.
const probeTimeout = 5 * time.Second

// legacyPrompt asks for a fixed number of prominent topics.
const legacyPrompt = `You are analysing a sample of personal messages from one conversation history.

Name the %d most discussed conversation topics in these messages.

Rules:
- Reply with ONLY a comma-separated list of short topic labels.
- Each label is one to three words. No numbering, no explanations.
- Use plain generic labels ("work", "covid", "travel"), not quotes from the messages.

MESSAGES:
%s`

// unlimitedPrompt asks for every meaningful topic, minor ones included.
const unlimitedPrompt = `You are analysing a sample of personal messages from one conversation history.

Name every meaningful conversation topic in these messages. Include minor topics, not just the dominant ones, but only topics actually discussed.

Rules:
- Reply with ONLY a comma-separated list of short topic labels.
- Each label is one to three words. No numbering, no explanations.
- Use plain generic labels ("work", "covid", "travel"), not quotes from the messages.

MESSAGES:
%s`

// Oracle asks a language-model backend to name the topics discussed in a
// corpus of message texts. The backend is fallible and treated that way:
// exactly one attempt per corpus, a hard deadline per call, and a cached
// availability probe so a downed backend costs one connection error per
// run instead of one per contact.
type Oracle struct {
	provider llm.Provider
	model    string
	timeout  time.Duration

	probeOnce sync.Once
	probeErr  error
}

// NewOracle wraps a provider for topic extraction. A zero timeout selects
// DefaultTimeout.
func NewOracle(provider llm.Provider, model string, timeout time.Duration) *Oracle {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Oracle{provider: provider, model: model, timeout: timeout}
}

// Available reports whether the backend answered a reachability probe.
// The probe runs at most once per Oracle and the verdict is cached for
// the lifetime of the run, even if the backend comes back later.
func (o *Oracle) Available(ctx context.Context) bool {
	o.probeOnce.Do(func() {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		o.probeErr = o.provider.Ping(probeCtx)
		if o.probeErr != nil {
			slog.Warn("topic: oracle unavailable", "error", o.probeErr)
		}
	})
	return o.probeErr == nil
}

// ExtractTopics sends one corpus to the oracle and returns the raw topic
// candidates parsed from its reply. In legacy mode the oracle is asked
// for the requested number of prominent topics; in unlimited mode it is
// asked for everything meaningful and requested is ignored. The call is
// made exactly once; any failure is returned to the caller to degrade on.
func (o *Oracle) ExtractTopics(ctx context.Context, texts []string, requested int, mode Mode) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.provider.Chat(callCtx, llm.ChatRequest{
		Model: o.model,
		Messages: []llm.Message{
			{Role: "user", Content: buildPrompt(texts, requested, mode)},
		},
		Temperature: 0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("topic extraction chat: %w", err)
	}

	return parseCandidates(resp.Content), nil
}

// buildPrompt renders the extraction prompt for a corpus. The texts are
// resampled down to maxPromptTexts with the same stride walk used for
// corpus sampling, so the prompt is deterministic for a given corpus.
func buildPrompt(texts []string, requested int, mode Mode) string {
	idx := SampleIndices(len(texts), maxPromptTexts)

	var b strings.Builder
	for i, j := range idx {
		fmt.Fprintf(&b, "%d. %s\n", i+1, sanitizeForPrompt(texts[j]))
	}

	if mode == ModeLegacy {
		return fmt.Sprintf(legacyPrompt, requested, b.String())
	}
	return fmt.Sprintf(unlimitedPrompt, b.String())
}

// sanitizeForPrompt collapses whitespace so each message stays on its
// numbered line, and truncates runaway bodies.
func sanitizeForPrompt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > maxPromptTextRunes {
		runes := []rune(text)
		text = string(runes[:maxPromptTextRunes]) + "..."
	}
	return text
}

// listMarkerRe strips leading bullet or numbering markers from a reply line.
var listMarkerRe = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)])\s*`)

// parseCandidates splits an oracle reply into raw topic candidates. The
// reply is nominally a single comma-separated line, but small local
// models pad it with preambles, bullets and newlines. Splitting on both
// newlines and commas, stripping list markers and dropping anything
// before a colon recovers the labels from all the observed reply shapes.
func parseCandidates(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = listMarkerRe.ReplaceAllString(line, "")
		for _, part := range strings.Split(line, ",") {
			if i := strings.IndexByte(part, ':'); i >= 0 {
				part = part[i+1:]
			}
			part = strings.TrimSpace(part)
			if part == "" || isPreamble(part) {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

// isPreamble spots the chatty lead-ins some models insist on despite the
// instructions.
func isPreamble(s string) bool {
	l := strings.ToLower(s)
	for _, p := range []string{"here are", "here is", "sure", "certainly", "of course", "the topics", "topics discussed", "based on"} {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return false
}
