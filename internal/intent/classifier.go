package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mkallio/liftwise/internal/llm"
	"github.com/mkallio/liftwise/internal/logging"
)

const classifierSystemPrompt = `You are an intent classifier for a fitness assistant. ` +
	`Classify the user's message into exactly one of the intent categories. ` +
	`Respond with ONLY the intent key, nothing else.`

// maxContextChars caps how much of the previous assistant message is sent
// back to the model for context.
const maxContextChars = 500

// Classifier maps free-form user messages onto the intent catalog using an
// LLM. Classification never fails: any provider error or unparseable
// response degrades to Unknown.
type Classifier struct {
	provider llm.Provider
	log      *logging.Logger
}

// NewClassifier returns a Classifier backed by the given provider.
func NewClassifier(provider llm.Provider) *Classifier {
	return &Classifier{
		provider: provider,
		log:      logging.Global().WithComponent("intent"),
	}
}

// Classify determines the intent of message. history is the prior
// conversation in chronological order; the most recent assistant turn, if
// any, is included in the prompt so follow-up messages classify correctly.
func (c *Classifier) Classify(ctx context.Context, message string, history []llm.Message) Intent {
	prompt := c.buildPrompt(message, history)

	resp, err := c.provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: classifierSystemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:    32,
		Temperature:  0,
	})
	if err != nil {
		c.log.Warn("intent classification failed: %v", err)
		return Unknown
	}

	result := sanitizeIntent(resp.Content)
	c.log.Debug("classified %q as %s", truncate(message, 80), result)
	return result
}

func (c *Classifier) buildPrompt(message string, history []llm.Message) string {
	var b strings.Builder

	b.WriteString("Intent categories:\n")
	b.WriteString(catalogJSON())
	b.WriteString("\n\n")

	if last := lastAssistantMessage(history); last != "" {
		b.WriteString("Previous assistant message:\n")
		b.WriteString(truncate(last, maxContextChars))
		b.WriteString("\n\n")
		b.WriteString("If the previous assistant message offered alternatives or suggestions ")
		b.WriteString("and the user is picking one of them, classify as SUGGESTION_IMPLEMENT.\n\n")
	}

	fmt.Fprintf(&b, "User message: %s\n\nIntent key:", message)
	return b.String()
}

// catalogJSON renders the intent catalog as a JSON object of key to
// description, in catalog order.
func catalogJSON() string {
	var b strings.Builder
	b.WriteString("{\n")
	all := AllIntents()
	for i, it := range all {
		desc, _ := json.Marshal(it.Description())
		fmt.Fprintf(&b, "  %q: %s", it.String(), desc)
		if i < len(all)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func lastAssistantMessage(history []llm.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "assistant" {
			return history[i].Content
		}
	}
	return ""
}

// sanitizeIntent extracts an intent key from a raw model response. An exact
// match (after trimming wrapping quotes and backticks) or a quoted occurrence
// of a catalog key anywhere in the response wins immediately; otherwise the
// response is scanned for word-bounded occurrences of catalog keys, keeping
// the last one found.
func sanitizeIntent(raw string) Intent {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, "`\"'")
	cleaned = strings.ToUpper(strings.TrimSpace(cleaned))

	if Intent(cleaned).IsValid() {
		return Intent(cleaned)
	}

	upper := strings.ToUpper(raw)
	for _, it := range AllIntents() {
		if strings.Contains(upper, `"`+it.String()+`"`) {
			return it
		}
	}

	found := Unknown
	for _, it := range AllIntents() {
		pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(it.String()) + `\b`)
		if pattern.MatchString(upper) {
			found = it
		}
	}
	return found
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
