// Package advisor answers free-form financial questions, grounding the
// completion on knowledge snippets retrieved for the question.
package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/knowledge"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
	"fjacquet/finance-advisor/internal/textutils"
)

const (
	DefaultTopK          = 3
	DefaultHistoryWindow = 10
	MaxSources           = 3
	PreviewLength        = 200
)

const systemPrompt = `You are a helpful financial planning assistant. Provide clear, actionable advice
based on established financial principles. Be concise and practical, and say so when a
question needs a professional such as an accountant or a licensed advisor.`

// Options tunes retrieval and history truncation.
type Options struct {
	TopK          int
	HistoryWindow int
}

func (o Options) withDefaults() Options {
	if o.TopK < 1 {
		o.TopK = DefaultTopK
	}
	if o.HistoryWindow < 2 {
		o.HistoryWindow = DefaultHistoryWindow
	}
	return o
}

// Advisor is stateless; conversation state lives in the history the caller
// passes in and gets back.
type Advisor struct {
	completer aiclient.Completer
	searcher  knowledge.Searcher
	opts      Options
	logger    logging.Logger
}

// NewAdvisor creates an advisor. searcher may be nil, in which case every
// reply is ungrounded.
func NewAdvisor(completer aiclient.Completer, searcher knowledge.Searcher, opts Options, logger logging.Logger) (*Advisor, error) {
	if completer == nil {
		return nil, fmt.Errorf("advisor: completer is required")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Advisor{completer: completer, searcher: searcher, opts: opts.withDefaults(), logger: logger}, nil
}

// Chat answers message in the context of history. The returned history is a
// new slice: the caller's turns followed by the user message and the reply.
func (a *Advisor) Chat(ctx context.Context, message string, history []models.ChatTurn) (*models.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperror.NewValidationError("message", "", "must not be empty")
	}
	if err := ValidateHistory(history); err != nil {
		return nil, err
	}
	start := time.Now()

	results, grounded := a.retrieve(ctx, message)
	prompt := BuildPrompt(results, TruncateHistory(history, a.opts.HistoryWindow), message)

	reply, err := a.completer.Complete(ctx, aiclient.CompletionRequest{
		System:      systemPrompt,
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		a.logger.WithError(err).Error("Chat completion failed",
			logging.F(logging.FieldProvider, a.completer.Name()))
		return nil, asCapabilityError(a.completer.Name(), err)
	}
	if strings.TrimSpace(reply) == "" {
		return nil, &apperror.CapabilityError{
			Capability: aiclient.CapabilityCompletion,
			Provider:   a.completer.Name(),
			Kind:       apperror.CapabilityKindMalformed,
			Err:        fmt.Errorf("empty reply"),
		}
	}

	out := make([]models.ChatTurn, 0, len(history)+2)
	out = append(out, history...)
	out = append(out,
		models.ChatTurn{Role: models.RoleUser, Content: message},
		models.ChatTurn{Role: models.RoleAssistant, Content: reply},
	)

	a.logger.Info("Chat reply generated",
		logging.F(logging.FieldProvider, a.completer.Name()),
		logging.F(logging.FieldCount, len(results)),
		logging.F("grounded", grounded),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))

	return &models.ChatReply{
		Reply:    reply,
		History:  out,
		Sources:  Sources(results),
		Grounded: grounded,
	}, nil
}

// retrieve returns the snippets for message. Any failure degrades to an
// ungrounded answer rather than failing the chat.
func (a *Advisor) retrieve(ctx context.Context, message string) ([]models.SearchResult, bool) {
	if a.searcher == nil {
		return nil, false
	}
	results, err := a.searcher.Search(ctx, message, a.opts.TopK)
	if err != nil {
		a.logger.WithError(err).Warn("Knowledge retrieval failed, answering without context")
		return nil, false
	}
	return results, true
}

func asCapabilityError(provider string, err error) error {
	if apperror.Kind(err) != apperror.KindInternal {
		return err
	}
	return apperror.NewCapabilityError(aiclient.CapabilityCompletion, provider, err)
}

// BuildPrompt renders snippets, history and the new message as one prompt.
func BuildPrompt(results []models.SearchResult, history []models.ChatTurn, message string) string {
	var b strings.Builder
	if len(results) > 0 {
		b.WriteString("Use the following financial knowledge to inform your response:\n")
		for _, r := range results {
			fmt.Fprintf(&b, "- %s\n", r.Document.Text)
		}
		b.WriteString("\n")
	}
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s: %s", models.RoleUser, message)
	return b.String()
}

// TruncateHistory keeps the last window turns. The result shares no backing
// array with history.
func TruncateHistory(history []models.ChatTurn, window int) []models.ChatTurn {
	if window < 2 {
		window = 2
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}
	return append([]models.ChatTurn(nil), history...)
}

// ValidateHistory rejects turns with an unknown role or no content.
func ValidateHistory(history []models.ChatTurn) error {
	for i, turn := range history {
		if turn.Role != models.RoleUser && turn.Role != models.RoleAssistant {
			return apperror.NewValidationError(fmt.Sprintf("history[%d].role", i), turn.Role, "must be user or assistant")
		}
		if strings.TrimSpace(turn.Content) == "" {
			return apperror.NewValidationError(fmt.Sprintf("history[%d].content", i), "", "must not be empty")
		}
	}
	return nil
}

// Sources converts up to MaxSources results into previews for the caller.
func Sources(results []models.SearchResult) []models.ChatSource {
	n := len(results)
	if n > MaxSources {
		n = MaxSources
	}
	out := make([]models.ChatSource, 0, n)
	for _, r := range results[:n] {
		out = append(out, models.ChatSource{
			ID:         r.Document.ID,
			Source:     r.Document.Source,
			Preview:    textutils.Preview(r.Document.Text, PreviewLength),
			Similarity: r.Similarity,
		})
	}
	return out
}
