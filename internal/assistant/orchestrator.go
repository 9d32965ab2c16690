package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/mkallio/liftwise/internal/intent"
	"github.com/mkallio/liftwise/internal/llm"
	"github.com/mkallio/liftwise/internal/logging"
	"github.com/mkallio/liftwise/internal/metrics"
	"github.com/mkallio/liftwise/internal/search"
)

// historyWindow is how many trailing turns are handed to the classifier and
// completion prompts.
const historyWindow = 6

const assistantSystemPrompt = `You are a knowledgeable, encouraging fitness assistant. ` +
	`Answer using the workout data provided in the context. Be concise and specific; ` +
	`use the user's actual numbers when they are available. If the context is empty, ` +
	`say so rather than inventing data.`

const greetingReply = "Hey! I'm your training assistant. Ask me about your workouts, routines, " +
	"or programs, or ask me to swap an exercise for an alternative."

const unknownReply = "I'm sorry, I'm not sure how to help with that. I can answer questions about " +
	"your workouts, routines, and programs, analyze your training, or swap exercises in a routine."

const internalErrorReply = "Something went wrong while handling that. Please try again."

// WebSearcher enriches program analysis with external results. Optional.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// TurnResult is what one handled message produces.
type TurnResult struct {
	Response string        `json:"response"`
	Intent   intent.Intent `json:"intent"`
}

// Orchestrator is the single entry point for conversation turns. It owns
// per-session state (transcript and pending swap slot) and routes each
// message to the right handler family.
type Orchestrator struct {
	provider   llm.Provider
	api        FitnessAPI
	cache      *TemplateCache
	classifier *intent.Classifier
	resolver   *Resolver
	searcher   WebSearcher
	log        *logging.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSearcher enables web-search enrichment for program analysis.
func WithSearcher(s WebSearcher) Option {
	return func(o *Orchestrator) { o.searcher = s }
}

// New builds an Orchestrator over the given LLM provider, fitness API, and
// template cache.
func New(provider llm.Provider, api FitnessAPI, cache *TemplateCache, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:   provider,
		api:        api,
		cache:      cache,
		classifier: intent.NewClassifier(provider),
		resolver:   NewResolver(api, cache),
		log:        logging.Global().WithComponent("orchestrator"),
		sessions:   make(map[string]*session),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// sessionIdleTTL is how long a session may sit untouched before its state is
// dropped. Persistence, when enabled, lives in the transcript store, so an
// evicted session only loses its in-memory pending slot.
const sessionIdleTTL = 12 * time.Hour

// session returns the state for sessionID, creating it on first use. Every
// lookup also sweeps sessions idle past sessionIdleTTL so a long-running
// server does not accumulate dead conversation state.
func (o *Orchestrator) session(sessionID string) *session {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := time.Now()
	for id, s := range o.sessions {
		if id != sessionID && now.Sub(s.lastActive) > sessionIdleTTL {
			delete(o.sessions, id)
		}
	}

	s, ok := o.sessions[sessionID]
	if !ok {
		s = &session{}
		o.sessions[sessionID] = s
	}
	s.lastActive = now
	metrics.ActiveSessions.Set(float64(len(o.sessions)))
	return s
}

// HandleTurn processes one user message for a session and returns the
// assistant's reply together with the resolved intent. A session handles one
// turn at a time; failures surface as normal assistant turns, never as an
// error to the caller.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, message string) *TurnResult {
	sess := o.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var (
		it intent.Intent
		tc *TurnContext
	)

	// Pending pre-check: an open swap proposal short-circuits
	// classification when the message picks a suggestion or names any
	// exercise with a selection verb. The implement phase decides whether
	// the named exercise exists.
	if sess.pending != nil {
		if title, ok := intent.MatchSuggestion(message, sess.pending.SuggestionTitles()); ok {
			it = intent.SuggestionImplement
			tc = &TurnContext{PendingSwap: sess.pending, ChosenName: title}
		} else {
			// Unrelated follow-up abandons the proposal.
			sess.pending = nil
		}
	}

	if tc == nil {
		it = o.classifier.Classify(ctx, message, o.recentMessages(sess))
		tc = o.resolver.Resolve(ctx, it, message)
		if it != intent.SuggestionImplement && sess.pending != nil {
			sess.pending = nil
		}
	}

	response, err := o.dispatch(ctx, sess, it, message, tc)
	if err != nil {
		o.log.Error("turn failed for intent %s: %v", it, err)
		response = internalErrorReply
	}

	metrics.TurnCount.WithLabelValues(it.String()).Inc()

	sess.append("user", message)
	if response != "" {
		sess.append("assistant", response)
	}

	return &TurnResult{Response: response, Intent: it}
}

// dispatch routes an intent to its handler family. The returned intent in
// the turn record is normalized to UNKNOWN when nothing handles it.
func (o *Orchestrator) dispatch(ctx context.Context, sess *session, it intent.Intent, message string, tc *TurnContext) (string, error) {
	switch {
	case it == intent.Greeting:
		return greetingReply, nil
	case it == intent.Unknown:
		return unknownReply, nil
	case it.IsInfo():
		return o.handleInfo(ctx, sess, it, message, tc)
	case it.IsAnalysis():
		return o.handleAnalysis(ctx, it, message, tc)
	case it.IsModification():
		return o.handleModification(ctx, sess, it, message, tc), nil
	default:
		return unknownReply, nil
	}
}

// handleModification routes the mutation intents. Only the exercise-swap
// protocol acts; the other mutation intents explain themselves and stop.
func (o *Orchestrator) handleModification(ctx context.Context, sess *session, it intent.Intent, message string, tc *TurnContext) string {
	switch it {
	case intent.ExerciseSwap:
		return o.proposeSwap(ctx, sess, tc)
	case intent.SuggestionImplement:
		return o.implementSwap(ctx, sess, message, tc)
	case intent.ProgramCreate:
		return "I can't create programs yet. If I could, I'd build one from your training history and goals. " +
			"For now you can create one in the app and I'll happily analyze it."
	case intent.RoutineUpdate:
		return "I can't edit routines directly yet, except for swapping one exercise for another. " +
			"Ask me to swap an exercise and I'll suggest alternatives."
	default:
		return unknownReply
	}
}

// recentMessages converts the tail of the transcript for the classifier.
func (o *Orchestrator) recentMessages(sess *session) []llm.Message {
	turns := sess.turns
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}
	out := make([]llm.Message, len(turns))
	for i, t := range turns {
		out[i] = llm.Message{Role: t.Role, Content: t.Content}
	}
	return out
}

// complete runs one completion call and records its duration.
func (o *Orchestrator) complete(ctx context.Context, userPrompt string) (string, error) {
	start := time.Now()
	resp, err := o.provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: assistantSystemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: userPrompt}},
	})
	metrics.ObserveLLM(o.provider.Name(), time.Since(start))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// renderStatus turns an internal status line into user-facing prose through
// the completion step, falling back to the plain text when the model is
// unreachable. Used where the action already succeeded and the reply must
// not fail the turn.
func (o *Orchestrator) renderStatus(ctx context.Context, status, fallback string) string {
	out, err := o.complete(ctx, "Relay this outcome to the user in one or two friendly sentences: "+status)
	if err != nil {
		o.log.Warn("status rendering failed, using fallback: %v", err)
		return fallback
	}
	return out
}
