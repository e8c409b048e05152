// Package chat implements the conversational turn pipeline: canned replies,
// subject classification, profile accumulation, query rewriting, retrieval
// with relevance validation, office link generation, and streamed answer
// generation.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"

	"github.com/guiacidadao/guia/internal/intent"
	"github.com/guiacidadao/guia/internal/places"
	"github.com/guiacidadao/guia/internal/profile"
	"github.com/guiacidadao/guia/internal/query"
	"github.com/guiacidadao/guia/internal/session"
)

// Sentinel errors for turn handling.
var (
	// ErrEmptyUtterance indicates the request carried no question text.
	ErrEmptyUtterance = errors.New("empty utterance")

	// ErrInvalidSession indicates the session ID is invalid or malformed.
	ErrInvalidSession = errors.New("invalid session")

	// ErrExecutionFailed indicates answer generation failed.
	ErrExecutionFailed = errors.New("execution failed")
)

// Canned replies for the deterministic turn outcomes.
const (
	// NoContextReply is returned verbatim when retrieval finds nothing
	// relevant. The model is never consulted in that case.
	NoContextReply = "Não encontrei informações sobre isso nos documentos disponíveis. Pode reformular sua pergunta ou fornecer mais detalhes sobre o que precisa?"

	// NameUnknownReply answers "qual é meu nome" when no name is stored.
	NameUnknownReply = "Eu não vejo seu nome automaticamente. Posso ajudar com RG, CPF ou Bolsa Família se você quiser."
)

// StreamCallback is called for each chunk of a streaming response.
// Return an error to abort the stream.
type StreamCallback func(ctx context.Context, chunk *ai.ModelResponseChunk) error

// Generator produces the final answer text from a fully assembled prompt.
// The production implementation wraps a model with retry and rate limiting;
// tests substitute a fake.
type Generator interface {
	Generate(ctx context.Context, prompt string, callback StreamCallback) (string, error)
}

// Retriever finds document context for a query. An empty string means
// nothing relevant was stored.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// ProfileExtractor runs the model-backed profile stages.
type ProfileExtractor interface {
	ProfileFields(ctx context.Context, utterance string) (profile.Profile, error)
	ClassifyRole(ctx context.Context, utterance string) (string, error)
}

// Response is the outcome of one turn.
type Response struct {
	// Direct is true when the answer came from a deterministic rule
	// (smalltalk, closing, profile question, curated answer, missing
	// context) and generation was skipped.
	Direct bool

	// Text is the complete answer. For generated answers it equals the
	// concatenation of all streamed chunks.
	Text string

	// SessionID identifies the conversation, freshly allocated when the
	// request carried none.
	SessionID string
}

// Config contains all required parameters for the Agent.
type Config struct {
	Sessions  *session.Store
	Retriever Retriever
	Generator Generator
	Extractor ProfileExtractor
	Resolver  places.Resolver
	Logger    *slog.Logger
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Sessions == nil {
		return errors.New("session store is required")
	}
	if cfg.Retriever == nil {
		return errors.New("retriever is required")
	}
	if cfg.Generator == nil {
		return errors.New("generator is required")
	}
	if cfg.Extractor == nil {
		return errors.New("extractor is required")
	}
	if cfg.Resolver == nil {
		return errors.New("resolver is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Agent orchestrates one conversational turn end to end. It is stateless;
// conversation state lives in the session store. Safe for concurrent use.
type Agent struct {
	sessions  *session.Store
	retriever Retriever
	generator Generator
	extractor ProfileExtractor
	resolver  places.Resolver
	logger    *slog.Logger
}

// New creates an Agent.
func New(cfg Config) (*Agent, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Agent{
		sessions:  cfg.Sessions,
		retriever: cfg.Retriever,
		generator: cfg.Generator,
		extractor: cfg.Extractor,
		resolver:  cfg.Resolver,
		logger:    cfg.Logger,
	}, nil
}

// turnState is the working copy of session state for one turn. The session
// lock is never held across model calls; the state is read once, mutated
// locally, and written back at each stage boundary.
type turnState struct {
	profile profile.Profile
	recent  []string
	turns   []session.Turn
}

// HandleTurn runs the full pipeline for one utterance. The optional patch
// overwrites stored profile fields before processing (an explicit statement
// from the citizen beats anything inferred earlier). When callback is
// non-nil, generated answers are streamed through it chunk by chunk.
func (a *Agent) HandleTurn(ctx context.Context, sessionID, utterance string, patch *profile.Profile, callback StreamCallback) (*Response, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, ErrEmptyUtterance
	}
	if sessionID == "" {
		sessionID = a.sessions.Create()
	}

	var st turnState
	a.sessions.WithSession(sessionID, func(s *session.Session) {
		st.profile = s.Profile
		st.recent = append([]string(nil), s.Recent...)
		st.turns = append([]session.Turn(nil), s.Turns...)
	})

	st.recent = append(st.recent, utterance)
	if len(st.recent) > 5 {
		st.recent = st.recent[len(st.recent)-5:]
	}
	// Each stage writes its result back as soon as it is computed, so a
	// panic or crash later in the turn never loses what earlier stages
	// already learned. The lock is still never held across model calls.
	a.save(sessionID, st)

	lower := strings.ToLower(utterance)

	// Name questions use only what was stored before this turn.
	if strings.Contains(lower, "qual") && strings.Contains(lower, "meu nome") {
		if st.profile.Name != "" {
			return a.direct(sessionID, st, fmt.Sprintf("Você me disse que seu nome é %s.", st.profile.Name)), nil
		}
		return a.direct(sessionID, st, NameUnknownReply), nil
	}

	if reply := intent.Smalltalk(utterance); reply != "" {
		return a.direct(sessionID, st, reply), nil
	}
	if intent.IsClosing(utterance) {
		return a.direct(sessionID, st, intent.ClosingReply), nil
	}

	if patch != nil {
		applyPatch(&st.profile, *patch)
	}

	// Classification only runs when the message plainly carries a subject,
	// so "sim" never flips the axis to OUTRO.
	clearSubject := intent.HasClearSubject(utterance)
	if clearSubject {
		axis := intent.ClassifyAxis(utterance)
		if intent.WantsSubjectChange(utterance) || st.profile.Axis == "" {
			st.profile.Axis = axis
		}
		if sub := intent.ClassifySubtrack(utterance); sub != "" && st.profile.Subtrack == "" {
			st.profile.Subtrack = sub
		}
		if st.profile.Intent == "" {
			st.profile.Intent = utterance
		}
	}
	if patch != nil || clearSubject {
		a.save(sessionID, st)
	}

	a.fillProfile(ctx, utterance, &st.profile)

	if st.profile.Problem == "" {
		st.profile.Problem = utterance
	}
	if st.profile.Intent == "" && clearSubject {
		st.profile.Intent = utterance
	}
	a.save(sessionID, st)

	// Questions about the stored profile itself.
	if strings.Contains(lower, "meus dados") || strings.Contains(lower, "que dados") {
		return a.direct(sessionID, st, "Você me contou: "+st.profile.Summary()), nil
	}
	if strings.Contains(lower, "meu nome") && st.profile.Name != "" {
		return a.direct(sessionID, st, fmt.Sprintf("Você me disse que seu nome é %s. Posso seguir na orientação?", st.profile.Name)), nil
	}

	if reply := intent.FixedAnswer(utterance); reply != "" {
		return a.direct(sessionID, st, reply), nil
	}

	searchQuery := query.Build(utterance, st.profile, st.recent)
	contextText := a.retrieveChain(ctx, searchQuery, utterance, st.profile.Axis)

	if contextText != "" && !query.IsRelevant(contextText, utterance, st.profile.Axis) {
		a.logger.Debug("discarding off-subject context", "axis", st.profile.Axis)
		contextText = ""
	}
	if contextText == "" {
		return a.direct(sessionID, st, NoContextReply), nil
	}

	linksBlock := a.linksBlock(utterance, st.profile)
	profileBlock := buildProfileBlock(st.profile, st.recent)
	finalContext := profileBlock + "DADOS DOS DOCUMENTOS:\n" + contextText + linksBlock
	history := formatHistory(st.turns, historyMaxTurns, historyMaxChars)

	prompt := buildPrompt(finalContext, history, utterance)

	text, genErr := a.generator.Generate(ctx, prompt, callback)
	if text != "" {
		// A partially streamed answer was already seen by the citizen, so
		// it goes into history even when the stream broke midway.
		a.sessions.WithSession(sessionID, func(s *session.Session) {
			s.PushTurn(utterance, text)
		})
	}
	if genErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutionFailed, genErr)
	}

	return &Response{Text: text, SessionID: sessionID}, nil
}

// fillProfile runs the extraction stages, cheapest first, each filling only
// fields that are still empty.
func (a *Agent) fillProfile(ctx context.Context, utterance string, p *profile.Profile) {
	if !p.Complete() {
		p.Merge(profile.FromUtterance(utterance))
	}

	if !p.Complete() {
		extracted, err := a.extractor.ProfileFields(ctx, utterance)
		if err != nil {
			a.logger.Warn("profile extraction failed", "error", err)
		} else {
			p.Merge(extracted)
		}
	}

	profile.FillShortAnswer(utterance, p)
	if p.Role == "" {
		if role := profile.RoleFromShortAnswer(utterance); role != "" {
			p.Role = role
		} else if role, err := a.extractor.ClassifyRole(ctx, utterance); err != nil {
			a.logger.Warn("role classification failed", "error", err)
		} else {
			p.Role = role
		}
	}
}

// retrieveChain tries the rewritten query, then the bare axis, then the
// original utterance. Retrieval failures are treated as missing context so
// the citizen gets the explicit no-context message instead of a 500.
func (a *Agent) retrieveChain(ctx context.Context, searchQuery, utterance, axis string) string {
	contextText := a.retrieve(ctx, searchQuery)
	if strings.TrimSpace(contextText) == "" && axis != "" {
		contextText = a.retrieve(ctx, axis)
	}
	if strings.TrimSpace(contextText) == "" && searchQuery != utterance {
		contextText = a.retrieve(ctx, utterance)
	}
	return strings.TrimSpace(contextText)
}

func (a *Agent) retrieve(ctx context.Context, q string) string {
	text, err := a.retriever.Retrieve(ctx, q)
	if err != nil {
		a.logger.Warn("retrieval failed", "error", err)
		return ""
	}
	return text
}

// linksBlock generates office map links when the citizen explicitly asked
// where to go. The subject context (axis, stored intent) is appended to the
// utterance so a bare "onde fica?" still finds the right office.
func (a *Agent) linksBlock(utterance string, p profile.Profile) string {
	if !places.WantsLocation(utterance) {
		return ""
	}

	enriched := utterance
	if p.Axis != "" {
		enriched += " " + p.Axis
	}
	if p.Intent != "" {
		enriched += " " + p.Intent
	}

	links := a.resolver.Links(enriched, p.Locale, true)
	if len(links) == 0 && p.Axis != "" {
		links = a.resolver.Links(p.Axis+" "+utterance, p.Locale, true)
	}
	return places.Block(links)
}

// direct persists the turn state and returns a deterministic reply.
func (a *Agent) direct(sessionID string, st turnState, text string) *Response {
	a.save(sessionID, st)
	a.sessions.WithSession(sessionID, func(s *session.Session) {
		s.PushTurn(st.recent[len(st.recent)-1], text)
	})
	return &Response{Direct: true, Text: text, SessionID: sessionID}
}

// save writes the working profile and recent window back to the store.
func (a *Agent) save(sessionID string, st turnState) {
	a.sessions.WithSession(sessionID, func(s *session.Session) {
		s.Profile = st.profile
		s.Recent = append([]string(nil), st.recent...)
	})
}

// applyPatch overwrites stored fields with the non-empty fields of the
// request patch.
func applyPatch(p *profile.Profile, patch profile.Profile) {
	if patch.Name != "" {
		p.Name = patch.Name
	}
	if patch.Age != 0 {
		p.Age = patch.Age
	}
	if patch.Gender != "" {
		p.Gender = patch.Gender
	}
	if patch.Role != "" {
		p.Role = patch.Role
	}
	if patch.Locale != "" {
		p.Locale = patch.Locale
	}
	if patch.Problem != "" {
		p.Problem = patch.Problem
	}
	if patch.Intent != "" {
		p.Intent = patch.Intent
	}
	if patch.Axis != "" {
		p.Axis = patch.Axis
	}
	if patch.Subtrack != "" {
		p.Subtrack = patch.Subtrack
	}
}
