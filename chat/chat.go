package chat

import (
	"context"
	"fmt"
	"log"

	"github.com/priyanshu2307/Newschat/models"
	"github.com/priyanshu2307/Newschat/provider"
	"github.com/priyanshu2307/Newschat/retrieval"
	"github.com/priyanshu2307/Newschat/session"
	"github.com/priyanshu2307/Newschat/session/session_models"
)

// Orchestrator runs one retrieval-augmented conversational turn: validate
// the session, record the user message, retrieve context for it, generate a
// reply, and record that too. Steps are strictly sequential; the session
// store serializes concurrent turns on the same session.
type Orchestrator struct {
	sessions     session.Store
	embedder     provider.Embedder
	retriever    retrieval.Retriever
	llm          provider.LLM
	topK         int
	historyLimit int
	logger       *log.Logger
}

// NewOrchestrator wires the conversation pipeline. topK bounds retrieval
// breadth; historyLimit caps how many prior messages are replayed into the
// model (stored history is unbounded).
func NewOrchestrator(sessions session.Store, embedder provider.Embedder, retriever retrieval.Retriever, llm provider.LLM, topK, historyLimit int) *Orchestrator {
	if topK <= 0 {
		topK = 3
	}
	return &Orchestrator{
		sessions:     sessions,
		embedder:     embedder,
		retriever:    retriever,
		llm:          llm,
		topK:         topK,
		historyLimit: historyLimit,
		logger:       log.New(log.Writer(), "[CHAT] ", log.LstdFlags),
	}
}

// ProcessMessage handles one turn for the given session and returns the
// assistant's reply. A failure after the user message was appended leaves
// that message in history; there is no compensating rollback.
func (o *Orchestrator) ProcessMessage(ctx context.Context, sessionID, message string) (string, error) {
	if !o.sessions.Exists(sessionID) {
		return "", session_models.ErrNotFound
	}

	if err := o.sessions.Append(sessionID, session_models.Message{Role: session_models.RoleUser, Content: message}); err != nil {
		return "", err
	}

	history, err := o.sessions.History(sessionID)
	if err != nil {
		return "", err
	}
	// The just-appended user message is the query itself, not history.
	history = history[:len(history)-1]
	if o.historyLimit > 0 && len(history) > o.historyLimit {
		history = history[len(history)-o.historyLimit:]
	}

	vectors, err := o.embedder.CreateEmbedding(ctx, []string{message})
	if err != nil {
		upstreamErrors.WithLabelValues("embedding").Inc()
		return "", fmt.Errorf("embedding query: %w", err)
	}

	results, err := o.retriever.Retrieve(ctx, message, vectors[0], o.topK)
	if err != nil {
		upstreamErrors.WithLabelValues("index").Inc()
		return "", fmt.Errorf("retrieving context: %w", err)
	}
	contexts := contextTexts(results)

	reply, err := o.llm.Generate(ctx, BuildPrompt(message, contexts, history))
	if err != nil {
		upstreamErrors.WithLabelValues("llm").Inc()
		return "", fmt.Errorf("generating reply: %w", err)
	}

	if err := o.sessions.Append(sessionID, session_models.Message{Role: session_models.RoleAssistant, Content: reply}); err != nil {
		return "", err
	}
	chatTurns.Inc()
	return reply, nil
}

func contextTexts(results []models.SearchResult) []string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Document.Text)
	}
	return texts
}
