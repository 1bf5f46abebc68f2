// Package assistant orchestrates a conversational turn: it grounds the
// external model in the current ledger state, adapts the reply to the
// detected emotion, and records both turns in the context store.
package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/contextstore"
	"fintrack/internal/core"
)

// Ports for the external collaborators. Both are duck-typed on purpose
// so the core never depends on a specific vendor's payload shape.
type (
	Generator interface {
		Generate(ctx context.Context, prompt string) (string, error)
	}

	Classifier interface {
		Classify(ctx context.Context, text string) (label string, score float64, err error)
	}

	Ledger interface {
		ListIncomes(ctx context.Context) ([]core.Income, error)
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		ListGoals(ctx context.Context) ([]core.Goal, error)
	}
)

// FallbackReply is the bot's turn when the gateway fails; the turn is
// still recorded so history stays continuous.
const FallbackReply = "Sorry, something went wrong with the response."

// sentimentSuffixes holds the fixed supportive sentence per reacted-to
// emotion. Other labels leave the reply unmodified.
var sentimentSuffixes = map[string]string{
	"sadness": "I can tell this might be weighing on you. Small steps still move your finances forward.",
	"joy":     "Love the energy! Keep that momentum going with your money.",
	"anger":   "I hear the frustration. Let's take it one step at a time and get things back under control.",
}

type Assistant struct {
	ledger     Ledger
	store      *contextstore.Store
	generator  Generator
	classifier Classifier
}

func New(ledger Ledger, store *contextstore.Store, generator Generator, classifier Classifier) *Assistant {
	return &Assistant{
		ledger:     ledger,
		store:      store,
		generator:  generator,
		classifier: classifier,
	}
}

// Chat answers one user message. Ledger and persistence failures
// propagate; gateway and classifier failures are recovered locally.
func (a *Assistant) Chat(ctx context.Context, message string) (string, error) {
	prompt, err := a.buildPrompt(ctx, message)
	if err != nil {
		return "", err
	}

	// The gateway and the classifier are independent calls, so run
	// them concurrently. Neither failure aborts the turn.
	var (
		reply string
		label string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		generated, err := a.generator.Generate(gctx, prompt)
		if err != nil {
			slog.ErrorContext(gctx, "Gateway call failed, using fallback reply", "error", err)
			reply = FallbackReply
			return nil
		}
		reply = generated
		return nil
	})
	g.Go(func() error {
		detected, score, err := a.classifier.Classify(gctx, message)
		if err != nil {
			slog.WarnContext(gctx, "Sentiment classification failed, skipping suffix", "error", err)
			return nil
		}
		slog.DebugContext(gctx, "Detected sentiment", "label", detected, "score", score)
		label = detected
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	if suffix, ok := sentimentSuffixes[label]; ok {
		reply = reply + " " + suffix
	}

	if err := a.store.AppendChat(contextstore.SenderUser, message); err != nil {
		return "", fmt.Errorf("append user turn: %w", err)
	}
	if err := a.store.AppendChat(contextstore.SenderBot, reply); err != nil {
		return "", fmt.Errorf("append bot turn: %w", err)
	}

	return reply, nil
}

// History returns the persisted conversation, oldest first.
func (a *Assistant) History() ([]contextstore.ChatTurn, error) {
	return a.store.ChatHistory()
}

func (a *Assistant) buildPrompt(ctx context.Context, message string) (string, error) {
	incomes, err := a.ledger.ListIncomes(ctx)
	if err != nil {
		return "", fmt.Errorf("list incomes: %w", err)
	}
	expenses, err := a.ledger.ListExpenses(ctx)
	if err != nil {
		return "", fmt.Errorf("list expenses: %w", err)
	}
	goals, err := a.ledger.ListGoals(ctx)
	if err != nil {
		return "", fmt.Errorf("list goals: %w", err)
	}

	budget := core.EvaluateBudget(core.TotalIncome(incomes), core.TotalExpenses(expenses))
	progress := core.EvaluateGoals(budget.Balance, goals)
	grounding := core.AssembleContext(incomes, expenses, budget, progress)

	return fmt.Sprintf(
		"You are a personal finance assistant. Use this snapshot of the user's finances to answer. %s\n\nUser question: %s",
		grounding, message), nil
}
