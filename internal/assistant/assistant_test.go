package assistant

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/contextstore"
	"fintrack/internal/core"
)

type fakeLedger struct {
	incomes  []core.Income
	expenses []core.Expense
	goals    []core.Goal
	err      error
}

func (f *fakeLedger) ListIncomes(ctx context.Context) ([]core.Income, error) {
	return f.incomes, f.err
}
func (f *fakeLedger) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return f.expenses, f.err
}
func (f *fakeLedger) ListGoals(ctx context.Context) ([]core.Goal, error) {
	return f.goals, f.err
}

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

type fakeClassifier struct {
	label string
	score float64
	err   error
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	return f.label, f.score, f.err
}

func newTestAssistant(t *testing.T, gen *fakeGenerator, cls *fakeClassifier) (*Assistant, *contextstore.Store) {
	t.Helper()
	store := contextstore.New(filepath.Join(t.TempDir(), "context_store.json"))
	ledger := &fakeLedger{
		incomes:  []core.Income{{Amount: core.Money{Cents: 100_00}, Source: "job"}},
		expenses: []core.Expense{{Amount: core.Money{Cents: 80_00}, Category: "food", Satisfaction: 3}},
	}
	return New(ledger, store, gen, cls), store
}

func TestChatGroundsPromptInLedger(t *testing.T) {
	gen := &fakeGenerator{reply: "You spent 80 on food."}
	a, _ := newTestAssistant(t, gen, &fakeClassifier{label: "neutral", score: 0.8})

	reply, err := a.Chat(context.Background(), "what did I spend?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "You spent 80 on food." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if !strings.Contains(gen.prompt, "Current balance: $20.00") {
		t.Fatalf("prompt not grounded in ledger: %s", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "what did I spend?") {
		t.Fatalf("prompt missing user question: %s", gen.prompt)
	}
}

func TestChatAppendsBothTurns(t *testing.T) {
	a, store := newTestAssistant(t, &fakeGenerator{reply: "fine."}, &fakeClassifier{label: "neutral"})

	if _, err := a.Chat(context.Background(), "hello"); err != nil {
		t.Fatalf("chat: %v", err)
	}

	history, err := store.ChatHistory()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history))
	}
	if history[0].Sender != contextstore.SenderUser || history[0].Message != "hello" {
		t.Fatalf("unexpected user turn: %+v", history[0])
	}
	if history[1].Sender != contextstore.SenderBot || history[1].Message != "fine." {
		t.Fatalf("unexpected bot turn: %+v", history[1])
	}
}

func TestChatGatewayFailureUsesFallback(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("503 from upstream")}
	a, store := newTestAssistant(t, gen, &fakeClassifier{label: "neutral"})

	reply, err := a.Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("gateway failure must not fail the turn: %v", err)
	}
	if reply != FallbackReply {
		t.Fatalf("expected fallback reply, got %q", reply)
	}

	// The apology still becomes the bot's turn.
	history, err := store.ChatHistory()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[1].Message != FallbackReply {
		t.Fatalf("fallback not recorded: %+v", history)
	}
}

func TestChatSentimentSuffix(t *testing.T) {
	cases := []struct {
		label      string
		wantSuffix bool
	}{
		{"sadness", true},
		{"joy", true},
		{"anger", true},
		{"neutral", false},
		{"fear", false},
		{"surprise", false},
		{"disgust", false},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			a, _ := newTestAssistant(t, &fakeGenerator{reply: "Base reply."}, &fakeClassifier{label: tc.label, score: 0.9})
			reply, err := a.Chat(context.Background(), "message")
			if err != nil {
				t.Fatalf("chat: %v", err)
			}
			if tc.wantSuffix && reply == "Base reply." {
				t.Fatalf("expected suffix for %q, got bare reply", tc.label)
			}
			if !tc.wantSuffix && reply != "Base reply." {
				t.Fatalf("expected unmodified reply for %q, got %q", tc.label, reply)
			}
			if tc.wantSuffix && !strings.HasPrefix(reply, "Base reply. ") {
				t.Fatalf("suffix should follow the reply: %q", reply)
			}
		})
	}
}

func TestChatClassifierFailureSkipsSuffix(t *testing.T) {
	a, _ := newTestAssistant(t, &fakeGenerator{reply: "Base reply."}, &fakeClassifier{err: errors.New("model loading")})
	reply, err := a.Chat(context.Background(), "I am so sad")
	if err != nil {
		t.Fatalf("classifier failure must not fail the turn: %v", err)
	}
	if reply != "Base reply." {
		t.Fatalf("expected unmodified reply, got %q", reply)
	}
}

func TestChatLedgerFailurePropagates(t *testing.T) {
	store := contextstore.New(filepath.Join(t.TempDir(), "context_store.json"))
	ledger := &fakeLedger{err: errors.New("database locked")}
	a := New(ledger, store, &fakeGenerator{reply: "x"}, &fakeClassifier{})

	if _, err := a.Chat(context.Background(), "hello"); err == nil {
		t.Fatalf("expected ledger error to propagate")
	}

	// No turns recorded for a failed read.
	history, err := store.ChatHistory()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %+v", history)
	}
}
