// Package contextstore persists the derived financial snapshot and the
// chat history as a single JSON document on disk. The document grounds
// the conversational assistant between requests.
package contextstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"

	// maxChatHistory caps the persisted history; oldest turns are
	// evicted first.
	maxChatHistory = 50
)

type (
	ChatTurn struct {
		Sender  string `json:"sender"`
		Message string `json:"message"`
	}

	BudgetSection struct {
		Status string `json:"status"`
		Advice string `json:"advice"`
	}

	GoalEntry struct {
		Name   string  `json:"name"`
		Target float64 `json:"target"`
	}

	// Snapshot is the derived-state half of the document. Writing a
	// snapshot never touches the chat history.
	Snapshot struct {
		Budget       BudgetSection
		TotalIncome  float64
		TotalExpense float64
		Balance      float64
		Goals        []GoalEntry
	}

	Document struct {
		Budget       BudgetSection `json:"budget"`
		TotalIncome  float64       `json:"total_income"`
		TotalExpense float64       `json:"total_expense"`
		Balance      float64       `json:"balance"`
		Goals        []GoalEntry   `json:"goals"`
		ChatHistory  []ChatTurn    `json:"chat_history"`
	}
)

// Store is a single-writer cache of the context document. A mutex
// serializes read-modify-write cycles so concurrent chat appends cannot
// overwrite each other.
type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func defaultDocument() Document {
	return Document{
		Budget:      BudgetSection{Status: "Unknown", Advice: "No data yet."},
		Goals:       []GoalEntry{},
		ChatHistory: []ChatTurn{},
	}
}

// Init writes a placeholder document if none exists yet. It is
// idempotent: an existing document is left untouched.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked()
}

func (s *Store) initLocked() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat context document: %w", err)
	}
	return s.writeLocked(defaultDocument())
}

// Read returns the current document, initializing the store first if
// the document is missing.
func (s *Store) Read() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *Store) readLocked() (Document, error) {
	if err := s.initLocked(); err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Document{}, fmt.Errorf("read context document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode context document: %w", err)
	}
	return doc, nil
}

// WriteSnapshot overwrites the budget, totals and goals sections with
// freshly computed values. The chat history is preserved: snapshot and
// history are independently updated sections of the same document.
func (s *Store) WriteSnapshot(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked()
	if err != nil {
		return err
	}
	doc.Budget = snap.Budget
	doc.TotalIncome = snap.TotalIncome
	doc.TotalExpense = snap.TotalExpense
	doc.Balance = snap.Balance
	doc.Goals = snap.Goals
	if doc.Goals == nil {
		doc.Goals = []GoalEntry{}
	}
	return s.writeLocked(doc)
}

// Update shallow-merges the given top-level fields into the document:
// matching keys are replaced, everything else is left untouched.
func (s *Store) Update(fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(); err != nil {
		return err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read context document: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode context document: %w", err)
	}
	for k, v := range fields {
		raw[k] = v
	}
	return s.writeRawLocked(raw)
}

// AppendChat appends one turn and truncates the history to the most
// recent maxChatHistory entries.
func (s *Store) AppendChat(sender, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked()
	if err != nil {
		return err
	}
	doc.ChatHistory = append(doc.ChatHistory, ChatTurn{Sender: sender, Message: message})
	if n := len(doc.ChatHistory); n > maxChatHistory {
		doc.ChatHistory = doc.ChatHistory[n-maxChatHistory:]
	}
	return s.writeLocked(doc)
}

// ChatHistory returns the persisted chat turns, oldest first.
func (s *Store) ChatHistory() ([]ChatTurn, error) {
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}
	if doc.ChatHistory == nil {
		return []ChatTurn{}, nil
	}
	return doc.ChatHistory, nil
}

func (s *Store) writeLocked(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode context document: %w", err)
	}
	return s.replaceLocked(data)
}

func (s *Store) writeRawLocked(raw map[string]any) error {
	data, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return fmt.Errorf("encode context document: %w", err)
	}
	return s.replaceLocked(data)
}

// replaceLocked writes through a temp file and renames it over the
// document, so a failed write never leaves a partial document behind.
func (s *Store) replaceLocked(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create context directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".context-*.json")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace context document: %w", err)
	}
	return nil
}
