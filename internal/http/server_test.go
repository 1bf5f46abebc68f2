package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/contextstore"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type fakeChatter struct {
	turns []contextstore.ChatTurn
	err   error
}

func (f *fakeChatter) Chat(ctx context.Context, message string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	reply := "noted: " + message
	f.turns = append(f.turns,
		contextstore.ChatTurn{Sender: contextstore.SenderUser, Message: message},
		contextstore.ChatTurn{Sender: contextstore.SenderBot, Message: reply})
	return reply, nil
}

func (f *fakeChatter) History() ([]contextstore.ChatTurn, error) {
	return f.turns, f.err
}

func newTestServer(t *testing.T) (*Server, *fakeChatter, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := storage.NewSQLiteRepository(filepath.Join(dir, "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	store := contextstore.New(filepath.Join(dir, "context_store.json"))
	svc := services.NewLedgerService(repo, store, nil)

	uploadDir := filepath.Join(dir, "receipts")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		t.Fatalf("mkdir uploads: %v", err)
	}

	chatter := &fakeChatter{}
	srv := NewServer(":0", svc, chatter, uploadDir)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv, chatter, uploadDir
}

func postForm(t *testing.T, srv *Server, path, form string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHomeAndHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rr := get(t, srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("home status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Budget: No Income") {
		t.Fatalf("empty ledger should report no income: %s", rr.Body.String())
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := get(t, srv, path); rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestHomeNotFoundForUnknownPath(t *testing.T) {
	srv, _, _ := newTestServer(t)
	if rr := get(t, srv, "/nope"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestAddIncomeFlow(t *testing.T) {
	srv, _, _ := newTestServer(t)

	if rr := get(t, srv, "/add-income"); rr.Code != http.StatusOK {
		t.Fatalf("form status=%d", rr.Code)
	}

	rr := postForm(t, srv, "/add-income", "amount=100.00&source=salary")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}

	home := get(t, srv, "/")
	if !strings.Contains(home.Body.String(), "$100.00 from salary") {
		t.Fatalf("income missing from overview: %s", home.Body.String())
	}
	if !strings.Contains(home.Body.String(), "Budget: Healthy") {
		t.Fatalf("expected healthy budget after income: %s", home.Body.String())
	}
}

func TestAddIncomeValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rr := postForm(t, srv, "/add-income", "amount=abc&source=salary")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad amount, got %d", rr.Code)
	}

	rr = postForm(t, srv, "/add-income", "amount=10.00&source=")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty source, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Source is required.") {
		t.Fatalf("expected source error in body: %s", rr.Body.String())
	}
}

func TestAddIncomeMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/add-income", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestAddExpenseWithReceipt(t *testing.T) {
	srv, _, uploadDir := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("amount", "25.50")
	mw.WriteField("category", "groceries")
	mw.WriteField("satisfaction", "4")
	fw, err := mw.CreateFormFile("receipt", "receipt.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte("fake image bytes"))
	mw.Close()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/add-expense", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rr.Code, rr.Body.String())
	}

	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one stored receipt, got %d", len(entries))
	}
	name := entries[0].Name()
	if filepath.Ext(name) != ".png" {
		t.Fatalf("stored receipt should keep the extension, got %q", name)
	}

	served := get(t, srv, "/receipts/"+name)
	if served.Code != http.StatusOK {
		t.Fatalf("receipt not served, status=%d", served.Code)
	}
	body, _ := io.ReadAll(served.Body)
	if string(body) != "fake image bytes" {
		t.Fatalf("unexpected receipt content: %q", body)
	}
}

func TestAddExpenseWithoutReceipt(t *testing.T) {
	srv, _, uploadDir := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("amount", "10.00")
	mw.WriteField("category", "coffee")
	mw.WriteField("satisfaction", "5")
	mw.Close()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/add-expense", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rr.Code, rr.Body.String())
	}

	entries, _ := os.ReadDir(uploadDir)
	if len(entries) != 0 {
		t.Fatalf("no receipt should be stored, got %d entries", len(entries))
	}
}

func TestAddExpenseValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("amount", "10.00")
	mw.WriteField("category", "coffee")
	mw.WriteField("satisfaction", "9")
	mw.Close()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/add-expense", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for satisfaction out of range, got %d", rr.Code)
	}
}

func TestGoalsFlow(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rr := postForm(t, srv, "/goals", "name=vacation&target=500.00")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/goals" {
		t.Fatalf("expected redirect to /goals, got %q", loc)
	}

	page := get(t, srv, "/goals")
	if !strings.Contains(page.Body.String(), "vacation") {
		t.Fatalf("goal missing from page: %s", page.Body.String())
	}
	if !strings.Contains(page.Body.String(), "0.00% of $500.00") {
		t.Fatalf("expected zero progress with empty ledger: %s", page.Body.String())
	}
}

func TestGoalsZeroTargetAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rr := postForm(t, srv, "/goals", "name=done&target=0")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect for zero target, got %d: %s", rr.Code, rr.Body.String())
	}

	page := get(t, srv, "/goals")
	if !strings.Contains(page.Body.String(), "100.00% of $0.00") {
		t.Fatalf("zero target should read complete: %s", page.Body.String())
	}
}

func TestChatFlow(t *testing.T) {
	srv, chatter, _ := newTestServer(t)

	rr := postForm(t, srv, "/chat", "message=how+am+I+doing%3F")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(chatter.turns) != 2 {
		t.Fatalf("expected recorded turns, got %+v", chatter.turns)
	}

	page := get(t, srv, "/chat")
	if !strings.Contains(page.Body.String(), "how am I doing?") {
		t.Fatalf("user turn missing from page: %s", page.Body.String())
	}
	if !strings.Contains(page.Body.String(), "noted: how am I doing?") {
		t.Fatalf("bot turn missing from page: %s", page.Body.String())
	}
}

func TestChatEmptyMessage(t *testing.T) {
	srv, chatter, _ := newTestServer(t)

	rr := postForm(t, srv, "/chat", "message=")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty message, got %d", rr.Code)
	}
	if len(chatter.turns) != 0 {
		t.Fatalf("empty message must not reach the assistant")
	}
}
