package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/stipend/internal/ledger"
	"github.com/theirongolddev/stipend/internal/logging"
	"github.com/theirongolddev/stipend/internal/model"
	"github.com/theirongolddev/stipend/internal/store"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)

func newTestService(t *testing.T, src Source) *Service {
	t.Helper()
	return New(Config{
		Source:       src,
		DBPath:       ":memory:",
		Interval:     10 * time.Second,
		EventsBuffer: 10,
		Logger:       logging.Discard(),
		Now:          func() time.Time { return testNow },
	})
}

// seed writes through a separate ledger, the way the CLI would.
func seed(t *testing.T, kv ledger.KV) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(kv, ledger.WithClock(func() time.Time { return testNow }), ledger.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.SetProfile(model.ProfileDraft{Name: "Asha", MonthlyBudget: "1000", School: "IIT"}); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		TotalSpend:   decimal.NewFromInt(300),
		TotalCredit:  decimal.NewFromInt(50),
		Balance:      decimal.NewFromInt(750),
		Transactions: 3,
		Onboarded:    true,
	}
	curr := Snapshot{
		TotalSpend:   decimal.NewFromInt(340),
		TotalCredit:  decimal.NewFromInt(50),
		Balance:      decimal.NewFromInt(710),
		Transactions: 4,
		Onboarded:    true,
	}

	delta := diffSnapshots(prev, curr)
	if !delta.Spend.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("Spend delta = %s, want 40", delta.Spend)
	}
	if !delta.Balance.Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("Balance delta = %s, want -40", delta.Balance)
	}
	if delta.Transactions != 1 {
		t.Fatalf("Transactions delta = %d, want 1", delta.Transactions)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots produced a non-zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2, Logger: logging.Discard()})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnce_EmitsOnlyOnChange(t *testing.T) {
	kv := store.NewMemory()
	l := seed(t, kv)
	s := newTestService(t, kv)

	s.pollOnce()
	s.pollOnce()
	if got := s.snapshotStatus().EventCount; got != 1 {
		t.Fatalf("events after two unchanged polls = %d, want 1", got)
	}

	if _, err := l.AddTransaction(model.TransactionDraft{
		Kind: model.KindSpend, Amount: "200", Category: model.CategoryFood,
	}); err != nil {
		t.Fatal(err)
	}
	s.pollOnce()

	st := s.snapshotStatus()
	if st.EventCount != 2 {
		t.Fatalf("events after change = %d, want 2", st.EventCount)
	}
	if !st.Summary.Balance.Equal(decimal.NewFromInt(800)) || !st.Summary.DailySpend.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("snapshot = %+v", st.Summary)
	}
	if st.PollCount != 3 {
		t.Fatalf("PollCount = %d, want 3", st.PollCount)
	}

	s.mu.RLock()
	last := s.events[len(s.events)-1]
	s.mu.RUnlock()
	if last.Type != "ledger_delta" || last.Delta.Transactions != 1 {
		t.Fatalf("last event = %+v", last)
	}
}

func TestPollOnce_RecordsErrors(t *testing.T) {
	s := newTestService(t, nil)
	s.pollOnce()
	st := s.snapshotStatus()
	if st.LastError == "" || st.PollCount != 1 || st.EventCount != 0 {
		t.Fatalf("status after failed poll = %+v", st)
	}
}

func TestHandler_Routes(t *testing.T) {
	kv := store.NewMemory()
	s := newTestService(t, kv)
	s.pollOnce()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	get := func(path string) (int, string) {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	if code, body := get("/healthz"); code != http.StatusOK || body != "ok\n" {
		t.Fatalf("/healthz = %d %q", code, body)
	}
	if code, _ := get("/v1/summary"); code != http.StatusNotFound {
		t.Fatalf("/v1/summary before onboarding = %d, want 404", code)
	}

	seed(t, kv)
	s.pollOnce()

	code, body := get("/v1/status")
	if code != http.StatusOK {
		t.Fatalf("/v1/status = %d", code)
	}
	var st Status
	if err := json.Unmarshal([]byte(body), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !st.Summary.Onboarded || st.Summary.Name != "Asha" {
		t.Fatalf("status summary = %+v", st.Summary)
	}

	code, body = get("/v1/summary")
	if code != http.StatusOK {
		t.Fatalf("/v1/summary = %d", code)
	}
	var sum model.Summary
	if err := json.Unmarshal([]byte(body), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if !sum.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("summary balance = %s, want 1000", sum.Balance)
	}

	code, body = get("/v1/events")
	var events []Event
	if err := json.Unmarshal([]byte(body), &events); err != nil || code != http.StatusOK {
		t.Fatalf("/v1/events = %d, %v", code, err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}

	code, body = get("/metrics")
	if code != http.StatusOK || !strings.Contains(body, "stipend_balance 1000") {
		t.Fatalf("/metrics = %d, missing balance gauge:\n%s", code, body)
	}
}

func TestStream_SendsCurrentSnapshot(t *testing.T) {
	kv := store.NewMemory()
	seed(t, kv)
	s := newTestService(t, kv)
	s.pollOnce()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /v1/stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}
	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if line != "event: snapshot\n" {
		t.Fatalf("first line = %q", line)
	}
	data, _ := r.ReadString('\n')
	if !strings.HasPrefix(data, "data: ") || !strings.Contains(data, `"onboarded":true`) {
		t.Fatalf("data line = %q", data)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := newTestService(t, store.NewMemory())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}
