package source

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/stipend/internal/model"
)

var backupTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Profile: &model.Profile{Name: "Asha", MonthlyBudget: decimal.NewFromInt(1000), School: "IIT", PaymentID: "asha@upi"},
		Transactions: []model.Transaction{
			{ID: "t1", Kind: model.KindSpend, Amount: decimal.NewFromInt(200), Category: model.CategoryFood, OccurredAt: backupTime},
			{ID: "t2", Kind: model.KindCredit, Amount: decimal.RequireFromString("50.25"), Category: model.CategoryOther, Notes: "refund", OccurredAt: backupTime},
		},
		PersonTransactions: []model.PersonTransaction{
			{ID: "p1", PersonName: "Ravi", Direction: model.DirectionGave, Amount: decimal.NewFromInt(300), CreatedAt: backupTime},
		},
	}
}

func TestWriteParse_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleSnapshot(), backupTime); err != nil {
		t.Fatalf("Write: %v", err)
	}

	res := Parse(&buf)
	if res.Err != nil {
		t.Fatalf("Parse: %v", res.Err)
	}
	if res.Lines != 5 || res.ParseErrors != 0 {
		t.Fatalf("lines=%d errors=%d, want 5/0", res.Lines, res.ParseErrors)
	}
	if !res.CreatedAt.Equal(backupTime) {
		t.Errorf("CreatedAt = %v", res.CreatedAt)
	}
	snap := res.Snapshot
	if snap.Profile == nil || snap.Profile.PaymentID != "asha@upi" {
		t.Fatalf("profile = %+v", snap.Profile)
	}
	if len(snap.Transactions) != 2 || snap.Transactions[1].Kind != model.KindCredit ||
		!snap.Transactions[1].Amount.Equal(decimal.RequireFromString("50.25")) {
		t.Fatalf("transactions = %+v", snap.Transactions)
	}
	if len(snap.PersonTransactions) != 1 || snap.PersonTransactions[0].Direction != model.DirectionGave {
		t.Fatalf("person transactions = %+v", snap.PersonTransactions)
	}
}

func TestParse_LastEntryWinsKeepsOrder(t *testing.T) {
	in := strings.Join([]string{
		`{"type":"transaction","data":{"id":"a","type":"spend","amount":"1","category":"Food","date":"2026-03-14T12:00:00Z"}}`,
		`{"type":"transaction","data":{"id":"b","type":"spend","amount":"2","category":"Food","date":"2026-03-14T12:00:00Z"}}`,
		`{"type":"transaction","data":{"id":"a","type":"spend","amount":"9","category":"Books","date":"2026-03-14T12:00:00Z"}}`,
	}, "\n")

	res := Parse(strings.NewReader(in))
	txs := res.Snapshot.Transactions
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if txs[0].ID != "a" || txs[0].Category != model.CategoryBooks || !txs[0].Amount.Equal(decimal.NewFromInt(9)) {
		t.Errorf("first = %+v, want updated a", txs[0])
	}
	if txs[1].ID != "b" {
		t.Errorf("second = %+v", txs[1])
	}
}

func TestParse_SkipsUnknownAndCountsMalformed(t *testing.T) {
	in := strings.Join([]string{
		`{"type":"comment","data":{"text":"hi"}}`,
		`{"type":"transaction","data":{"id":"a","type":"spend","amount":"oops"}}`,
		`{"type":"person","data":{"personName":"R"}}`,
		`not json at all`,
		``,
		`{"type":"person","data":{"id":"p","personName":"R","type":"received","amount":5}}`,
	}, "\n")

	res := Parse(strings.NewReader(in))
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Lines != 5 {
		t.Errorf("Lines = %d, want 5", res.Lines)
	}
	if res.ParseErrors != 2 {
		t.Errorf("ParseErrors = %d, want 2", res.ParseErrors)
	}
	if len(res.Snapshot.PersonTransactions) != 1 || res.Snapshot.PersonTransactions[0].Direction != model.DirectionReceived {
		t.Errorf("person transactions = %+v", res.Snapshot.PersonTransactions)
	}
}

func TestParse_RejectsNewerVersion(t *testing.T) {
	res := Parse(strings.NewReader(`{"type":"header","version":99}`))
	if res.Err == nil {
		t.Fatal("expected error for newer format version")
	}
}

func TestExtractTopLevelType(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`{"type":"profile","data":{}}`, "profile"},
		{`{"data":{"type":"spend"},"type":"transaction"}`, "transaction"},
		{`{"data":{"type":"gave"}}`, ""},
		{`{"note":"type","type" : "person"}`, "person"},
		{`{"type":"spend"}`, ""},
		{`{"type":null}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := extractTopLevelType([]byte(tt.line)); got != tt.want {
				t.Errorf("extractTopLevelType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	older, err := WriteFile(dir, sampleSnapshot(), backupTime)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	newer, err := WriteFile(dir, model.Snapshot{}, backupTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].Path != newer || files[1].Path != older {
		t.Fatalf("files = %+v", files)
	}

	latest, err := Latest(dir)
	if err != nil || latest.Path != newer {
		t.Fatalf("Latest = %+v, %v", latest, err)
	}

	if _, err := WriteFile(dir, model.Snapshot{}, backupTime); err == nil {
		t.Fatal("WriteFile overwrote an existing backup")
	}
}

func TestScanDir_Missing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil || files != nil {
		t.Fatalf("ScanDir = %v, %v", files, err)
	}
	if _, err := Latest(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("Latest on empty dir should fail")
	}
}
