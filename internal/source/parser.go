// Package source reads and writes JSONL ledger backups.
//
// A backup is one JSON object per line. The top-level "type" key routes the
// line: "header", "profile", "transaction" or "person". Unknown types are
// skipped so newer backups still restore on older builds.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/stipend/internal/model"
)

// ParseResult holds the output of parsing one backup.
type ParseResult struct {
	Snapshot    model.Snapshot
	CreatedAt   time.Time
	Lines       int
	ParseErrors int
	Err         error
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path string) ParseResult {
	f, err := os.Open(path) //nolint:gosec // path chosen by the local user
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Parse reads a backup stream. Entries are deduplicated by id with the last
// line winning, and keep the order in which each id first appeared.
// Malformed lines are counted in ParseErrors rather than failing the parse.
func Parse(r io.Reader) ParseResult {
	var (
		res     ParseResult
		txs     = newOrdered[model.Transaction]()
		pts     = newOrdered[model.PersonTransaction]()
		profile *model.Profile
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		res.Lines++

		entryType := extractTopLevelType(line)
		if entryType == "" {
			continue
		}

		var entry RawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			res.ParseErrors++
			continue
		}

		switch entryType {
		case TypeHeader:
			if entry.Version > FormatVersion {
				return ParseResult{Err: fmt.Errorf("backup format version %d is newer than supported (%d)", entry.Version, FormatVersion)}
			}
			if entry.CreatedAt != nil {
				res.CreatedAt = *entry.CreatedAt
			}

		case TypeProfile:
			var p model.Profile
			if err := json.Unmarshal(entry.Data, &p); err != nil {
				res.ParseErrors++
				continue
			}
			profile = &p

		case TypeTransaction:
			var tx model.Transaction
			if err := json.Unmarshal(entry.Data, &tx); err != nil || tx.ID == "" {
				res.ParseErrors++
				continue
			}
			txs.put(tx.ID, tx)

		case TypePerson:
			var pt model.PersonTransaction
			if err := json.Unmarshal(entry.Data, &pt); err != nil || pt.ID == "" {
				res.ParseErrors++
				continue
			}
			pts.put(pt.ID, pt)
		}
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{Err: err}
	}

	res.Snapshot = model.Snapshot{
		Profile:            profile,
		Transactions:       txs.values(),
		PersonTransactions: pts.values(),
	}
	return res
}

// Write encodes snap as a backup, header first.
func Write(w io.Writer, snap model.Snapshot, createdAt time.Time) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	ts := createdAt.UTC()
	if err := enc.Encode(RawEntry{Type: TypeHeader, Version: FormatVersion, CreatedAt: &ts}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if snap.Profile != nil {
		if err := encodeRecord(enc, TypeProfile, snap.Profile); err != nil {
			return err
		}
	}
	for _, tx := range snap.Transactions {
		if err := encodeRecord(enc, TypeTransaction, tx); err != nil {
			return err
		}
	}
	for _, pt := range snap.PersonTransactions {
		if err := encodeRecord(enc, TypePerson, pt); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func encodeRecord(enc *json.Encoder, typ string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", typ, err)
	}
	if err := enc.Encode(RawEntry{Type: typ, Data: data}); err != nil {
		return fmt.Errorf("writing %s: %w", typ, err)
	}
	return nil
}

// ordered keeps the last value per id in first-seen order.
type ordered[T any] struct {
	index map[string]int
	items []T
}

func newOrdered[T any]() *ordered[T] {
	return &ordered[T]{index: make(map[string]int)}
}

func (o *ordered[T]) put(id string, v T) {
	if i, ok := o.index[id]; ok {
		o.items[i] = v
		return
	}
	o.index[id] = len(o.items)
	o.items = append(o.items, v)
}

func (o *ordered[T]) values() []T {
	return o.items
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line.
// Brace depth and string boundaries are tracked so the "type" keys inside
// transaction data (spend/credit, gave/received) are ignored.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				if val, isKey := classifyType(line, i+len(typeKey)); isKey {
					return val
				}
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyType checks whether pos follows a JSON key and returns its value
// when it is one of the known record types. isKey=false means "type"
// appeared as a string value and the caller should keep scanning.
func classifyType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 20 {
		return "", true
	}
	switch v := string(line[i : i+end]); v {
	case TypeHeader, TypeProfile, TypeTransaction, TypePerson:
		return v, true
	}
	return "", true
}

// skipJSONString advances past a JSON string starting at the opening quote.
//
//nolint:gosec // manual bounds checking throughout
func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}
