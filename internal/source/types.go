package source

import (
	"encoding/json"
	"time"
)

// Record types written on the "type" key of each backup line.
const (
	TypeHeader      = "header"
	TypeProfile     = "profile"
	TypeTransaction = "transaction"
	TypePerson      = "person"
)

// FormatVersion is written in the header line of every backup.
const FormatVersion = 1

// RawEntry is one line of a backup file. Data holds the record as it is
// stored in the ledger, so its own "type" fields stay nested.
type RawEntry struct {
	Type      string          `json:"type"`
	Version   int             `json:"version,omitempty"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// DiscoveredFile is a backup found by ScanDir.
type DiscoveredFile struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}
