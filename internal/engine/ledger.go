package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/profsync/profsync/internal/utils"
)

const (
	// LedgerFileName is the JSON ledger stored at the destination root.
	LedgerFileName = ".sync-metadata.json"

	// maxLedgerRecords caps the ledger; older records are evicted FIFO.
	maxLedgerRecords = 50
)

// Ledger is the append-only, capped log of sync records at a destination
// root. It is the source of truth for which backups exist from the tool's
// perspective; the filesystem remains the source of truth for the data.
type Ledger struct {
	fs  afero.Fs
	log *slog.Logger
}

func NewLedger(fs afero.Fs, log *slog.Logger) *Ledger {
	return &Ledger{fs: fs, log: log}
}

func (l *Ledger) Path(destRoot string) string {
	return filepath.Join(destRoot, LedgerFileName)
}

// Read returns all records, oldest first. A missing or unparsable ledger
// file reads as empty, never as an error.
func (l *Ledger) Read(destRoot string) ([]SyncRecord, error) {
	data, err := afero.ReadFile(l.fs, l.Path(destRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	var records []SyncRecord
	if err := json.Unmarshal(data, &records); err != nil {
		l.log.Warn("ledger unparsable, treating as empty", "path", l.Path(destRoot), "error", err)
		return nil, nil
	}
	return records, nil
}

// Append adds a record and rewrites the ledger, keeping only the newest
// maxLedgerRecords entries.
func (l *Ledger) Append(destRoot string, record SyncRecord) error {
	records, err := l.Read(destRoot)
	if err != nil {
		return err
	}

	records = append(records, record)
	if len(records) > maxLedgerRecords {
		records = records[len(records)-maxLedgerRecords:]
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := utils.EnsureDir(l.fs, destRoot); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := afero.WriteFile(l.fs, l.Path(destRoot), data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// Filter returns the records of one sync type, oldest first.
func (l *Ledger) Filter(destRoot string, syncType SyncType) ([]SyncRecord, error) {
	records, err := l.Read(destRoot)
	if err != nil {
		return nil, err
	}

	var out []SyncRecord
	for _, r := range records {
		if r.SyncType == syncType {
			out = append(out, r)
		}
	}
	return out, nil
}

// LatestUpload returns the most recent upload record, or nil if none exists.
func (l *Ledger) LatestUpload(destRoot string) (*SyncRecord, error) {
	records, err := l.Read(destRoot)
	if err != nil {
		return nil, err
	}

	for i := len(records) - 1; i >= 0; i-- {
		if records[i].SyncType == SyncTypeUpload {
			return &records[i], nil
		}
	}
	return nil, nil
}
