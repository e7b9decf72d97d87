package engine

import "errors"

var (
	// ErrSourceMissing signals that a configured source root does not exist.
	// The orchestrator absorbs it with a warning unless no source exists at all.
	ErrSourceMissing = errors.New("source root does not exist")

	// ErrBackupNotFound signals that a backup id matched neither a literal
	// directory nor the fallback search.
	ErrBackupNotFound = errors.New("backup not found")
)
