package engine

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var backupIDPattern = regexp.MustCompile(`^\d{8}-\d{6}-[a-z0-9]{1,8}$`)

func TestGenerateBackupID_Format(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		machine  string
		expected string
	}{
		{"plain", "alice", "20240101-120000-alice"},
		{"mixed-case-and-dash", "Alice-PC", "20240101-120000-alicepc"},
		{"truncated-to-8", "workstation42", "20240101-120000-workstat"},
		{"non-alphanumeric-only", "!!--??", "20240101-120000-local"},
		{"empty", "", "20240101-120000-local"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			id := GenerateBackupID(now, c.machine)
			assert.Equal(t, c.expected, id)
			assert.Regexp(t, backupIDPattern, id)
		})
	}
}

func TestGenerateBackupID_SameSecondCollides(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 30, 15, 123456789, time.UTC)
	later := now.Add(500 * time.Millisecond)

	// Sub-second precision is truncated, so two ids within the same second
	// are identical. Known limitation of the id scheme.
	assert.Equal(t, GenerateBackupID(now, "alice"), GenerateBackupID(later, "alice"))
}
