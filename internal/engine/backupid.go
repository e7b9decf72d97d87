package engine

import (
	"strings"
	"time"
)

const maxMachineNameLen = 8

// GenerateBackupID builds a backup id of the form
// `YYYYMMDD-HHMMSS-<machine>` from wall-clock time truncated to the second
// and the sanitized machine name. Two calls on the same machine within the
// same second produce the same id; the original tool does not disambiguate
// and neither do we.
func GenerateBackupID(now time.Time, machineName string) string {
	return now.Format("20060102-150405") + "-" + sanitizeMachineName(machineName)
}

// sanitizeMachineName lower-cases the name, strips everything but ASCII
// letters and digits, and truncates to 8 characters. An empty result falls
// back to "local" so the id always has a machine segment.
func sanitizeMachineName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == maxMachineNameLen {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "local"
	}
	return b.String()
}
