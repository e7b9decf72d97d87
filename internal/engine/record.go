package engine

import "time"

type SyncType string

const (
	SyncTypeUpload   SyncType = "upload"
	SyncTypeDownload SyncType = "download"
	SyncTypeSync     SyncType = "sync"
)

// SmartSyncBackupID is the sentinel backup id recorded for a smart sync; no
// backup directory of that name ever exists.
const SmartSyncBackupID = "smart-sync"

// SyncRecord is one immutable entry of the metadata ledger.
type SyncRecord struct {
	BackupID    string    `json:"backupId"`
	MachineID   string    `json:"machineId"`
	MachineName string    `json:"machineName"`
	Platform    string    `json:"platform"`
	Timestamp   time.Time `json:"timestamp"`
	SyncType    SyncType  `json:"syncType"`
	Categories  []string  `json:"categories"`
	FileCount   int       `json:"fileCount"`
}
