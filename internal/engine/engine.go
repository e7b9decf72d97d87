// Package engine implements the profsync backup/sync core: manifest
// resolution, mirror copying, the metadata ledger, backup resolution and the
// three sync strategies (upload, download, smart sync).
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/spf13/afero"

	"github.com/profsync/profsync/internal/config"
)

// includeAll matches every file; used where a pass is unfiltered.
var includeAll = []string{"**"}

// Options control one engine operation.
type Options struct {
	// DryRun previews the operation: counts are computed, nothing is written
	// and no ledger record is appended.
	DryRun bool
}

// Result is the outcome of one engine operation.
type Result struct {
	BackupID    string
	FilesCopied int

	// Record is the ledger record appended on success; nil under DryRun.
	Record *SyncRecord
}

// BackupStatus annotates a ledger record with filesystem divergence: Missing
// is set when an upload's directory no longer resolves. Divergence is status,
// never an error.
type BackupStatus struct {
	SyncRecord
	Missing bool
}

// sourceMount pairs a live source root with its layout name inside a backup
// directory.
type sourceMount struct {
	root   string
	layout string
}

// Engine composes the sync components over a single injected filesystem.
// Operations are strictly sequential; the engine holds no cross-call state.
type Engine struct {
	fs       afero.Fs
	cfg      *config.Config
	log      *slog.Logger
	manifest *ManifestBuilder
	copier   *MirrorCopier
	ledger   *Ledger
	resolver *BackupResolver
}

func New(fs afero.Fs, cfg *config.Config, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		fs:       fs,
		cfg:      cfg,
		log:      log,
		manifest: NewManifestBuilder(fs),
		copier:   NewMirrorCopier(fs, log),
		ledger:   NewLedger(fs, log),
		resolver: NewBackupResolver(fs),
	}
}

// Ledger exposes the metadata ledger for read-side consumers (list, status).
func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

// Resolver exposes the backup resolver.
func (e *Engine) Resolver() *BackupResolver {
	return e.resolver
}

// Upload copies the selected categories from every configured source root
// into a fresh timestamped backup directory and appends an upload record.
// A missing source root is tolerated unless no source exists at all.
func (e *Engine) Upload(ctx context.Context, opts Options) (*Result, error) {
	machineName, platform := e.hostMeta()
	backupID := GenerateBackupID(time.Now(), machineName)
	includes := PatternsFor(e.cfg.Categories)

	total := 0
	sourcesSeen := 0
	for _, mount := range e.sourceMounts() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		manifest, err := e.manifest.Build(mount.root, includes, e.cfg.Excludes)
		if err != nil {
			if errors.Is(err, ErrSourceMissing) {
				e.log.Warn("source root missing, skipping", "root", mount.root)
				continue
			}
			return nil, err
		}
		sourcesSeen++

		dst := filepath.Join(e.cfg.DestinationRoot, backupID, mount.layout)
		n, err := e.copier.Copy(manifest, mount.root, dst, CopyOptions{DryRun: opts.DryRun})
		if err != nil {
			return nil, err
		}
		total += n
		e.log.Info("uploaded", "root", mount.root, "layout", mount.layout, "files", n, "dryRun", opts.DryRun)
	}

	if sourcesSeen == 0 {
		return nil, fmt.Errorf("%w: no configured source root exists", ErrSourceMissing)
	}

	if opts.DryRun {
		return &Result{BackupID: backupID, FilesCopied: total}, nil
	}

	record := e.newRecord(backupID, SyncTypeUpload, total, machineName, platform)
	if err := e.ledger.Append(e.cfg.DestinationRoot, record); err != nil {
		return nil, err
	}
	return &Result{BackupID: backupID, FilesCopied: total, Record: &record}, nil
}

// Download resolves backupID and mirrors it into the live source root(s)
// with cleanup enabled: local files absent from the backup are deleted.
func (e *Engine) Download(ctx context.Context, backupID string, opts Options) (*Result, error) {
	res, err := e.resolver.Resolve(e.cfg.DestinationRoot, backupID)
	if err != nil {
		return nil, err
	}
	if res.Kind == ResolutionFallback {
		e.log.Warn("backup resolved via fallback search", "backupId", backupID, "path", res.Path)
	}

	layouts := e.resolver.Layouts(res.Path)
	if len(layouts) == 0 {
		e.log.Warn("backup directory has no recognized layout", "path", res.Path)
	}

	total := 0
	for _, layout := range layouts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		liveRoot := e.layoutRoot(layout)
		if liveRoot == "" {
			e.log.Warn("no local root configured for layout, skipping", "layout", layout)
			continue
		}

		src := filepath.Join(res.Path, layout)
		manifest, err := e.manifest.Build(src, includeAll, nil)
		if err != nil {
			return nil, err
		}

		n, err := e.copier.Copy(manifest, src, liveRoot, CopyOptions{DryRun: opts.DryRun, Cleanup: true})
		if err != nil {
			return nil, err
		}
		total += n
		e.log.Info("downloaded", "layout", layout, "root", liveRoot, "files", n, "dryRun", opts.DryRun)
	}

	if opts.DryRun {
		return &Result{BackupID: backupID, FilesCopied: total}, nil
	}

	machineName, platform := e.hostMeta()
	record := e.newRecord(backupID, SyncTypeDownload, total, machineName, platform)
	if err := e.ledger.Append(e.cfg.DestinationRoot, record); err != nil {
		return nil, err
	}
	return &Result{BackupID: backupID, FilesCopied: total, Record: &record}, nil
}

// SmartSync merges the live source root(s) with the latest uploaded backup
// in both directions without deleting on either side. When no usable prior
// upload exists it degrades to a plain Upload.
//
// Conflicts are not detected: the second, unfiltered backup-to-local pass
// wins unconditionally on any path the first pass did not push, so a local
// edit outside the selected categories is silently overwritten by the older
// backup copy. Documented limitation of the sync model, kept as-is.
func (e *Engine) SmartSync(ctx context.Context, opts Options) (*Result, error) {
	latest, err := e.ledger.LatestUpload(e.cfg.DestinationRoot)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		e.log.Info("no prior upload in ledger, running upload instead")
		return e.Upload(ctx, opts)
	}

	res, err := e.resolver.Resolve(e.cfg.DestinationRoot, latest.BackupID)
	if err != nil {
		e.log.Warn("latest upload directory missing, running upload instead", "backupId", latest.BackupID)
		return e.Upload(ctx, opts)
	}

	includes := PatternsFor(e.cfg.Categories)
	total := 0
	for _, layout := range e.resolver.Layouts(res.Path) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		liveRoot := e.layoutRoot(layout)
		if liveRoot == "" {
			e.log.Warn("no local root configured for layout, skipping", "layout", layout)
			continue
		}
		backupDir := filepath.Join(res.Path, layout)

		// Pass 1: local -> backup, category-filtered, never deletes.
		outbound, err := e.manifest.Build(liveRoot, includes, e.cfg.Excludes)
		if err != nil {
			if errors.Is(err, ErrSourceMissing) {
				e.log.Warn("source root missing, skipping layout", "root", liveRoot)
				continue
			}
			return nil, err
		}
		n, err := e.copier.Copy(outbound, liveRoot, backupDir, CopyOptions{DryRun: opts.DryRun})
		if err != nil {
			return nil, err
		}
		total += n

		// Pass 2: backup -> local, unfiltered, never deletes. Overlapping
		// paths are overwritten by this pass.
		inbound, err := e.manifest.Build(backupDir, includeAll, nil)
		if err != nil {
			return nil, err
		}
		n, err = e.copier.Copy(inbound, backupDir, liveRoot, CopyOptions{DryRun: opts.DryRun})
		if err != nil {
			return nil, err
		}
		total += n

		e.log.Info("synced", "layout", layout, "root", liveRoot, "dryRun", opts.DryRun)
	}

	if opts.DryRun {
		return &Result{BackupID: SmartSyncBackupID, FilesCopied: total}, nil
	}

	machineName, platform := e.hostMeta()
	record := e.newRecord(SmartSyncBackupID, SyncTypeSync, total, machineName, platform)
	if err := e.ledger.Append(e.cfg.DestinationRoot, record); err != nil {
		return nil, err
	}
	return &Result{BackupID: SmartSyncBackupID, FilesCopied: total, Record: &record}, nil
}

// ListBackups returns every ledger record, newest last, with upload records
// flagged when their backup directory no longer resolves.
func (e *Engine) ListBackups() ([]BackupStatus, error) {
	records, err := e.ledger.Read(e.cfg.DestinationRoot)
	if err != nil {
		return nil, err
	}

	statuses := make([]BackupStatus, 0, len(records))
	for _, r := range records {
		status := BackupStatus{SyncRecord: r}
		if r.SyncType == SyncTypeUpload {
			if _, err := e.resolver.Resolve(e.cfg.DestinationRoot, r.BackupID); err != nil {
				status.Missing = true
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// sourceMounts maps the configured topology onto backup layout names.
func (e *Engine) sourceMounts() []sourceMount {
	if e.cfg.Unified() {
		return []sourceMount{{root: e.cfg.PrimaryRoot, layout: LayoutProfile}}
	}
	return []sourceMount{
		{root: e.cfg.PrimaryRoot, layout: LayoutRoaming},
		{root: e.cfg.SecondaryRoot, layout: LayoutLocal},
	}
}

// layoutRoot maps a backup layout name onto the live root it restores into.
// An empty result means the current topology has no home for that layout.
func (e *Engine) layoutRoot(layout string) string {
	switch layout {
	case LayoutProfile, LayoutRoaming:
		return e.cfg.PrimaryRoot
	case LayoutLocal:
		if e.cfg.Unified() {
			return ""
		}
		return e.cfg.SecondaryRoot
	default:
		return ""
	}
}

func (e *Engine) newRecord(backupID string, syncType SyncType, fileCount int, machineName, platform string) SyncRecord {
	categories := e.cfg.Categories
	if len(categories) == 0 {
		categories = CategoryNames()
	}
	return SyncRecord{
		BackupID:    backupID,
		MachineID:   e.cfg.MachineID,
		MachineName: machineName,
		Platform:    platform,
		Timestamp:   time.Now().UTC(),
		SyncType:    syncType,
		Categories:  categories,
		FileCount:   fileCount,
	}
}

// hostMeta returns the machine name and platform for ledger records, falling
// back to os.Hostname and GOOS when gopsutil cannot read host info.
func (e *Engine) hostMeta() (machineName, platform string) {
	if info, err := host.Info(); err == nil {
		machineName = info.Hostname
		platform = info.OS
	}
	if machineName == "" {
		machineName, _ = os.Hostname()
	}
	if platform == "" {
		platform = runtime.GOOS
	}
	return machineName, platform
}
