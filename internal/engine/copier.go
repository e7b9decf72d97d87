package engine

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/afero"

	"github.com/profsync/profsync/internal/utils"
)

// CopyOptions control a single mirror pass.
type CopyOptions struct {
	// DryRun suppresses every write and delete; only the count is computed.
	DryRun bool

	// Cleanup deletes destination files absent from the manifest after the
	// copy pass, forcing the destination file set to equal the manifest.
	Cleanup bool
}

// MirrorCopier copies a manifest's files from a source root to a destination
// root. Every manifest member is re-copied unconditionally; there is no
// timestamp or hash comparison. The first per-file error aborts the pass.
type MirrorCopier struct {
	fs  afero.Fs
	log *slog.Logger
}

func NewMirrorCopier(fs afero.Fs, log *slog.Logger) *MirrorCopier {
	return &MirrorCopier{fs: fs, log: log}
}

// Copy mirrors manifest from srcRoot into dstRoot and returns the number of
// files copied (or that would be copied, under DryRun).
func (c *MirrorCopier) Copy(manifest []string, srcRoot, dstRoot string, opts CopyOptions) (int, error) {
	copied := 0
	for _, rel := range manifest {
		src := filepath.Join(srcRoot, filepath.FromSlash(rel))
		dst := filepath.Join(dstRoot, filepath.FromSlash(rel))

		if !opts.DryRun {
			if err := c.copyFile(src, dst); err != nil {
				return copied, fmt.Errorf("copy %s: %w", rel, err)
			}
		}
		copied++
		c.log.Debug("copied", "path", rel, "dryRun", opts.DryRun)
	}

	if opts.Cleanup {
		if err := c.cleanup(manifest, dstRoot, opts.DryRun); err != nil {
			return copied, err
		}
	}

	return copied, nil
}

func (c *MirrorCopier) copyFile(src, dst string) error {
	if err := utils.EnsureParent(c.fs, dst); err != nil {
		return err
	}

	srcFile, err := c.fs.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := c.fs.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// cleanup re-enumerates dstRoot (file-only, dot-inclusive, no filtering) and
// removes every file not present in the manifest. Individual delete failures
// abort immediately.
func (c *MirrorCopier) cleanup(manifest []string, dstRoot string, dryRun bool) error {
	if !utils.DirExists(c.fs, dstRoot) {
		return nil
	}

	keep := mapset.NewThreadUnsafeSet(manifest...)
	return afero.Walk(c.fs, dstRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dstRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if keep.Contains(rel) {
			return nil
		}

		c.log.Debug("cleanup stale file", "path", rel, "dryRun", dryRun)
		if dryRun {
			return nil
		}
		if err := c.fs.Remove(path); err != nil {
			return fmt.Errorf("cleanup %s: %w", rel, err)
		}
		return nil
	})
}
