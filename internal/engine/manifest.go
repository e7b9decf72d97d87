package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	mapset "github.com/deckarep/golang-set/v2"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"

	"github.com/profsync/profsync/internal/utils"
)

// ignoreFileName is an optional per-root ignore file whose lines are applied
// as additional excludes. It is never part of a manifest itself.
const ignoreFileName = ".syncignore"

// ManifestBuilder resolves include/exclude globs against a source root into
// a deduplicated, sorted set of slash-separated relative file paths. It only
// ever reads the filesystem.
type ManifestBuilder struct {
	fs afero.Fs
}

func NewManifestBuilder(fs afero.Fs) *ManifestBuilder {
	return &ManifestBuilder{fs: fs}
}

// Build walks root and returns every regular file (dot-files included) whose
// relative path matches at least one include pattern and no exclude pattern.
// A missing root yields an empty manifest and ErrSourceMissing.
func (b *ManifestBuilder) Build(root string, includes, excludes []string) ([]string, error) {
	if !utils.DirExists(b.fs, root) {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, root)
	}

	ignore, err := b.loadIgnoreFile(root)
	if err != nil {
		return nil, err
	}

	paths := mapset.NewThreadUnsafeSet[string]()
	walkErr := afero.Walk(b.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if rel == ignoreFileName {
			return nil
		}
		if ignore != nil && ignore.MatchesPath(rel) {
			return nil
		}

		included, err := matchAny(includes, rel)
		if err != nil {
			return err
		}
		if !included {
			return nil
		}

		excluded, err := matchAny(excludes, rel)
		if err != nil {
			return err
		}
		if excluded {
			return nil
		}

		paths.Add(rel)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("manifest walk of %s: %w", root, walkErr)
	}

	manifest := paths.ToSlice()
	slices.Sort(manifest)
	return manifest, nil
}

func (b *ManifestBuilder) loadIgnoreFile(root string) (*gitignore.GitIgnore, error) {
	path := filepath.Join(root, ignoreFileName)
	if !utils.FileExists(b.fs, path) {
		return nil, nil
	}

	data, err := afero.ReadFile(b.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return gitignore.CompileIgnoreLines(strings.Split(string(data), "\n")...), nil
}

func matchAny(patterns []string, rel string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, rel)
		if err != nil {
			return false, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
