// Package runstore persists generated file sets under one directory per run.
package runstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/pridano/internal/core"
)

const (
	// PublicPrefix is the URL prefix the runs directory is served under.
	PublicPrefix = "/runs"

	stagingPrefix = ".staging-"
	dirPerm       = 0o755
	filePerm      = 0o644

	maxNameAttempts = 5
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrEmptyIndex  = errors.New("refusing to save a run with an empty index.html")
	ErrInvalidName = errors.New("invalid run name")
	ErrRunExists   = errors.New("run already exists")
)

// Store writes runs below root. Runs are never updated once saved.
type Store struct {
	root string
}

// New creates root when needed.
func New(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("runs directory is empty")
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create runs directory %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string {
	return s.root
}

// PublicPath is the URL a saved run is served at.
func PublicPath(name string) string {
	return PublicPrefix + "/" + name
}

// NewRunName returns "<unix seconds>_<slug>". When a run with that name
// already exists a short random suffix is appended.
func (s *Store) NewRunName(slug string, now time.Time) string {
	name := fmt.Sprintf("%d_%s", now.Unix(), slug)
	if _, err := os.Stat(filepath.Join(s.root, name)); errors.Is(err, fs.ErrNotExist) {
		return name
	}
	return name + "-" + uuid.NewString()[:8]
}

// SaveNew names a run for slug at now and saves files under it. A name
// taken by a concurrent writer is retried with a fresh random suffix.
func (s *Store) SaveNew(slug string, now time.Time, files core.FileSet) (core.Run, error) {
	name := s.NewRunName(slug, now)
	for attempt := 1; ; attempt++ {
		run, err := s.Save(name, files)
		if !errors.Is(err, ErrRunExists) || attempt >= maxNameAttempts {
			return run, err
		}
		log.Debug().Str("run", name).Int("attempt", attempt).Msg("run name taken, retrying")
		name = fmt.Sprintf("%d_%s-%s", now.Unix(), slug, uuid.NewString()[:8])
	}
}

// Save writes every recognized file of files into runs/<name>. Absent files
// are written empty. The files are staged in a hidden sibling directory and
// renamed into place, so a run directory is either complete or missing.
func (s *Store) Save(name string, files core.FileSet) (core.Run, error) {
	if err := validateName(name); err != nil {
		return core.Run{}, err
	}
	if strings.TrimSpace(files.Index()) == "" {
		return core.Run{}, ErrEmptyIndex
	}

	final := filepath.Join(s.root, name)
	if _, err := os.Stat(final); err == nil {
		return core.Run{}, fmt.Errorf("%w: %s", ErrRunExists, name)
	}

	staging, err := os.MkdirTemp(s.root, stagingPrefix+name+"-")
	if err != nil {
		return core.Run{}, fmt.Errorf("create staging directory: %w", err)
	}
	defer func() {
		if staging != "" {
			_ = os.RemoveAll(staging)
		}
	}()

	for _, fname := range core.RecognizedFiles {
		if err := os.WriteFile(filepath.Join(staging, fname), []byte(files.Get(fname)), filePerm); err != nil {
			return core.Run{}, fmt.Errorf("write %s: %w", fname, err)
		}
	}
	if err := os.Chmod(staging, dirPerm); err != nil {
		return core.Run{}, fmt.Errorf("chmod staging directory: %w", err)
	}
	if err := os.Rename(staging, final); err != nil {
		// another writer won the name between the check above and here
		if _, serr := os.Stat(final); serr == nil {
			return core.Run{}, fmt.Errorf("%w: %s", ErrRunExists, name)
		}
		return core.Run{}, fmt.Errorf("move run into place: %w", err)
	}
	staging = ""

	log.Debug().Str("run", name).Str("dir", final).Msg("run saved")

	created, _ := createdFromName(name)
	return core.Run{
		Name:        name,
		Path:        PublicPath(name),
		ProjectName: slugFromName(name),
		CreatedAt:   created,
	}, nil
}

// List returns every complete run, newest first.
func (s *Store) List() ([]core.Run, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read runs directory: %w", err)
	}

	runs := make([]core.Run, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		created, ok := createdFromName(e.Name())
		if !ok {
			info, err := e.Info()
			if err != nil {
				continue
			}
			created = info.ModTime()
		}
		runs = append(runs, core.Run{
			Name:        e.Name(),
			Path:        PublicPath(e.Name()),
			ProjectName: slugFromName(e.Name()),
			CreatedAt:   created,
		})
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].Name > runs[j].Name
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// Read returns one recognized file of a run.
func (s *Store) Read(name, file string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if !slices.Contains(core.RecognizedFiles, file) {
		return "", fmt.Errorf("unknown run file %q", file)
	}

	data, err := os.ReadFile(filepath.Join(s.root, name, file))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("read %s/%s: %w", name, file, err)
	}
	return string(data), nil
}

// Delete removes a run directory.
func (s *Store) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	dir := filepath.Join(s.root, name)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, name)
	}
	return os.RemoveAll(dir)
}

// removeStaleStaging deletes staging directories left behind by a crash.
func (s *Store) removeStaleStaging(olderThan time.Time) int {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0
	}
	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), stagingPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(olderThan) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err == nil {
			removed++
		}
	}
	return removed
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func createdFromName(name string) (time.Time, bool) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, 0).UTC(), true
}

func slugFromName(name string) string {
	_, slug, ok := strings.Cut(name, "_")
	if !ok {
		return ""
	}
	return slug
}
