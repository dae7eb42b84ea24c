// Package artifacts owns every temporary file a job touches: creation
// of collision-free paths, idempotent deletion, and a sweep for
// crash-orphaned leftovers.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/transcodehub/transcodebot/internal/config"
	"github.com/transcodehub/transcodebot/pkg/logger"
	"github.com/transcodehub/transcodebot/pkg/metrics"
)

type Kind string

const (
	KindVideo        Kind = "video"
	KindSubtitle     Kind = "subtitle"
	KindIntermediate Kind = "intermediate"
	KindOutput       Kind = "output"
)

// Artifact is a reserved temporary path. The file may not exist yet;
// Release deletes whatever is there and is safe to call twice.
type Artifact struct {
	ID   string
	Kind Kind
	Path string

	store    *Store
	mu       sync.Mutex
	released bool
}

// Release deletes the underlying file. Idempotent; a missing file is
// not an error.
func (a *Artifact) Release() error {
	a.mu.Lock()
	if a.released {
		a.mu.Unlock()
		return nil
	}
	a.released = true
	a.mu.Unlock()

	a.store.onRelease()
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		a.store.logger.Warnf("could not delete artifact %s: %v", a.Path, err)
		return err
	}
	return nil
}

// Store reserves uniquely named temporary paths under one directory.
type Store struct {
	dir     string
	logger  logger.Logger
	metrics *metrics.Metrics

	created  atomic.Int64
	released atomic.Int64
}

func NewStore(cfg *config.Config, log logger.Logger, m *metrics.Metrics) (*Store, error) {
	dir := cfg.Files.TempDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &Store{dir: dir, logger: log, metrics: m}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Acquire reserves a fresh path for one artifact. The uuid component
// makes paths from concurrent jobs collision free.
func (s *Store) Acquire(owner string, kind Kind, ext string) *Artifact {
	id := uuid.New().String()[:8]
	name := fmt.Sprintf("%s_%s_%s%s", owner, kind, id, ext)
	a := &Artifact{
		ID:    id,
		Kind:  kind,
		Path:  filepath.Join(s.dir, name),
		store: s,
	}
	s.created.Add(1)
	if s.metrics != nil {
		s.metrics.ArtifactsActive.Inc()
	}
	return a
}

func (s *Store) onRelease() {
	s.released.Add(1)
	if s.metrics != nil {
		s.metrics.ArtifactsActive.Dec()
	}
}

// Stats returns how many artifacts were ever reserved and released.
func (s *Store) Stats() (created, released int64) {
	return s.created.Load(), s.released.Load()
}

// NewScope groups artifacts that share one owner lifetime.
func (s *Store) NewScope(owner string) *Scope {
	return &Scope{store: s, owner: owner}
}

// Scope tracks every artifact belonging to one session/job so they can
// be released together on any exit path.
type Scope struct {
	store *Store
	owner string

	mu        sync.Mutex
	artifacts []*Artifact
}

func (sc *Scope) Acquire(kind Kind, ext string) *Artifact {
	a := sc.store.Acquire(sc.owner, kind, ext)
	sc.mu.Lock()
	sc.artifacts = append(sc.artifacts, a)
	sc.mu.Unlock()
	return a
}

// Adopt transfers an externally acquired artifact into this scope.
func (sc *Scope) Adopt(a *Artifact) {
	sc.mu.Lock()
	sc.artifacts = append(sc.artifacts, a)
	sc.mu.Unlock()
}

// Drop releases one artifact and stops tracking it. A later ReleaseAll
// will not see it again.
func (sc *Scope) Drop(a *Artifact) error {
	if a == nil {
		return nil
	}
	sc.mu.Lock()
	for i, tracked := range sc.artifacts {
		if tracked == a {
			sc.artifacts = append(sc.artifacts[:i], sc.artifacts[i+1:]...)
			break
		}
	}
	sc.mu.Unlock()
	return a.Release()
}

// ReleaseAll releases every artifact in the scope. Safe to call more
// than once.
func (sc *Scope) ReleaseAll() {
	sc.mu.Lock()
	tracked := sc.artifacts
	sc.artifacts = nil
	sc.mu.Unlock()

	for _, a := range tracked {
		_ = a.Release()
	}
}

// Len reports how many artifacts the scope currently tracks.
func (sc *Scope) Len() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.artifacts)
}
