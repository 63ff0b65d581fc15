// Package session tracks crawl progress durably so a restarted process
// never re-fetches a profile it has already examined.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soclens/profile-scout/internal/scout"
)

// State is the in-memory session record. The examined set collapses
// duplicates; the accepted list preserves discovery order.
type State struct {
	ID            string
	Examined      map[string]struct{}
	Accepted      []scout.QualifiedProfile
	Depth         int
	TotalExamined int
	ErrorCount    int
	StartedAt     time.Time
}

// fileState is the on-disk shape. The examined set serializes as a sorted
// slice so the file diffs cleanly between saves.
type fileState struct {
	ID            string                   `json:"id"`
	Examined      []string                 `json:"examined"`
	Accepted      []scout.QualifiedProfile `json:"accepted"`
	Depth         int                      `json:"current_depth"`
	TotalExamined int                      `json:"total_examined"`
	ErrorCount    int                      `json:"error_count"`
	StartedAt     time.Time                `json:"started_at"`
}

var _ scout.SessionStore = (*Store)(nil)

// Store owns a State and persists it to a JSON file.
type Store struct {
	mu     sync.Mutex
	path   string
	state  State
	clock  scout.Clock
	logger *zap.Logger
}

// Open loads prior session state from path if present, else initializes an
// empty session. A corrupt file is an error; a missing one is not.
func Open(path string, clock scout.Clock, logger *zap.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		clock:  clock,
		logger: logger,
		state: State{
			ID:        uuid.NewString(),
			Examined:  make(map[string]struct{}),
			StartedAt: clock.Now(),
		},
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info("starting fresh session", zap.String("id", s.state.ID))
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var prior fileState
	if err := json.Unmarshal(data, &prior); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}

	s.state.ID = prior.ID
	if s.state.ID == "" {
		s.state.ID = uuid.NewString()
	}
	for _, username := range prior.Examined {
		s.state.Examined[username] = struct{}{}
	}
	s.state.Accepted = prior.Accepted
	s.state.Depth = prior.Depth
	s.state.TotalExamined = prior.TotalExamined
	s.state.ErrorCount = prior.ErrorCount
	if !prior.StartedAt.IsZero() {
		s.state.StartedAt = prior.StartedAt
	}

	logger.Info("resumed session",
		zap.String("id", s.state.ID),
		zap.Int("examined", len(s.state.Examined)),
		zap.Int("accepted", len(s.state.Accepted)),
	)
	return s, nil
}

// Seen reports whether the username has already been examined.
func (s *Store) Seen(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.Examined[username]
	return ok
}

// MarkExamined records the username and bumps the examined counter. A
// username already present is counted once only.
func (s *Store) MarkExamined(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Examined[username]; ok {
		return
	}
	s.state.Examined[username] = struct{}{}
	s.state.TotalExamined++
}

// AddAccepted appends the profile unless its username is already in the
// accepted set; re-acceptance is a no-op and returns false.
func (s *Store) AddAccepted(profile scout.QualifiedProfile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.Accepted {
		if existing.Username == profile.Username {
			return false
		}
	}
	s.state.Accepted = append(s.state.Accepted, profile)
	return true
}

// RecordError bumps the session error counter.
func (s *Store) RecordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ErrorCount++
}

// ErrorCount returns the session-wide error counter.
func (s *Store) ErrorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ErrorCount
}

// SetDepth records the expansion depth currently being processed.
func (s *Store) SetDepth(depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Depth = depth
}

// TotalExamined returns the session-wide examined counter.
func (s *Store) TotalExamined() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalExamined
}

// Accepted returns a copy of the accepted list in discovery order.
func (s *Store) Accepted() []scout.QualifiedProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scout.QualifiedProfile, len(s.state.Accepted))
	copy(out, s.state.Accepted)
	return out
}

// Snapshot returns the state with the examined set copied, for reporting.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	examined := make(map[string]struct{}, len(s.state.Examined))
	for k := range s.state.Examined {
		examined[k] = struct{}{}
	}
	snap := s.state
	snap.Examined = examined
	snap.Accepted = append([]scout.QualifiedProfile(nil), s.state.Accepted...)
	return snap
}

// Save writes the state to disk atomically (temp file + rename).
func (s *Store) Save() error {
	s.mu.Lock()
	payload, err := json.MarshalIndent(s.toFileState(), "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (s *Store) toFileState() fileState {
	examined := make([]string, 0, len(s.state.Examined))
	for username := range s.state.Examined {
		examined = append(examined, username)
	}
	sort.Strings(examined)
	return fileState{
		ID:            s.state.ID,
		Examined:      examined,
		Accepted:      s.state.Accepted,
		Depth:         s.state.Depth,
		TotalExamined: s.state.TotalExamined,
		ErrorCount:    s.state.ErrorCount,
		StartedAt:     s.state.StartedAt,
	}
}
