package service

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/refit/domain"
	"github.com/sirupsen/logrus"
)

// StateStore persists an IntegrationState to a single on-disk JSON
// document, rewritten atomically after every transition so the
// document is never observed half-written (spec.md §4.11/§5).
type StateStore struct {
	path  string
	state *domain.IntegrationState
}

// NewStateStore loads the state document at path if it exists,
// clamping any in-progress file back to pending by simply not
// recording it as current (spec.md §9, "on load, clamp in-progress to
// pending"). Corrupt content is logged and a fresh state is started
// rather than failing the run.
func NewStateStore(path string, total int) *StateStore {
	store := &StateStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		store.state = freshState(total)
		return store
	}

	var st domain.IntegrationState
	if err := json.Unmarshal(data, &st); err != nil {
		logrus.WithField("path", path).WithError(err).Warn("state store: corrupt state document, starting fresh")
		store.state = freshState(total)
		return store
	}

	st.Current = ""
	if st.RunID == "" {
		st.RunID = uuid.New().String()
	}
	store.state = &st
	return store
}

func freshState(total int) *domain.IntegrationState {
	return &domain.IntegrationState{
		RunID:     uuid.New().String(),
		Total:     total,
		StartTime: time.Now().Unix(),
	}
}

// State returns the live, in-memory IntegrationState.
func (s *StateStore) State() *domain.IntegrationState {
	return s.state
}

// MarkCurrent records path as in-progress and persists.
func (s *StateStore) MarkCurrent(path string) error {
	s.state.Current = path
	return s.persist()
}

// MarkCompleted moves path into the completed set and persists.
func (s *StateStore) MarkCompleted(path string) error {
	s.state.Completed = append(s.state.Completed, path)
	s.state.Processed++
	if s.state.Current == path {
		s.state.Current = ""
	}
	return s.persist()
}

// MarkFailed records path's failure reason and persists.
func (s *StateStore) MarkFailed(path, reason string) error {
	s.state.Failed = upsertKV(s.state.Failed, path, reason)
	s.state.Processed++
	if s.state.Current == path {
		s.state.Current = ""
	}
	return s.persist()
}

// MarkSkipped records path's skip reason and persists.
func (s *StateStore) MarkSkipped(path, reason string) error {
	s.state.Skipped = upsertKV(s.state.Skipped, path, reason)
	s.state.Processed++
	if s.state.Current == path {
		s.state.Current = ""
	}
	return s.persist()
}

// AppendBackup records a BackupRecord and persists.
func (s *StateStore) AppendBackup(rec domain.BackupRecord) error {
	s.state.Backups = append(s.state.Backups, rec)
	return s.persist()
}

// MarkComplete stamps the run's end time and persists the final
// document.
func (s *StateStore) MarkComplete() error {
	s.state.EndTime = time.Now().Unix()
	return s.persist()
}

// persist serializes the state with map-valued fields sorted by key
// and writes it atomically via write-then-rename (spec.md §4.11/§5,
// §9).
func (s *StateStore) persist() error {
	sort.Strings(s.state.Completed)
	sort.Slice(s.state.Failed, func(i, j int) bool { return s.state.Failed[i].Path < s.state.Failed[j].Path })
	sort.Slice(s.state.Skipped, func(i, j int) bool { return s.state.Skipped[i].Path < s.state.Skipped[j].Path })

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return domain.NewFilesystemError(s.path, "failed to write state document", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return domain.NewFilesystemError(s.path, "failed to rename state document into place", err)
	}
	return nil
}

func upsertKV(kvs []domain.KV, path, value string) []domain.KV {
	for i := range kvs {
		if kvs[i].Path == path {
			kvs[i].Value = value
			return kvs
		}
	}
	return append(kvs, domain.KV{Path: path, Value: value})
}
