package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/refit/domain"
)

// TransactionalFS is the only thing in the engine allowed to touch the
// destination tree: every mutation goes through one of its five
// primitives so a failed run can always be rolled back (spec.md §4.8).
type TransactionalFS struct{}

// NewTransactionalFS constructs a TransactionalFS. It carries no state
// of its own — the caller (the Orchestrator) owns the backup list and
// snapshot map between calls.
func NewTransactionalFS() *TransactionalFS {
	return &TransactionalFS{}
}

// Snapshot reads every path in paths into an in-memory map, failing
// the whole batch if any one of them is unreadable (spec.md §4.8).
func (fs *TransactionalFS) Snapshot(paths []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, domain.NewFilesystemError(p, "failed to snapshot reference file", err)
		}
		out[p] = content
	}
	return out, nil
}

// Backup copies originalPath to a unique `.backup_<stem>_<ts>.<ext>`
// sibling and returns the BackupRecord. The timestamp is bumped past
// any existing collision (spec.md §3/§4.8).
func (fs *TransactionalFS) Backup(originalPath string) (*domain.BackupRecord, error) {
	content, err := os.ReadFile(originalPath)
	if err != nil {
		return nil, domain.NewFilesystemError(originalPath, "failed to read file for backup", err)
	}

	dir := filepath.Dir(originalPath)
	ext := filepath.Ext(originalPath)
	stem := strings.TrimSuffix(filepath.Base(originalPath), ext)
	ts := time.Now().Unix()

	var backupPath string
	for {
		backupPath = filepath.Join(dir, fmt.Sprintf(".backup_%s_%d%s", stem, ts, ext))
		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			break
		}
		ts++
	}

	if err := os.WriteFile(backupPath, content, 0644); err != nil {
		return nil, domain.NewFilesystemError(backupPath, "failed to write backup", err)
	}

	return &domain.BackupRecord{
		ID:           uuid.New().String(),
		OriginalPath: originalPath,
		BackupPath:   backupPath,
		Timestamp:    ts,
	}, nil
}

// Restore copies a BackupRecord's backup content over the original
// path (recreating it if it was deleted), then removes the backup
// file (spec.md §4.8).
func (fs *TransactionalFS) Restore(rec *domain.BackupRecord) error {
	content, err := os.ReadFile(rec.BackupPath)
	if err != nil {
		return domain.NewFilesystemError(rec.BackupPath, "failed to read backup for restore", err)
	}
	if err := fs.Write(rec.OriginalPath, content); err != nil {
		return err
	}
	if err := os.Remove(rec.BackupPath); err != nil && !os.IsNotExist(err) {
		return domain.NewFilesystemError(rec.BackupPath, "failed to remove backup after restore", err)
	}
	return nil
}

// Write creates parent directories as needed and overwrites path
// atomically: it writes to a sibling temp file and renames it into
// place, so a crash mid-write never leaves a partial destination file
// (spec.md §4.8).
func (fs *TransactionalFS) Write(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.NewFilesystemError(path, "failed to create parent directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".refit-tmp-*")
	if err != nil {
		return domain.NewFilesystemError(path, "failed to create temp file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return domain.NewFilesystemError(path, "failed to write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return domain.NewFilesystemError(path, "failed to close temp file", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return domain.NewFilesystemError(path, "failed to rename temp file into place", err)
	}
	return nil
}

// Delete removes a single file, tolerating it already being gone.
func (fs *TransactionalFS) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return domain.NewFilesystemError(path, "failed to delete file", err)
	}
	return nil
}

// DeleteIfEmpty removes dir only if it contains zero entries
// (spec.md §4.8).
func (fs *TransactionalFS) DeleteIfEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return domain.NewFilesystemError(dir, "failed to read directory", err)
	}
	if len(entries) > 0 {
		return nil
	}
	if err := os.Remove(dir); err != nil {
		return domain.NewFilesystemError(dir, "failed to remove empty directory", err)
	}
	return nil
}

// RollbackResult reports what Rollback actually managed to undo.
type RollbackResult struct {
	RestoredFiles      []string
	RestoredReferences []string
	Failures           []string
}

// Rollback restores every BackupRecord and re-materializes every
// snapshotted reference file, collecting per-file errors without
// aborting (spec.md §4.8).
func (fs *TransactionalFS) Rollback(backups []domain.BackupRecord, snapshots map[string][]byte) RollbackResult {
	var result RollbackResult

	for i := range backups {
		rec := backups[i]
		if err := fs.Restore(&rec); err != nil {
			result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", rec.OriginalPath, err))
			continue
		}
		result.RestoredFiles = append(result.RestoredFiles, rec.OriginalPath)
	}

	paths := make([]string, 0, len(snapshots))
	for p := range snapshots {
		paths = append(paths, p)
	}
	for _, p := range paths {
		if err := fs.Write(p, snapshots[p]); err != nil {
			result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", p, err))
			continue
		}
		result.RestoredReferences = append(result.RestoredReferences, p)
	}

	return result
}

// backupTimestampOf parses the timestamp embedded in a backup filename
// (the part after the last underscore, before the extension).
func backupTimestampOf(backupPath string) (int64, error) {
	base := filepath.Base(backupPath)
	ext := filepath.Ext(base)
	trimmed := strings.TrimSuffix(base, ext)
	idx := strings.LastIndex(trimmed, "_")
	if idx == -1 {
		return 0, fmt.Errorf("malformed backup filename %q", backupPath)
	}
	return strconv.ParseInt(trimmed[idx+1:], 10, 64)
}
