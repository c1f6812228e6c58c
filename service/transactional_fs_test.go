package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/refit/domain"
)

func TestTransactionalFS_WriteCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	fs := NewTransactionalFS()
	target := filepath.Join(dir, "nested", "deep", "file.ts")

	if err := fs.Write(target, []byte("export const x = 1;")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
	if string(content) != "export const x = 1;" {
		t.Errorf("unexpected content %q", content)
	}
}

func TestTransactionalFS_WriteOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	fs := NewTransactionalFS()
	target := filepath.Join(dir, "file.ts")

	if err := fs.Write(target, []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := fs.Write(target, []byte("second")); err != nil {
		t.Fatal(err)
	}

	content, _ := os.ReadFile(target)
	if string(content) != "second" {
		t.Errorf("expected 'second', got %q", content)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, found %d entries", len(entries))
	}
}

func TestTransactionalFS_BackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	fs := NewTransactionalFS()
	target := filepath.Join(dir, "file.ts")
	if err := os.WriteFile(target, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	rec, err := fs.Backup(target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID == "" {
		t.Error("expected a non-empty backup ID")
	}
	if rec.OriginalPath != target {
		t.Errorf("expected OriginalPath %q, got %q", target, rec.OriginalPath)
	}
	if _, err := os.Stat(rec.BackupPath); err != nil {
		t.Fatalf("expected backup file to exist: %v", err)
	}

	if err := os.WriteFile(target, []byte("overwritten"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := fs.Restore(rec); err != nil {
		t.Fatalf("unexpected error restoring: %v", err)
	}

	content, _ := os.ReadFile(target)
	if string(content) != "original" {
		t.Errorf("expected restored content 'original', got %q", content)
	}
	if _, err := os.Stat(rec.BackupPath); !os.IsNotExist(err) {
		t.Error("expected backup file removed after restore")
	}
}

func TestTransactionalFS_Delete_TolerantOfMissing(t *testing.T) {
	dir := t.TempDir()
	fs := NewTransactionalFS()
	if err := fs.Delete(filepath.Join(dir, "does-not-exist.ts")); err != nil {
		t.Errorf("expected no error deleting a missing file, got %v", err)
	}
}

func TestTransactionalFS_DeleteIfEmpty(t *testing.T) {
	dir := t.TempDir()
	fs := NewTransactionalFS()
	empty := filepath.Join(dir, "empty")
	nonEmpty := filepath.Join(dir, "nonempty")
	if err := os.MkdirAll(empty, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(nonEmpty, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nonEmpty, "f.ts"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := fs.DeleteIfEmpty(empty); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Error("expected empty dir to be removed")
	}

	if err := fs.DeleteIfEmpty(nonEmpty); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(nonEmpty); err != nil {
		t.Error("expected non-empty dir to remain")
	}
}

func TestTransactionalFS_Snapshot(t *testing.T) {
	dir := t.TempDir()
	fs := NewTransactionalFS()
	a := filepath.Join(dir, "a.ts")
	if err := os.WriteFile(a, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	snaps, err := fs.Snapshot([]string{a})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(snaps[a]) != "hello" {
		t.Errorf("expected snapshot content 'hello', got %q", snaps[a])
	}
}

func TestTransactionalFS_Snapshot_FailsOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	fs := NewTransactionalFS()
	_, err := fs.Snapshot([]string{filepath.Join(dir, "missing.ts")})
	if err == nil {
		t.Fatal("expected an error snapshotting a missing file")
	}
}

func TestTransactionalFS_Rollback(t *testing.T) {
	dir := t.TempDir()
	fs := NewTransactionalFS()

	original := filepath.Join(dir, "file.ts")
	if err := os.WriteFile(original, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}
	rec, err := fs.Backup(original)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(original, []byte("changed"), 0644); err != nil {
		t.Fatal(err)
	}

	refPath := filepath.Join(dir, "reference.ts")
	snapshots := map[string][]byte{refPath: []byte("reference content")}

	result := fs.Rollback([]domain.BackupRecord{*rec}, snapshots)
	if len(result.Failures) != 0 {
		t.Fatalf("expected no failures, got %+v", result.Failures)
	}
	if len(result.RestoredFiles) != 1 || result.RestoredFiles[0] != original {
		t.Errorf("expected original restored, got %+v", result.RestoredFiles)
	}
	if len(result.RestoredReferences) != 1 || result.RestoredReferences[0] != refPath {
		t.Errorf("expected reference restored, got %+v", result.RestoredReferences)
	}

	content, _ := os.ReadFile(original)
	if string(content) != "original" {
		t.Errorf("expected 'original', got %q", content)
	}
	refContent, _ := os.ReadFile(refPath)
	if string(refContent) != "reference content" {
		t.Errorf("expected reference content restored, got %q", refContent)
	}
}

func TestBackupTimestampOf(t *testing.T) {
	ts, err := backupTimestampOf("/tmp/.backup_foo_12345.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != 12345 {
		t.Errorf("expected 12345, got %d", ts)
	}
}

func TestBackupTimestampOf_Malformed(t *testing.T) {
	if _, err := backupTimestampOf("/tmp/malformed"); err == nil {
		t.Error("expected an error for a malformed backup filename")
	}
}
