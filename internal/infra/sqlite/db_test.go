package sqlite

import (
	"path/filepath"
	"testing"
)

func TestNewDB_InMemory(t *testing.T) {
	t.Parallel()

	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB returned error: %v", err)
	}
	defer db.Close()

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestNewDB_MissingParentDirectory(t *testing.T) {
	t.Parallel()

	_, err := NewDB(filepath.Join(t.TempDir(), "missing", "app.db"))
	if err == nil {
		t.Fatal("expected error for non-existent parent directory")
	}
}

func TestNewDB_FileBacked(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.db")
	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB returned error: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE t (x INTEGER)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
}
