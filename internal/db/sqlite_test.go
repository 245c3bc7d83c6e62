package db

import (
	"path/filepath"
	"testing"
)

func TestInitDBSingleton(t *testing.T) {
	ResetDB()
	t.Cleanup(ResetDB)

	path := filepath.Join(t.TempDir(), "termhost.db")

	first, err := InitDB(path)
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	if GetDB() != first {
		t.Error("GetDB() should return the initialized connection")
	}

	// A second init ignores the new path and returns the same handle.
	second, err := InitDB(filepath.Join(t.TempDir(), "other.db"))
	if err != nil {
		t.Fatalf("second InitDB() error = %v", err)
	}
	if second != first {
		t.Error("InitDB() should be a singleton")
	}

	// The schema is in place.
	if _, err := first.Exec("INSERT INTO session_log (session_id, remote_addr, started_at) VALUES (1, 'a', CURRENT_TIMESTAMP)"); err != nil {
		t.Fatalf("schema missing after InitDB: %v", err)
	}

	ResetDB()
	if GetDB() != nil {
		t.Error("GetDB() should return nil after ResetDB")
	}

	reopened, err := InitDB(path)
	if err != nil {
		t.Fatalf("InitDB() after reset error = %v", err)
	}
	if reopened == nil {
		t.Fatal("InitDB() after reset returned nil")
	}

	var count int
	if err := reopened.QueryRow("SELECT COUNT(*) FROM session_log").Scan(&count); err != nil {
		t.Fatalf("querying reopened database: %v", err)
	}
	if count != 1 {
		t.Errorf("reopened database has %d rows, want the 1 written before reset", count)
	}
}
