package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TERMHOST_HOST_KEY_PATH", "/etc/termhost/host_key")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.HostKeyPath != "/etc/termhost/host_key" {
		t.Errorf("HostKeyPath = %q", s.HostKeyPath)
	}
	if s.ListenAddr != ":22" {
		t.Errorf("ListenAddr = %q, want %q", s.ListenAddr, ":22")
	}
	if s.APIAddr != ":8080" {
		t.Errorf("APIAddr = %q, want %q", s.APIAddr, ":8080")
	}
	if s.DBPath != "data/termhost.db" {
		t.Errorf("DBPath = %q, want %q", s.DBPath, "data/termhost.db")
	}
	if s.RecordDir != "" {
		t.Errorf("RecordDir = %q, want empty", s.RecordDir)
	}
	if s.FrameInterval != 33*time.Millisecond {
		t.Errorf("FrameInterval = %v, want 33ms", s.FrameInterval)
	}
	if s.SweepInterval != time.Second {
		t.Errorf("SweepInterval = %v, want 1s", s.SweepInterval)
	}
	if s.IdleTimeout != 300*time.Second {
		t.Errorf("IdleTimeout = %v, want 300s", s.IdleTimeout)
	}
	if s.Dev {
		t.Error("Dev should default to false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TERMHOST_HOST_KEY_PATH", "key")
	t.Setenv("TERMHOST_LISTEN_ADDR", ":2222")
	t.Setenv("TERMHOST_IDLE_TIMEOUT", "10m")
	t.Setenv("TERMHOST_DEV", "true")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.ListenAddr != ":2222" {
		t.Errorf("ListenAddr = %q, want %q", s.ListenAddr, ":2222")
	}
	if s.IdleTimeout != 10*time.Minute {
		t.Errorf("IdleTimeout = %v, want 10m", s.IdleTimeout)
	}
	if !s.Dev {
		t.Error("Dev = false, want true")
	}
}

func TestLoad_RequiresHostKeyPath(t *testing.T) {
	// t.Setenv records the original value for cleanup; the unset makes
	// the variable genuinely absent rather than empty.
	t.Setenv("TERMHOST_HOST_KEY_PATH", "x")
	os.Unsetenv("TERMHOST_HOST_KEY_PATH")

	if _, err := Load(); err == nil {
		t.Error("Load() without a host key path should fail")
	}
}
