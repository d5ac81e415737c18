package voicemail

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFSAudioStore_RemoveDeletesPayload(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSAudioStore(dir)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	ref := s.NewRef()
	if !strings.HasSuffix(ref, ".wav") {
		t.Fatalf("expected .wav ref, got %q", ref)
	}
	if err := os.WriteFile(s.Path(ref), []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := s.Remove(context.Background(), ref); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(s.Path(ref)); !os.IsNotExist(err) {
		t.Fatalf("expected payload gone, got %v", err)
	}
}

func TestFSAudioStore_RemoveMissingIsNoop(t *testing.T) {
	s, err := NewFSAudioStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := s.Remove(context.Background(), "never-existed.wav"); err != nil {
		t.Fatalf("expected missing payload to count as removed, got %v", err)
	}
}

func TestFSAudioStore_PathIgnoresTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSAudioStore(dir)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	p := s.Path("../../etc/passwd")
	if filepath.Dir(p) != dir {
		t.Fatalf("path escaped folder: %q", p)
	}
}
