package voicemail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FSAudioStore keeps recorded .wav payloads in a flat folder. The audio ref
// is the bare file name; the folder location stays a deployment concern.
type FSAudioStore struct {
	dir string
}

func NewFSAudioStore(dir string) (*FSAudioStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("voicemail: audio folder is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("voicemail: create audio folder: %w", err)
	}
	return &FSAudioStore{dir: dir}, nil
}

// NewRef allocates a fresh payload path for a recording. The returned ref is
// what messages persist; Path resolves it back.
func (s *FSAudioStore) NewRef() string {
	return uuid.NewString() + ".wav"
}

func (s *FSAudioStore) Path(audioRef string) string {
	return filepath.Join(s.dir, filepath.Base(audioRef))
}

// Remove deletes the payload file. A missing file counts as removed.
func (s *FSAudioStore) Remove(ctx context.Context, audioRef string) error {
	if audioRef == "" {
		return nil
	}
	err := os.Remove(s.Path(audioRef))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
