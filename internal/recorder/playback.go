package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"main/internal/schema"
)

// PlaybackConfig locates the journal to replay.
type PlaybackConfig struct {
	Dir        string
	FilePrefix string
}

// Playback replays journal records in file order. Records are handed to
// the handler as fast as they decode; simulation time is carried in the
// headers, not reproduced on the wall clock.
type Playback struct {
	cfg PlaybackConfig
}

// NewPlayback validates the config and creates a playback engine.
func NewPlayback(cfg PlaybackConfig) (*Playback, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("invalid playback config: Dir is empty")
	}
	if cfg.FilePrefix == "" {
		cfg.FilePrefix = defaultFilePrefix
	}
	return &Playback{cfg: cfg}, nil
}

// Run replays journal records and calls the handler for each event.
func (p *Playback) Run(ctx context.Context, handler func(schema.EventHeader, []byte) error) error {
	if handler == nil {
		return errors.New("playback handler is nil")
	}
	files, err := p.collectFiles()
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := p.playFile(ctx, path, handler); err != nil {
			return err
		}
	}
	return nil
}

func (p *Playback) collectFiles() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.Dir)
	if err != nil {
		return nil, err
	}
	prefix := p.cfg.FilePrefix + "-"
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".sjn") {
			continue
		}
		files = append(files, filepath.Join(p.cfg.Dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func (p *Playback) playFile(ctx context.Context, path string, handler func(schema.EventHeader, []byte) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := NewReader(file)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		header, payload, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := handler(header, payload); err != nil {
			return err
		}
	}
}
