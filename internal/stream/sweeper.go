package stream

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SweeperCtx periodically removes stream workspaces nobody has touched
// within the ttl. It only ever looks at directories, never at process
// handles; a transcoder whose workspace disappears simply errors out and
// frees its slot.
type SweeperCtx struct {
	logger   zerolog.Logger
	root     string
	ttl      time.Duration
	interval time.Duration
	cron     *cron.Cron

	// called with the stream id of each removed workspace
	onRemove func(streamID string)
}

func NewSweeper(root string, ttl time.Duration, interval time.Duration, onRemove func(streamID string)) *SweeperCtx {
	return &SweeperCtx{
		logger:   log.With().Str("module", "stream").Str("submodule", "sweeper").Logger(),
		root:     root,
		ttl:      ttl,
		interval: interval,
		cron:     cron.New(),
		onRemove: onRemove,
	}
}

func (s *SweeperCtx) Start() error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.Sweep)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().Str("root", s.root).Dur("ttl", s.ttl).Msg("sweeper started")
	return nil
}

func (s *SweeperCtx) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep runs one pass. Per-directory failures are skipped, a workspace may
// legitimately vanish mid-scan when a session cleans up after itself.
func (s *SweeperCtx) Sweep() {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.logger.Err(err).Msg("unable to list workspace root")
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), workspacePrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if time.Since(info.ModTime()) <= s.ttl {
			continue
		}

		dir := filepath.Join(s.root, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn().Err(err).Str("dir", dir).Msg("unable to remove expired workspace")
			continue
		}

		s.logger.Debug().Str("dir", dir).Msg("removed expired workspace")

		if s.onRemove != nil {
			s.onRemove(strings.TrimPrefix(entry.Name(), workspacePrefix))
		}
	}
}
