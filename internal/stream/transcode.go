package stream

import (
	"errors"
	"net/http"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TranscodeOptions describe one transcoder invocation: copy video, re-encode
// audio, emit a rolling segmented HLS ladder into the stream workspace.
type TranscodeOptions struct {
	Input          string
	Headers        http.Header // device headers for ffmpeg's own http client
	SegmentTime    int
	ListSize       int
	SegmentPattern string
	PlaylistPath   string
}

func (o TranscodeOptions) Args() []string {
	var args []string

	// header block must precede the input it applies to
	if len(o.Headers) > 0 {
		args = append(args, "-headers", headerBlock(o.Headers))
	}

	args = append(args,
		"-y",
		"-i", o.Input,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "128k",
		"-ac", "2",
		"-f", "hls",
		"-hls_time", strconv.Itoa(o.SegmentTime),
		"-hls_list_size", strconv.Itoa(o.ListSize),
		"-hls_flags", "delete_segments",
		"-hls_segment_filename", o.SegmentPattern,
		o.PlaylistPath,
	)

	return args
}

// headerBlock renders headers the way ffmpeg's -headers option expects them,
// one "Key: Value" pair per CRLF-separated line.
func headerBlock(h http.Header) string {
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+": "+h.Get(key))
	}

	return strings.Join(lines, "\r\n")
}

// Process is one running transcoder owned by the session manager. Whatever
// way it terminates, its exit callback runs exactly once.
type Process struct {
	StreamID  string
	StartedAt time.Time

	logger zerolog.Logger
	cmd    *exec.Cmd
	done   chan struct{}
	exit   sync.Once
	onExit func()
}

func newProcess(streamID string, cmd *exec.Cmd, logger zerolog.Logger, onExit func()) *Process {
	return &Process{
		StreamID: streamID,

		logger: logger,
		cmd:    cmd,
		done:   make(chan struct{}),
		onExit: onExit,
	}
}

func (p *Process) Start() error {
	p.cmd.Stderr = logWriter{p.logger}
	p.cmd.SysProcAttr = processGroupAttr()

	if err := p.cmd.Start(); err != nil {
		// nothing is running, free the slot right away
		p.exit.Do(p.onExit)
		close(p.done)
		return err
	}

	p.StartedAt = time.Now()
	go p.wait()

	return nil
}

func (p *Process) wait() {
	err := p.cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// abnormal exit is not escalated: the playlist simply stops
			// updating and the next cold request relaunches
			p.logger.Warn().Int("exit-code", exitErr.ExitCode()).Msg("transcoder exited with an exit code != 0")
		} else {
			p.logger.Err(err).Msg("transcoder exited with an error")
		}
	} else {
		p.logger.Debug().Msg("transcoder exited")
	}

	p.exit.Do(p.onExit)
	close(p.done)
}

func (p *Process) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *Process) Done() <-chan struct{} {
	return p.done
}

// logWriter forwards transcoder stderr into the session logger.
type logWriter struct {
	logger zerolog.Logger
}

func (l logWriter) Write(p []byte) (n int, err error) {
	l.logger.Debug().Msg(strings.TrimSpace(string(p)))
	return len(p), nil
}
