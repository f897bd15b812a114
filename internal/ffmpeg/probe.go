package ffmpeg

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Probe queries ffmpeg for its usable encoders. The query runs at most once
// per Probe; construct one per process and share it.
type Probe struct {
	binary string
	exec   Executor

	once     sync.Once
	encoders map[string]struct{}
	err      error
}

// ProbeOption configures a Probe.
type ProbeOption func(*Probe)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) ProbeOption {
	return func(p *Probe) {
		if exec != nil {
			p.exec = exec
		}
	}
}

// NewProbe constructs a probe for the given ffmpeg binary.
func NewProbe(binary string, opts ...ProbeOption) *Probe {
	probe := &Probe{binary: binary, exec: CommandExecutor{}}
	for _, opt := range opts {
		opt(probe)
	}
	return probe
}

// Encoders returns the set of encoder names the binary reports.
func (p *Probe) Encoders(ctx context.Context) (map[string]struct{}, error) {
	p.once.Do(func() {
		result, err := p.exec.Run(ctx, p.binary, []string{"-hide_banner", "-encoders"})
		if err != nil {
			p.err = fmt.Errorf("query encoders: %w", err)
			return
		}
		p.encoders = parseEncoderList(result.Stdout)
	})
	return p.encoders, p.err
}

// Supports reports whether the binary offers the named encoder.
func (p *Probe) Supports(ctx context.Context, encoder string) (bool, error) {
	encoders, err := p.Encoders(ctx)
	if err != nil {
		return false, err
	}
	_, ok := encoders[encoder]
	return ok, nil
}

// parseEncoderList extracts encoder names from `ffmpeg -encoders` output.
// Entries follow a "------" separator and look like:
//
//	V....D h264_nvenc           NVIDIA NVENC H.264 encoder (codec h264)
func parseEncoderList(output string) map[string]struct{} {
	encoders := make(map[string]struct{})
	seenSeparator := false
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !seenSeparator {
			if strings.HasPrefix(line, "------") {
				seenSeparator = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		encoders[fields[1]] = struct{}{}
	}
	return encoders
}
