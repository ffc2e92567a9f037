package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ScanScenes finds scene-change boundaries using ffmpeg content detection.
// The threshold is ffmpeg's 0..1 scene score; returned timestamps are the
// boundary points, not spans.
func (e *Executor) ScanScenes(ctx context.Context, input string, threshold float64) ([]time.Duration, error) {
	e.logger.Info().
		Str("input", input).
		Float64("threshold", threshold).
		Msg("scanning for scene changes")

	var stderrBuf bytes.Buffer
	var mu sync.Mutex

	opts := RunOptions{
		Args: []string{
			"-i", input,
			"-vf", fmt.Sprintf("select='gt(scene,%f)',showinfo", threshold),
			"-f", "null",
			"-",
		},
		LogHandler: func(line string) {
			mu.Lock()
			stderrBuf.WriteString(line + "\n")
			mu.Unlock()
		},
	}

	err := e.Run(ctx, opts)

	mu.Lock()
	output := stderrBuf.String()
	mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Null-muxer runs can fail with benign errors once all frames are seen.
		if !strings.Contains(err.Error(), "Conversion failed") &&
			!strings.Contains(err.Error(), "Invalid return value") &&
			!strings.Contains(err.Error(), "Output file is empty") {
			return nil, fmt.Errorf("scene scan failed: %w", err)
		}
	}

	boundaries := parseSceneTimes(output)
	e.logger.Info().Int("boundaries", len(boundaries)).Msg("scene scan complete")
	return boundaries, nil
}

// parseSceneTimes extracts boundary timestamps from showinfo output
func parseSceneTimes(output string) []time.Duration {
	var times []time.Duration

	lines := strings.Split(output, "\n")
	for _, line := range lines {
		if strings.Contains(line, "pts_time:") {
			parts := strings.Split(line, "pts_time:")
			if len(parts) == 2 {
				timeStr := strings.Fields(strings.TrimSpace(parts[1]))[0]
				if seconds, err := strconv.ParseFloat(timeStr, 64); err == nil {
					times = append(times, time.Duration(seconds*float64(time.Second)))
				}
			}
		}
	}

	return times
}
