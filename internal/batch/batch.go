// Package batch walks an input tree and drives the per-video pipeline.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rasrobo/clipbot/internal/scenes"
	"github.com/rs/zerolog"
)

// videoExtensions are the input formats picked up by the walker
var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
	".wmv": true,
}

// SceneDetector yields the scene list for one video
type SceneDetector interface {
	Detect(ctx context.Context, videoPath string) ([]scenes.Scene, error)
}

// VideoRenderer renders all scenes of one video into an output directory
type VideoRenderer interface {
	RenderVideo(ctx context.Context, videoPath, outDir string, list []scenes.Scene) ([]string, error)
}

// Driver processes every video under an input directory, one at a time
type Driver struct {
	logger   zerolog.Logger
	detector SceneDetector
	renderer VideoRenderer
}

// New creates a batch driver
func New(logger zerolog.Logger, detector SceneDetector, renderer VideoRenderer) *Driver {
	return &Driver{
		logger:   logger.With().Str("component", "batch").Logger(),
		detector: detector,
		renderer: renderer,
	}
}

// Run processes all videos under inputDir and returns the total number of
// clips produced. When recursive, the input directory structure is mirrored
// under outputDir; otherwise only the top level is scanned and outputs are
// flat. Detection failures abort the run; per-scene render failures do not.
func (d *Driver) Run(ctx context.Context, inputDir, outputDir string, recursive bool) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	videos, err := collectVideos(inputDir, recursive)
	if err != nil {
		return 0, fmt.Errorf("scan input dir: %w", err)
	}

	d.logger.Info().
		Int("videos", len(videos)).
		Str("input", inputDir).
		Msg("starting batch run")

	total := 0
	for _, videoPath := range videos {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}

		outDir := outputDir
		if recursive {
			rel, err := filepath.Rel(inputDir, filepath.Dir(videoPath))
			if err != nil {
				return total, fmt.Errorf("relative path for %s: %w", videoPath, err)
			}
			outDir = filepath.Join(outputDir, rel)
		}

		list, err := d.detector.Detect(ctx, videoPath)
		if err != nil {
			return total, fmt.Errorf("detect scenes in %s: %w", videoPath, err)
		}

		d.logger.Info().
			Str("video", filepath.Base(videoPath)).
			Int("scenes", len(list)).
			Msg("detected scenes")

		outputs, err := d.renderer.RenderVideo(ctx, videoPath, outDir, list)
		if err != nil {
			return total, fmt.Errorf("render %s: %w", videoPath, err)
		}

		total += len(outputs)
	}

	return total, nil
}

// collectVideos enumerates qualifying video files, sorted by path
func collectVideos(inputDir string, recursive bool) ([]string, error) {
	var videos []string

	if !recursive {
		entries, err := os.ReadDir(inputDir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if isVideo(entry.Name()) {
				videos = append(videos, filepath.Join(inputDir, entry.Name()))
			}
		}
		return videos, nil
	}

	err := filepath.WalkDir(inputDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && isVideo(entry.Name()) {
			videos = append(videos, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return videos, nil
}

func isVideo(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}
