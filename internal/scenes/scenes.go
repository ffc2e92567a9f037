package scenes

import (
	"context"
	"fmt"
	"time"

	"github.com/rasrobo/clipbot/internal/ffmpeg"
	"github.com/rs/zerolog"
)

// Scene is a contiguous span of one input video delimited by detected
// content changes. Scenes are ordered by start and non-overlapping.
type Scene struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

// Duration returns the scene length
func (s Scene) Duration() time.Duration {
	return s.End - s.Start
}

// Scanner is the subset of the ffmpeg executor the detector needs
type Scanner interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
	ScanScenes(ctx context.Context, path string, threshold float64) ([]time.Duration, error)
}

// Detector finds scenes in a video, caching results on disk keyed by the
// source path and modification time.
type Detector struct {
	logger       zerolog.Logger
	scanner      Scanner
	threshold    float64
	useCache     bool
	cacheDirName string
}

// NewDetector creates a scene detector. The threshold uses the CLI's 0-100
// scale and is normalized to ffmpeg's 0..1 scene score internally.
func NewDetector(logger zerolog.Logger, scanner Scanner, threshold float64, useCache bool, cacheDirName string) *Detector {
	if cacheDirName == "" {
		cacheDirName = ".clipbot_cache"
	}
	return &Detector{
		logger:       logger.With().Str("component", "scene-detector").Logger(),
		scanner:      scanner,
		threshold:    threshold,
		useCache:     useCache,
		cacheDirName: cacheDirName,
	}
}

// Detect returns the ordered scene list for a video. Cache hits skip the
// scan entirely; cache read failures fall back to a fresh scan and cache
// write failures are non-fatal. Scan errors propagate.
func (d *Detector) Detect(ctx context.Context, videoPath string) ([]Scene, error) {
	var cp string
	if d.useCache {
		var err error
		cp, err = d.cachePath(videoPath)
		if err != nil {
			return nil, fmt.Errorf("derive cache path: %w", err)
		}

		if cached, ok := d.readCache(cp); ok {
			d.logger.Info().
				Str("video", videoPath).
				Int("scenes", len(cached)).
				Msg("using cached scene detection results")
			return cached, nil
		}
	}

	d.logger.Info().Str("video", videoPath).Msg("detecting scenes")

	info, err := d.scanner.ProbeVideo(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe video: %w", err)
	}

	boundaries, err := d.scanner.ScanScenes(ctx, videoPath, d.threshold/100.0)
	if err != nil {
		return nil, fmt.Errorf("scan scenes: %w", err)
	}

	list := foldBoundaries(boundaries, info.Duration)

	if d.useCache {
		d.writeCache(cp, list)
	}

	return list, nil
}

// foldBoundaries converts boundary timestamps into contiguous scenes
// covering [0, total). A video with no boundaries is a single scene.
func foldBoundaries(boundaries []time.Duration, total time.Duration) []Scene {
	var list []Scene
	last := time.Duration(0)

	for _, b := range boundaries {
		if b <= last || b >= total {
			continue
		}
		list = append(list, Scene{Start: last, End: b})
		last = b
	}

	if total > last {
		list = append(list, Scene{Start: last, End: total})
	}

	return list
}
