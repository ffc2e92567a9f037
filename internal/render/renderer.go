// Package render turns detected scenes into encoded clip files.
package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rasrobo/clipbot/internal/audio"
	"github.com/rasrobo/clipbot/internal/ffmpeg"
	"github.com/rasrobo/clipbot/internal/scenes"
	"github.com/rasrobo/clipbot/pkg/util"
	"github.com/rs/zerolog"
)

// Encoder is the subset of the ffmpeg executor the renderer needs
type Encoder interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
	RenderClip(ctx context.Context, spec ffmpeg.RenderSpec) error
}

// Options are the shared rendering parameters for a run
type Options struct {
	MaxClip      time.Duration
	Fade         time.Duration
	MusicPath    string // empty disables music
	MuteOriginal bool
	MusicVolume  float64
	Resolution   Resolution
	UseCache     bool // when true, existing outputs are reused without re-rendering

	Preset string
	CRF    int
}

// Renderer produces one encoded clip per qualifying scene
type Renderer struct {
	logger  zerolog.Logger
	encoder Encoder
	opts    Options
}

// New creates a renderer
func New(logger zerolog.Logger, encoder Encoder, opts Options) *Renderer {
	return &Renderer{
		logger:  logger.With().Str("component", "renderer").Logger(),
		encoder: encoder,
		opts:    opts,
	}
}

// RenderVideo renders all scenes of one video into outDir and returns the
// paths of the clips that exist afterwards. Per-scene failures are logged
// and skipped; probe failures propagate.
func (r *Renderer) RenderVideo(ctx context.Context, videoPath, outDir string, list []scenes.Scene) ([]string, error) {
	if len(list) == 0 {
		r.logger.Warn().Str("video", videoPath).Msg("no scenes detected")
		return nil, nil
	}

	if err := util.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	info, err := r.encoder.ProbeVideo(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe video: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))

	var outputs []string
	for i, sc := range list {
		if ctx.Err() != nil {
			return outputs, ctx.Err()
		}

		plan := PlanScene(i+1, sc, r.opts.MaxClip, r.opts.Fade)
		outputPath := filepath.Join(outDir, fmt.Sprintf("%s_clip%d.mp4", base, plan.Index))

		if r.opts.UseCache && util.FileExists(outputPath) {
			r.logger.Info().Str("output", outputPath).Msg("clip already exists")
			outputs = append(outputs, outputPath)
			continue
		}

		if plan.Skip {
			r.logger.Debug().
				Int("scene", plan.Index).
				Str("reason", plan.SkipReason).
				Msg("skipping scene")
			continue
		}

		r.logger.Info().
			Int("scene", plan.Index).
			Dur("start", plan.Start).
			Dur("duration", plan.Duration).
			Msg("processing scene")

		if err := r.renderScene(ctx, videoPath, info, plan, outputPath); err != nil {
			if ctx.Err() != nil {
				return outputs, ctx.Err()
			}
			r.logger.Error().Err(err).Int("scene", plan.Index).Msg("error processing scene")
			continue
		}

		r.logger.Info().Str("output", outputPath).Msg("created clip")
		outputs = append(outputs, outputPath)
	}

	return outputs, nil
}

func (r *Renderer) renderScene(ctx context.Context, videoPath string, info *ffmpeg.VideoInfo, plan ScenePlan, outputPath string) error {
	fb := ffmpeg.NewFilterBuilder().
		FadeIn(plan.Fade).
		FadeOut(plan.Duration-plan.Fade, plan.Fade)

	res := r.opts.Resolution
	if !res.IsOriginal() && (info.Width != res.Width || info.Height != res.Height) {
		fb.Scale(res.Width, res.Height)
	}

	mix := audio.BuildPlan(audio.Params{
		HasOriginal:  info.HasAudio,
		MuteOriginal: r.opts.MuteOriginal,
		HasMusic:     r.opts.MusicPath != "",
		MusicVolume:  r.opts.MusicVolume,
		ClipDuration: plan.Duration,
	})

	spec := ffmpeg.RenderSpec{
		Input:        videoPath,
		Start:        plan.Start,
		Duration:     plan.Duration,
		VideoFilters: fb.BuildAll(),
		AudioGraph:   mix.Graph,
		Preset:       r.opts.Preset,
		CRF:          r.opts.CRF,
		Output:       outputPath,
	}
	if mix.NeedsMusicInput {
		spec.MusicInput = r.opts.MusicPath
	}

	return r.encoder.RenderClip(ctx, spec)
}
