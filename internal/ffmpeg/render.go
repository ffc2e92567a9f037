package ffmpeg

import (
	"context"
	"fmt"
	"strings"

	"github.com/rasrobo/clipbot/pkg/util"
)

// RenderClip encodes one bounded sub-range of the input in a single pass:
// seek, video filters, audio graph, then libx264/aac encode to spec.Output.
func (e *Executor) RenderClip(ctx context.Context, spec RenderSpec) error {
	if err := validateRenderSpec(spec); err != nil {
		return fmt.Errorf("invalid render spec: %w", err)
	}

	e.logger.Info().
		Str("input", spec.Input).
		Str("output", spec.Output).
		Dur("start", spec.Start).
		Dur("duration", spec.Duration).
		Msg("rendering clip")

	args := buildRenderArgs(spec)

	runOpts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("clip render")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("clip render failed: %w", err)
	}

	e.logger.Info().Str("output", spec.Output).Msg("clip render complete")
	return nil
}

// buildRenderArgs constructs the full ffmpeg argument list for a clip encode
func buildRenderArgs(spec RenderSpec) []string {
	args := []string{
		"-ss", util.FormatDuration(spec.Start),
		"-t", util.FormatDuration(spec.Duration),
		"-i", spec.Input,
	}

	if spec.MusicInput != "" {
		args = append(args, "-i", spec.MusicInput)
	}

	var graph []string
	videoLabel := "0:v"
	if len(spec.VideoFilters) > 0 {
		graph = append(graph, "[0:v]"+strings.Join(spec.VideoFilters, ",")+"[vout]")
		videoLabel = "[vout]"
	}
	if spec.AudioGraph != "" {
		graph = append(graph, spec.AudioGraph)
	}

	if len(graph) > 0 {
		args = append(args, "-filter_complex", strings.Join(graph, ";"))
	}

	args = append(args, "-map", videoLabel)
	if spec.AudioGraph != "" {
		args = append(args, "-map", "[aout]")
	} else {
		args = append(args, "-an")
	}

	videoCodec := spec.VideoCodec
	if videoCodec == "" {
		videoCodec = DefaultVideoCodec
	}
	args = append(args, "-c:v", videoCodec)

	crf := spec.CRF
	if crf == 0 {
		crf = DefaultCRF
	}
	args = append(args, "-crf", fmt.Sprintf("%d", crf))

	preset := spec.Preset
	if preset == "" {
		preset = DefaultPreset
	}
	args = append(args, "-preset", preset)

	if spec.AudioGraph != "" {
		audioCodec := spec.AudioCodec
		if audioCodec == "" {
			audioCodec = DefaultAudioCodec
		}
		args = append(args, "-c:a", audioCodec)
	}

	args = append(args, "-movflags", "+faststart")
	args = append(args, spec.Output)

	return args
}

// validateRenderSpec validates the render spec
func validateRenderSpec(spec RenderSpec) error {
	if spec.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if spec.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if spec.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if spec.CRF < 0 || spec.CRF > 51 {
		return fmt.Errorf("CRF must be between 0 and 51")
	}
	return nil
}
