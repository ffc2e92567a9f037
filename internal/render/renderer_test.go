package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rasrobo/clipbot/internal/ffmpeg"
	"github.com/rasrobo/clipbot/internal/scenes"
	"github.com/rs/zerolog"
)

type fakeEncoder struct {
	info     *ffmpeg.VideoInfo
	probeErr error

	rendered []ffmpeg.RenderSpec
	failOn   map[string]bool // output base names that fail to encode
}

func (f *fakeEncoder) ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	return f.info, nil
}

func (f *fakeEncoder) RenderClip(ctx context.Context, spec ffmpeg.RenderSpec) error {
	if f.failOn[filepath.Base(spec.Output)] {
		return errors.New("encode failed")
	}
	f.rendered = append(f.rendered, spec)
	return nil
}

func defaultInfo() *ffmpeg.VideoInfo {
	return &ffmpeg.VideoInfo{
		Duration: 30 * time.Second,
		Width:    1280,
		Height:   720,
		HasAudio: true,
	}
}

func threeScenes() []scenes.Scene {
	return []scenes.Scene{
		{Start: 0, End: 500 * time.Millisecond},
		{Start: 500 * time.Millisecond, End: 8500 * time.Millisecond},
		{Start: 8500 * time.Millisecond, End: 28500 * time.Millisecond},
	}
}

func newTestRenderer(enc Encoder, opts Options) *Renderer {
	return New(zerolog.Nop(), enc, opts)
}

func TestRenderVideoSceneRules(t *testing.T) {
	enc := &fakeEncoder{info: defaultInfo()}
	r := newTestRenderer(enc, Options{
		MaxClip:    12 * time.Second,
		Fade:       500 * time.Millisecond,
		Resolution: Resolution{1280, 720},
	})

	outDir := t.TempDir()
	outputs, err := r.RenderVideo(context.Background(), "/media/beach.mp4", outDir, threeScenes())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if len(outputs) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(outputs))
	}
	if len(enc.rendered) != 2 {
		t.Fatalf("expected 2 encodes, got %d", len(enc.rendered))
	}

	if got := filepath.Base(outputs[0]); got != "beach_clip2.mp4" {
		t.Errorf("unexpected first output name %q", got)
	}
	if got := filepath.Base(outputs[1]); got != "beach_clip3.mp4" {
		t.Errorf("unexpected second output name %q", got)
	}

	if enc.rendered[0].Duration != 8*time.Second {
		t.Errorf("second scene duration: got %v", enc.rendered[0].Duration)
	}
	if enc.rendered[1].Duration != 12*time.Second {
		t.Errorf("third scene must be truncated to 12s, got %v", enc.rendered[1].Duration)
	}
	if enc.rendered[1].Start != 8500*time.Millisecond {
		t.Errorf("truncation must keep the detected start, got %v", enc.rendered[1].Start)
	}
}

func TestRenderVideoExistingOutputReused(t *testing.T) {
	enc := &fakeEncoder{info: defaultInfo()}
	r := newTestRenderer(enc, Options{
		MaxClip:  12 * time.Second,
		Fade:     500 * time.Millisecond,
		UseCache: true,
	})

	outDir := t.TempDir()
	existing := filepath.Join(outDir, "beach_clip2.mp4")
	if err := os.WriteFile(existing, []byte("previous render"), 0644); err != nil {
		t.Fatalf("seed output: %v", err)
	}

	outputs, err := r.RenderVideo(context.Background(), "/media/beach.mp4", outDir, threeScenes())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if len(outputs) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(outputs))
	}
	if len(enc.rendered) != 1 {
		t.Fatalf("existing output must not be re-rendered, got %d encodes", len(enc.rendered))
	}
	if got := filepath.Base(enc.rendered[0].Output); got != "beach_clip3.mp4" {
		t.Errorf("only the third scene should encode, got %q", got)
	}
}

func TestRenderVideoPerSceneFailureContinues(t *testing.T) {
	enc := &fakeEncoder{
		info:   defaultInfo(),
		failOn: map[string]bool{"beach_clip2.mp4": true},
	}
	r := newTestRenderer(enc, Options{
		MaxClip: 12 * time.Second,
		Fade:    500 * time.Millisecond,
	})

	outputs, err := r.RenderVideo(context.Background(), "/media/beach.mp4", t.TempDir(), threeScenes())
	if err != nil {
		t.Fatalf("per-scene failure must not abort the video: %v", err)
	}

	if len(outputs) != 1 {
		t.Fatalf("expected 1 surviving clip, got %d", len(outputs))
	}
	if got := filepath.Base(outputs[0]); got != "beach_clip3.mp4" {
		t.Errorf("unexpected surviving clip %q", got)
	}
}

func TestRenderVideoProbeFailureAborts(t *testing.T) {
	enc := &fakeEncoder{probeErr: errors.New("unreadable")}
	r := newTestRenderer(enc, Options{MaxClip: 12 * time.Second})

	if _, err := r.RenderVideo(context.Background(), "/media/beach.mp4", t.TempDir(), threeScenes()); err == nil {
		t.Fatal("probe failure must propagate")
	}
}

func TestRenderVideoResize(t *testing.T) {
	cases := []struct {
		name      string
		res       Resolution
		wantScale string
	}{
		{"matching resolution adds no scale", Resolution{1280, 720}, ""},
		{"1080p upscales", Resolution{1920, 1080}, "scale=1920:1080"},
		{"original keeps dimensions", Resolution{}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enc := &fakeEncoder{info: defaultInfo()}
			r := newTestRenderer(enc, Options{
				MaxClip:    12 * time.Second,
				Fade:       500 * time.Millisecond,
				Resolution: tc.res,
			})

			_, err := r.RenderVideo(context.Background(), "/media/beach.mp4", t.TempDir(),
				[]scenes.Scene{{Start: 0, End: 5 * time.Second}})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if len(enc.rendered) != 1 {
				t.Fatalf("expected 1 encode, got %d", len(enc.rendered))
			}

			filters := strings.Join(enc.rendered[0].VideoFilters, ",")
			hasScale := strings.Contains(filters, "scale=")
			if tc.wantScale == "" && hasScale {
				t.Errorf("unexpected scale filter: %q", filters)
			}
			if tc.wantScale != "" && !strings.Contains(filters, tc.wantScale) {
				t.Errorf("expected %q in filters %q", tc.wantScale, filters)
			}
		})
	}
}

func TestRenderVideoAudioWiring(t *testing.T) {
	t.Run("muted with music keeps music only", func(t *testing.T) {
		enc := &fakeEncoder{info: defaultInfo()}
		r := newTestRenderer(enc, Options{
			MaxClip:      12 * time.Second,
			MusicPath:    "/music/track_1.mp3",
			MuteOriginal: true,
			MusicVolume:  0.2,
		})

		_, err := r.RenderVideo(context.Background(), "/media/beach.mp4", t.TempDir(),
			[]scenes.Scene{{Start: 0, End: 5 * time.Second}})
		if err != nil {
			t.Fatalf("render: %v", err)
		}

		spec := enc.rendered[0]
		if spec.MusicInput != "/music/track_1.mp3" {
			t.Errorf("music input missing, got %q", spec.MusicInput)
		}
		if strings.Contains(spec.AudioGraph, "[0:a]") {
			t.Errorf("muted dialogue must not appear: %q", spec.AudioGraph)
		}
	})

	t.Run("no audio at all strips the stream", func(t *testing.T) {
		info := defaultInfo()
		info.HasAudio = false
		enc := &fakeEncoder{info: info}
		r := newTestRenderer(enc, Options{MaxClip: 12 * time.Second})

		_, err := r.RenderVideo(context.Background(), "/media/beach.mp4", t.TempDir(),
			[]scenes.Scene{{Start: 0, End: 5 * time.Second}})
		if err != nil {
			t.Fatalf("render: %v", err)
		}

		spec := enc.rendered[0]
		if spec.AudioGraph != "" {
			t.Errorf("expected no audio graph, got %q", spec.AudioGraph)
		}
		if spec.MusicInput != "" {
			t.Errorf("expected no music input, got %q", spec.MusicInput)
		}
	})
}

func TestRenderVideoNoScenes(t *testing.T) {
	enc := &fakeEncoder{info: defaultInfo()}
	r := newTestRenderer(enc, Options{MaxClip: 12 * time.Second})

	outputs, err := r.RenderVideo(context.Background(), "/media/beach.mp4", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(outputs) != 0 {
		t.Errorf("expected no outputs, got %d", len(outputs))
	}
}
