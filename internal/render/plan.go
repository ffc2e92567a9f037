package render

import (
	"fmt"
	"time"

	"github.com/rasrobo/clipbot/internal/scenes"
)

// MinSceneDuration is the floor below which a detected scene is dropped
const MinSceneDuration = time.Second

// ScenePlan is the resolved timing for one output clip
type ScenePlan struct {
	Index    int // 1-based scene number, used in the output name
	Start    time.Duration
	Duration time.Duration
	Fade     time.Duration

	Skip       bool
	SkipReason string
}

// PlanScene applies the per-scene rules: scenes under one second are
// skipped, longer scenes are truncated to maxClip measured from the
// detected start, and the fade is capped at a quarter of the final length.
func PlanScene(index int, sc scenes.Scene, maxClip, fade time.Duration) ScenePlan {
	plan := ScenePlan{
		Index: index,
		Start: sc.Start,
	}

	dur := sc.Duration()
	if dur < MinSceneDuration {
		plan.Skip = true
		plan.SkipReason = fmt.Sprintf("too short: %.2fs", dur.Seconds())
		return plan
	}

	if maxClip > 0 && dur > maxClip {
		dur = maxClip
	}
	plan.Duration = dur

	plan.Fade = fade
	if maxFade := dur / 4; plan.Fade > maxFade {
		plan.Fade = maxFade
	}

	return plan
}

// Resolution is a target output size; the zero value means "keep original"
type Resolution struct {
	Width  int
	Height int
}

// IsOriginal reports whether no resize should happen
func (r Resolution) IsOriginal() bool {
	return r.Width == 0 && r.Height == 0
}

// ParseResolution maps the CLI resolution choice to pixel dimensions
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "480p":
		return Resolution{Width: 854, Height: 480}, nil
	case "720p":
		return Resolution{Width: 1280, Height: 720}, nil
	case "1080p":
		return Resolution{Width: 1920, Height: 1080}, nil
	case "original":
		return Resolution{}, nil
	default:
		return Resolution{}, fmt.Errorf("unknown resolution %q (want 480p, 720p, 1080p or original)", s)
	}
}
