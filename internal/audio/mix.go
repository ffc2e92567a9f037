// Package audio plans the soundtrack of a rendered clip as an ffmpeg
// filter graph: dialogue normalized and compressed, music normalized,
// high-passed and weighted under it.
package audio

import (
	"fmt"
	"strings"
	"time"
)

// Loudness targets and envelope settings for the mix
const (
	dialogueLoudness = -12.0
	musicLoudness    = -20.0
	musicHighpassHz  = 200
	fadeSeconds      = 0.5

	// dialogueCompand keeps speech at a consistent level
	dialogueCompand = "compand=0.3|0.6:6:-70/-50/-20:6:0:-90:0.2"

	// musicWeight is the relative music level when dialogue is present
	musicWeight = 0.2
)

// Params describes the audio situation of one clip
type Params struct {
	// HasOriginal reports whether the source video carries an audio stream.
	HasOriginal bool

	// MuteOriginal drops the dialogue track entirely.
	MuteOriginal bool

	// HasMusic reports whether a background music input is attached.
	HasMusic bool

	// MusicVolume scales the music before mix weighting (0.0-1.0).
	MusicVolume float64

	ClipDuration time.Duration
}

// Plan is a filter_complex fragment ending in an [aout] label. An empty
// Graph means the clip carries no audio at all.
type Plan struct {
	Graph string

	// NeedsMusicInput reports whether the music file must be attached as
	// ffmpeg input index 1.
	NeedsMusicInput bool
}

// BuildPlan composes the mix graph for one clip. Dialogue is normalized
// toward the speech loudness target and compressed; music is normalized
// toward a quieter target, high-passed away from the speech band and
// weighted down unless it stands alone. Both streams get short symmetric
// fade envelopes.
func BuildPlan(p Params) Plan {
	dialogue := p.HasOriginal && !p.MuteOriginal
	music := p.HasMusic

	if !dialogue && !music {
		return Plan{}
	}

	fadeOutStart := p.ClipDuration.Seconds() - fadeSeconds
	if fadeOutStart < 0 {
		fadeOutStart = 0
	}
	envelope := fmt.Sprintf("afade=t=in:st=0:d=%.3f,afade=t=out:st=%.3f:d=%.3f",
		fadeSeconds, fadeOutStart, fadeSeconds)

	var chains []string

	if dialogue {
		filters := []string{
			fmt.Sprintf("loudnorm=I=%.0f:TP=-1.5:LRA=11", dialogueLoudness),
			dialogueCompand,
			envelope,
		}
		label := "[aout]"
		if music {
			label = "[dlg]"
		}
		chains = append(chains, "[0:a]"+strings.Join(filters, ",")+label)
	}

	if music {
		filters := []string{
			fmt.Sprintf("loudnorm=I=%.0f:TP=-1.5:LRA=11", musicLoudness),
			fmt.Sprintf("highpass=f=%d", musicHighpassHz),
			fmt.Sprintf("volume=%.3f", p.MusicVolume),
			envelope,
		}
		// Music only carries the clip alone at full weight.
		if dialogue {
			filters = append(filters, fmt.Sprintf("volume=%.3f", musicWeight))
		}
		label := "[aout]"
		if dialogue {
			label = "[mus]"
		}
		chains = append(chains, "[1:a]"+strings.Join(filters, ",")+label)
	}

	if dialogue && music {
		chains = append(chains, "[dlg][mus]amix=inputs=2:duration=first:normalize=0[aout]")
	}

	return Plan{
		Graph:           strings.Join(chains, ";"),
		NeedsMusicInput: music,
	}
}
