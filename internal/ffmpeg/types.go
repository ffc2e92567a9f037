package ffmpeg

import "time"

// VideoInfo contains metadata about a media file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args       []string
	LogHandler func(line string)
}

// Default encoding settings
const (
	DefaultCRF        = 23
	DefaultPreset     = "medium"
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
)

// RenderSpec describes a single-pass clip encode: a bounded sub-range of the
// input, optional second music input, video filters and an audio filter graph.
type RenderSpec struct {
	Input    string
	Start    time.Duration
	Duration time.Duration

	// MusicInput, when set, is attached as input index 1.
	MusicInput string

	// VideoFilters are applied to [0:v] in order.
	VideoFilters []string

	// AudioGraph is a filter_complex fragment ending in an [aout] label.
	// Empty means the output carries no audio stream.
	AudioGraph string

	VideoCodec string
	AudioCodec string
	Preset     string
	CRF        int

	Output string
}
