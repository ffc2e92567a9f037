package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rasrobo/clipbot/internal/batch"
	"github.com/rasrobo/clipbot/internal/config"
	"github.com/rasrobo/clipbot/internal/ffmpeg"
	"github.com/rasrobo/clipbot/internal/logging"
	"github.com/rasrobo/clipbot/internal/music"
	"github.com/rasrobo/clipbot/internal/render"
	"github.com/rasrobo/clipbot/internal/scenes"
	"github.com/rasrobo/clipbot/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	maxClip       float64
	fade          float64
	musicPath     string
	downloadMusic bool
	mute          bool
	volume        float64
	resolution    string
	threshold     float64
	noCache       bool
	nonRecursive  bool
)

func main() {
	_ = godotenv.Load() // best-effort: load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("an error occurred")
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clipbot [input dir] [output dir]",
	Short: "clipbot - automated video clip generator",
	Long:  "Turns home videos into short social-media-ready clips: detects scene boundaries, trims, fades, mixes optional background music and resizes.",
	Args:  cobra.ExactArgs(2),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().Float64Var(&maxClip, "max-clip", 12.0, "maximum clip duration in seconds")
	rootCmd.Flags().Float64Var(&fade, "fade", 0.5, "fade duration in seconds")
	rootCmd.Flags().StringVar(&musicPath, "music", "", "background music file path")
	rootCmd.Flags().BoolVar(&downloadMusic, "download-music", false, "download free background music tracks")
	rootCmd.Flags().BoolVar(&mute, "mute", false, "remove original audio")
	rootCmd.Flags().Float64Var(&volume, "volume", 0.2, "music volume (0.0-1.0)")
	rootCmd.Flags().StringVar(&resolution, "resolution", "720p", "output resolution (480p, 720p, 1080p, original)")
	rootCmd.Flags().Float64Var(&threshold, "threshold", 27.0, "scene detection threshold")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching for scene detection")
	rootCmd.Flags().BoolVar(&nonRecursive, "non-recursive", false, "process only the top-level directory")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	inputDir, outputDir := args[0], args[1]

	res, err := render.ParseResolution(resolution)
	if err != nil {
		return err
	}

	exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath, cfg.FFmpeg.Threads)
	if err != nil {
		return err
	}

	if downloadMusic {
		musicDir := filepath.Join(outputDir, "background_music")
		dl := music.NewDownloader(log.Logger, cfg.Music.URLs)
		if err := dl.Fetch(ctx, musicDir); err != nil {
			return err
		}

		if musicPath == "" {
			first := filepath.Join(musicDir, music.FirstTrackName)
			if util.FileExists(first) {
				musicPath = first
				log.Info().Str("music", first).Msg("using downloaded music track")
			}
		}
	}

	// Music is best-effort: a track that can't be decoded disables music
	// for the run instead of failing it.
	if musicPath != "" {
		if _, err := exec.ProbeVideo(ctx, musicPath); err != nil {
			log.Error().Err(err).Str("music", musicPath).Msg("failed to load music file")
			musicPath = ""
		} else {
			log.Info().Str("music", filepath.Base(musicPath)).Msg("loaded background music")
		}
	}

	detector := scenes.NewDetector(log.Logger, exec, threshold, !noCache, cfg.Cache.DirName)
	renderer := render.New(log.Logger, exec, render.Options{
		MaxClip:      time.Duration(maxClip * float64(time.Second)),
		Fade:         time.Duration(fade * float64(time.Second)),
		MusicPath:    musicPath,
		MuteOriginal: mute,
		MusicVolume:  volume,
		Resolution:   res,
		UseCache:     !noCache,
		Preset:       cfg.FFmpeg.Preset,
		CRF:          cfg.FFmpeg.CRF,
	})
	driver := batch.New(log.Logger, detector, renderer)

	start := time.Now()
	total, err := driver.Run(ctx, inputDir, outputDir, !nonRecursive)
	if err != nil {
		return err
	}

	log.Info().
		Int("clips", total).
		Dur("elapsed", time.Since(start)).
		Msg("processing complete")

	return nil
}
