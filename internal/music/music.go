// Package music fetches stock background tracks for use in clips.
package music

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rasrobo/clipbot/pkg/util"
	"github.com/rs/zerolog"
)

// FirstTrackName is the default track picked when --download-music runs
// without an explicit --music path.
const FirstTrackName = "track_1.mp3"

// Downloader fetches a fixed set of remote audio tracks
type Downloader struct {
	logger zerolog.Logger
	client *http.Client
	urls   []string
}

// NewDownloader creates a downloader for the given track URLs
func NewDownloader(logger zerolog.Logger, urls []string) *Downloader {
	return &Downloader{
		logger: logger.With().Str("component", "music").Logger(),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		urls: urls,
	}
}

// Fetch downloads every track into dir as track_<N>.mp3, skipping files
// that already exist. Per-track failures are logged and do not abort the
// remaining downloads.
func (d *Downloader) Fetch(ctx context.Context, dir string) error {
	if err := util.EnsureDir(dir); err != nil {
		return fmt.Errorf("create music dir: %w", err)
	}

	for i, url := range d.urls {
		outputPath := filepath.Join(dir, fmt.Sprintf("track_%d.mp3", i+1))

		if util.FileExists(outputPath) {
			d.logger.Info().Str("track", outputPath).Msg("music file already exists")
			continue
		}

		d.logger.Info().Int("track", i+1).Str("url", url).Msg("downloading music track")

		if err := d.fetchOne(ctx, url, outputPath); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Error().Err(err).Str("url", url).Msg("failed to download track")
			continue
		}

		d.logger.Info().Str("track", outputPath).Msg("downloaded")
	}

	return nil
}

func (d *Downloader) fetchOne(ctx context.Context, url, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(outputPath)
		return err
	}

	return f.Close()
}
