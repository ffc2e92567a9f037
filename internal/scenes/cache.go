package scenes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// cachePath derives the cache file location for a video: a hidden directory
// beside the source, named from the file's base name and modification time.
// A changed mtime changes the key, which is the whole invalidation scheme.
func (d *Detector) cachePath(videoPath string) (string, error) {
	abs, err := filepath.Abs(videoPath)
	if err != nil {
		return "", err
	}

	st, err := os.Stat(abs)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%d.json", filepath.Base(abs), st.ModTime().Unix())
	return filepath.Join(filepath.Dir(abs), d.cacheDirName, name), nil
}

// readCache returns the cached scene list, or ok=false on a miss. Decode
// failures are logged and treated as misses.
func (d *Detector) readCache(path string) ([]Scene, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger.Warn().Err(err).Str("cache", path).Msg("failed to read scene cache")
		}
		return nil, false
	}

	var list []Scene
	if err := json.Unmarshal(data, &list); err != nil {
		d.logger.Warn().Err(err).Str("cache", path).Msg("failed to decode scene cache")
		return nil, false
	}

	return list, true
}

// writeCache stores the scene list; failures are logged and non-fatal
func (d *Detector) writeCache(path string, list []Scene) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		d.logger.Warn().Err(err).Str("cache", path).Msg("failed to create cache directory")
		return
	}

	data, err := json.Marshal(list)
	if err != nil {
		d.logger.Warn().Err(err).Str("cache", path).Msg("failed to encode scene cache")
		return
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		d.logger.Warn().Err(err).Str("cache", path).Msg("failed to write scene cache")
		return
	}

	d.logger.Info().Str("cache", path).Int("scenes", len(list)).Msg("cached scene detection results")
}
