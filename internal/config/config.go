// Package config loads the CLI's JSON configuration file, overlaying only
// the keys a user actually set onto a set of defaults. This mirrors the
// two-phase "detect explicitly-set keys" approach the CLI's original
// config loader used: unmarshal once into a generic map to see which keys
// are present, then unmarshal again into the typed struct, so a key the
// user omitted keeps its default rather than being zeroed out by a naive
// single json.Unmarshal.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kuandriy/vocabtree/internal/persist"
)

// Config holds every tunable of the training/search pipeline.
type Config struct {
	Split          uint32 `json:"split"`
	Depth          uint32 `json:"depth"`
	AmountToReturn uint32 `json:"amountToReturn"`

	KMeansMaxIterations int     `json:"kmeansMaxIterations"`
	KMeansEpsilon       float64 `json:"kmeansEpsilon"`
	KMeansAttempts      int     `json:"kmeansAttempts"`

	DecodeCacheSize int `json:"decodeCacheSize"`

	DataRoot  string `json:"dataRoot"`
	IndexPath string `json:"indexPath"`
	CacheDir  string `json:"cacheDir"`
}

// Default returns the pipeline's baked-in defaults.
func Default() Config {
	return Config{
		Split:               10,
		Depth:               6,
		AmountToReturn:      20,
		KMeansMaxIterations: 16,
		KMeansEpsilon:       1e-4,
		KMeansAttempts:      1,
		DecodeCacheSize:     256,
		DataRoot:            "data",
		IndexPath:           "vocabtree.index",
		CacheDir:            ".vocabtree-cache",
	}
}

// Load reads path into Default(), overlaying only the keys present in the
// file. A missing file is not an error — it yields the defaults unchanged,
// matching the CLI's existing "absent config is not a failure" stance.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(raw, &present); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	var overlay Config
	if err := json.Unmarshal(raw, &overlay); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyIfSet(present, "split", &cfg.Split, overlay.Split)
	applyIfSet(present, "depth", &cfg.Depth, overlay.Depth)
	applyIfSet(present, "amountToReturn", &cfg.AmountToReturn, overlay.AmountToReturn)
	applyIfSet(present, "kmeansMaxIterations", &cfg.KMeansMaxIterations, overlay.KMeansMaxIterations)
	applyIfSet(present, "kmeansEpsilon", &cfg.KMeansEpsilon, overlay.KMeansEpsilon)
	applyIfSet(present, "kmeansAttempts", &cfg.KMeansAttempts, overlay.KMeansAttempts)
	applyIfSet(present, "decodeCacheSize", &cfg.DecodeCacheSize, overlay.DecodeCacheSize)
	applyIfSet(present, "dataRoot", &cfg.DataRoot, overlay.DataRoot)
	applyIfSet(present, "indexPath", &cfg.IndexPath, overlay.IndexPath)
	applyIfSet(present, "cacheDir", &cfg.CacheDir, overlay.CacheDir)

	return cfg, nil
}

func applyIfSet[T any](present map[string]json.RawMessage, key string, dst *T, val T) {
	if _, ok := present[key]; ok {
		*dst = val
	}
}

// Save writes cfg to path as indented JSON via a temp-file-then-rename,
// so a reader never observes a half-written config file.
func Save(cfg Config, path string) error {
	return persist.SaveAtomic(path, cfg)
}
