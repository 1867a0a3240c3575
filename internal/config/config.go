// Package config loads inlimbo's TOML configuration: the music library
// root, the library index's sort plan, and the fuzzy-match budget used
// by title lookups. Everything else named in a config file is accepted
// and ignored — koanf's reflection-based Unmarshal treats unknown struct
// fields as simply unpopulated, not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/inlimbo/core/internal/songmap"
)

// Config is the subset of config.toml the core consumes, per spec §6.
type Config struct {
	Library LibraryConfig `koanf:"library"`
	Sort    SortConfig    `koanf:"sort"`
	Fuzzy   FuzzyConfig   `koanf:"fuzzy"`
}

// LibraryConfig names the music root to walk and index.
type LibraryConfig struct {
	Directory string `koanf:"directory"`
}

// SortConfig names a metric per hierarchy level, resolved by Load into a
// songmap.SortPlan. Field values are metric names as documented on
// songmap.Parse*Metric (e.g. "lex_asc", "year_desc").
type SortConfig struct {
	Artist string `koanf:"artist"`
	Album  string `koanf:"album"`
	Disc   string `koanf:"disc"`
	Track  string `koanf:"track"`
}

// FuzzyConfig holds the default Levenshtein budget for fuzzy title
// lookups.
type FuzzyConfig struct {
	MaxDist int `koanf:"max_dist"`
}

const defaultFuzzyMaxDist = 2

// Warning is a non-fatal issue noticed while loading the config, such as
// an unrecognized sort metric name. Load never fails because of these;
// it falls back to a sane default and reports why.
type Warning struct {
	Key     string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("config: %s: %s", w.Key, w.Message)
}

// Loaded is a fully resolved configuration: the raw Config plus the
// SortPlan derived from it and any warnings raised while resolving sort
// metric names.
type Loaded struct {
	Config   Config
	SortPlan songmap.SortPlan
	Warnings []Warning
}

// Load reads config.toml from the paths returned by Paths (later paths
// win), applies defaults, and resolves the sort plan. A missing file at
// any candidate path is not an error; Load only fails if a present file
// cannot be parsed as TOML.
func Load() (*Loaded, error) {
	k := koanf.New(".")

	for _, path := range Paths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg := Config{Fuzzy: FuzzyConfig{MaxDist: defaultFuzzyMaxDist}}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.Library.Directory != "" {
		cfg.Library.Directory = expandPath(cfg.Library.Directory)
	}
	if cfg.Fuzzy.MaxDist <= 0 {
		cfg.Fuzzy.MaxDist = defaultFuzzyMaxDist
	}

	loaded := &Loaded{Config: cfg}
	loaded.SortPlan, loaded.Warnings = resolveSortPlan(cfg.Sort)
	return loaded, nil
}

// resolveSortPlan converts a SortConfig's metric names into a
// songmap.SortPlan, recording a Warning (and falling back to lex/asc)
// for every name that doesn't resolve.
func resolveSortPlan(sc SortConfig) (songmap.SortPlan, []Warning) {
	var warnings []Warning
	plan := songmap.DefaultSortPlan()

	if am, ok := songmap.ParseArtistMetric(sc.Artist); ok {
		plan.Artist = am
	} else if sc.Artist != "" {
		warnings = append(warnings, Warning{"sort.artist", fmt.Sprintf("unknown metric %q, using lex_asc", sc.Artist)})
	}
	if alm, ok := songmap.ParseAlbumMetric(sc.Album); ok {
		plan.Album = alm
	} else if sc.Album != "" {
		warnings = append(warnings, Warning{"sort.album", fmt.Sprintf("unknown metric %q, using lex_asc", sc.Album)})
	}
	if dm, ok := songmap.ParseDiscMetric(sc.Disc); ok {
		plan.Disc = dm
	} else if sc.Disc != "" {
		warnings = append(warnings, Warning{"sort.disc", fmt.Sprintf("unknown metric %q, using disc_asc", sc.Disc)})
	}
	if tm, ok := songmap.ParseTrackMetric(sc.Track); ok {
		plan.Track = tm
	} else if sc.Track != "" {
		warnings = append(warnings, Warning{"sort.track", fmt.Sprintf("unknown metric %q, using track_asc", sc.Track)})
	}
	return plan, warnings
}

// Paths returns config.toml candidates in increasing priority order: the
// XDG config home (overridable via INLIMBO_CONFIG_HOME), then ./config.toml
// in the working directory.
func Paths() []string {
	var paths []string
	if home := os.Getenv("INLIMBO_CONFIG_HOME"); home != "" {
		paths = append(paths, filepath.Join(home, "config.toml"))
	} else if dir, err := xdg.ConfigFile("inlimbo/config.toml"); err == nil {
		paths = append(paths, dir)
	}
	paths = append(paths, "config.toml")
	return paths
}

// CacheDir returns the directory inlimbo caches derived data in
// (lib.bin and extracted album art), honoring XDG_DATA_HOME/HOME like
// the rest of the xdg-aware ecosystem.
func CacheDir() (string, error) {
	return xdg.DataFile("inlimbo")
}

// LibBinPath returns the path to the serialized library index within
// CacheDir.
func LibBinPath() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lib.bin"), nil
}

// ArtCacheDir returns the directory extracted cover-art thumbnails are
// written to, creating it if necessary.
func ArtCacheDir() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	artDir := filepath.Join(dir, "art")
	if err := os.MkdirAll(artDir, 0o755); err != nil {
		return "", fmt.Errorf("config: create art cache dir: %w", err)
	}
	return artDir, nil
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
