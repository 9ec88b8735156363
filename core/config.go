package core

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/cpu"
	"gopkg.in/yaml.v3"
)

// ErrConfig is returned when a configuration record is invalid or a
// configuration file cannot be read or parsed.
var ErrConfig = errors.New("core: invalid configuration")

// Defaults for the configuration record. These are the single source of
// truth mirrored by DefaultConfig.
const (
	// DefaultCacheLineBytes is assumed when the platform gives no hint.
	DefaultCacheLineBytes = 64

	// DefaultMaxPipelines is the initial live-pipeline pool capacity.
	// Exceeding it is legal; a one-time warning may be emitted.
	DefaultMaxPipelines = 32

	// DefaultMaxDepth is the initial per-pipeline stage capacity.
	DefaultMaxDepth = 16

	// DefaultMaxTiles bounds the number of tiles a pipeline partitions
	// its index space into.
	DefaultMaxTiles = 1 << 16

	// DefaultTileFactor scales the cache-line-sized page that a matrix
	// tile targets; each row tile aims to hold about
	// TileFactor * CacheLineBytes values.
	DefaultTileFactor = 256

	// DefaultTilesPerWorker oversubscribes tiles over workers so the
	// dynamic tile cursor can balance uneven stages.
	DefaultTilesPerWorker = 4

	// DefaultWarnIfExceeded controls the one-time pool-overflow warning.
	DefaultWarnIfExceeded = true
)

// Config is the load-time configuration record of the runtime. The zero
// value is not usable; obtain one via DefaultConfig or LoadConfig.
type Config struct {
	// Workers is the pipeline executor's worker count.
	Workers int `yaml:"workers"`

	// CacheLineBytes is the cache line size assumed by the tile model.
	CacheLineBytes int `yaml:"cache_line_bytes"`

	// Blocksize is the default vector-unit blocking hint handed to
	// operators that do not declare their own.
	Blocksize int `yaml:"blocksize"`

	// MaxPipelines is the initial capacity of the live pipeline pool.
	MaxPipelines int `yaml:"max_pipelines"`

	// MaxDepth is the initial per-pipeline stage capacity.
	MaxDepth int `yaml:"max_depth"`

	// MaxTiles caps the tile count of a single pipeline.
	MaxTiles int `yaml:"max_tiles"`

	// TileFactor scales the per-tile value target of matrix partitions.
	TileFactor int `yaml:"tile_factor"`

	// TilesPerWorker oversubscribes the tile partition relative to the
	// worker count for vector pipelines.
	TilesPerWorker int `yaml:"tiles_per_worker"`

	// WarnIfExceeded emits a one-time warning when the pipeline pool
	// grows beyond MaxPipelines.
	WarnIfExceeded bool `yaml:"warn_if_exceeded"`
}

// DefaultConfig builds the configuration record from the running platform:
// worker count from GOMAXPROCS and the blocking hint from the widest vector
// unit the CPU reports.
func DefaultConfig() Config {
	return Config{
		Workers:        runtime.GOMAXPROCS(0),
		CacheLineBytes: DefaultCacheLineBytes,
		Blocksize:      defaultBlocksize(),
		MaxPipelines:   DefaultMaxPipelines,
		MaxDepth:       DefaultMaxDepth,
		MaxTiles:       DefaultMaxTiles,
		TileFactor:     DefaultTileFactor,
		TilesPerWorker: DefaultTilesPerWorker,
		WarnIfExceeded: DefaultWarnIfExceeded,
	}
}

// defaultBlocksize picks the default operator blocking hint from the widest
// vector unit reported by the CPU, counted in float64 lanes.
func defaultBlocksize() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 8
	case cpu.X86.HasAVX2:
		return 4
	case cpu.ARM64.HasASIMD:
		return 2
	default:
		return 4
	}
}

// LoadConfig reads a YAML configuration file and overlays it on
// DefaultConfig. Absent keys keep their defaults; an unreadable file or an
// invalid resulting record yields ErrConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err = yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err = cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the record for nonsensical values.
func (c Config) Validate() error {
	switch {
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive (%d)", ErrConfig, c.Workers)
	case c.CacheLineBytes <= 0:
		return fmt.Errorf("%w: cache line size must be positive (%d)", ErrConfig, c.CacheLineBytes)
	case c.Blocksize <= 0:
		return fmt.Errorf("%w: blocksize must be positive (%d)", ErrConfig, c.Blocksize)
	case c.MaxPipelines <= 0:
		return fmt.Errorf("%w: pipeline pool capacity must be positive (%d)", ErrConfig, c.MaxPipelines)
	case c.MaxDepth <= 0:
		return fmt.Errorf("%w: pipeline depth must be positive (%d)", ErrConfig, c.MaxDepth)
	case c.MaxTiles <= 0:
		return fmt.Errorf("%w: tile cap must be positive (%d)", ErrConfig, c.MaxTiles)
	case c.TileFactor <= 0:
		return fmt.Errorf("%w: tile factor must be positive (%d)", ErrConfig, c.TileFactor)
	case c.TilesPerWorker <= 0:
		return fmt.Errorf("%w: tiles per worker must be positive (%d)", ErrConfig, c.TilesPerWorker)
	}
	return nil
}
