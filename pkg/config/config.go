// Package config loads spigletc settings from the environment.
package config

import (
	"fmt"
	"runtime"

	"github.com/xyproto/env/v2"

	"github.com/GriffinCanCode/spiglet-compiler/pkg/codegen/regalloc"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/logger"
)

// Environment variables read by FromEnv
const (
	EnvScratchRegs = "SPIGLETC_SCRATCH_REGS"
	EnvSavedRegs   = "SPIGLETC_SAVED_REGS"
	EnvWorkers     = "SPIGLETC_WORKERS"
	EnvLogLevel    = "SPIGLETC_LOG_LEVEL"
	EnvLogFormat   = "SPIGLETC_LOG_FORMAT"
	EnvLogFile     = "SPIGLETC_LOG_FILE"
	EnvLogDir      = "SPIGLETC_LOG_DIR"
	EnvDebug       = "SPIGLETC_DEBUG"
)

const (
	maxScratchRegs = 10
	maxSavedRegs   = 8
)

// Config holds analysis and logging settings
type Config struct {
	ScratchRegs int // t registers available to the allocator
	SavedRegs   int // s registers available to the allocator
	Workers     int // methods analysed in parallel
	LogLevel    string
	LogFormat   string // "text" or "json"
	LogFile     string
	LogDir      string // JSON log file spigletc.log in this directory
	Debug       bool   // debug level text logs with source positions
}

// Default returns the full Kanga register file and one worker per CPU
func Default() Config {
	return Config{
		ScratchRegs: maxScratchRegs,
		SavedRegs:   maxSavedRegs,
		Workers:     runtime.GOMAXPROCS(0),
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// FromEnv overlays environment settings on Default
func FromEnv() Config {
	def := Default()
	cfg := Config{
		ScratchRegs: env.Int(EnvScratchRegs, def.ScratchRegs),
		SavedRegs:   env.Int(EnvSavedRegs, def.SavedRegs),
		Workers:     env.Int(EnvWorkers, def.Workers),
		LogLevel:    env.Str(EnvLogLevel, def.LogLevel),
		LogFormat:   env.Str(EnvLogFormat, def.LogFormat),
		LogFile:     env.Str(EnvLogFile),
		LogDir:      env.Str(EnvLogDir),
		Debug:       env.Bool(EnvDebug),
	}
	return cfg.Validate()
}

// Validate clamps out-of-range settings
func (c Config) Validate() Config {
	c.ScratchRegs = min(max(c.ScratchRegs, 0), maxScratchRegs)
	c.SavedRegs = min(max(c.SavedRegs, 0), maxSavedRegs)
	c.Workers = max(c.Workers, 1)
	if c.LogFormat != "json" {
		c.LogFormat = "text"
	}
	return c
}

// RegAlloc returns the register pools selected by c
func (c Config) RegAlloc() *regalloc.Config {
	return regalloc.DefaultConfig().Limit(c.ScratchRegs, c.SavedRegs)
}

// Logger returns the logger settings selected by c
func (c Config) Logger() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(c.LogLevel)
	cfg.Format = c.LogFormat
	cfg.LogFile = c.LogFile
	return cfg
}

// InitLogging sets up the global logger. Debug wins over LogDir, which wins
// over the level, format and file settings.
func (c Config) InitLogging() error {
	switch {
	case c.Debug:
		logger.InitDev()
		return nil
	case c.LogDir != "":
		return logger.InitProd(c.LogDir)
	}
	return logger.Init(c.Logger())
}

func (c Config) String() string {
	return fmt.Sprintf("scratch=%d saved=%d workers=%d log=%s/%s debug=%t",
		c.ScratchRegs, c.SavedRegs, c.Workers, c.LogLevel, c.LogFormat, c.Debug)
}
