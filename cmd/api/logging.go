package main

import (
	"os"
	"time"

	"NWord_Counter/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogging 设置全局 zerolog；未知级别回退到 info
func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
