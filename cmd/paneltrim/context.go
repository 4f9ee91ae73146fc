package main

import (
	"log/slog"
	"strings"
	"sync"

	"paneltrim/internal/config"
	"paneltrim/internal/logging"
	"paneltrim/internal/queue"
	"paneltrim/internal/vision"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) withStore(fn func(*config.Config, *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func (c *commandContext) newLogger(cfg *config.Config) *slog.Logger {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// loadScanner builds a frame scanner from the persisted calibration profile.
func (c *commandContext) loadScanner(cfg *config.Config, profilePath string) (*vision.Scanner, error) {
	if strings.TrimSpace(profilePath) == "" {
		profilePath = cfg.ProfilePath()
	}
	profile, err := vision.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}
	return vision.NewScanner(profile)
}
