package main

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"dubline/internal/config"
	"dubline/internal/daemon"
	"dubline/internal/logging"
	"dubline/internal/services"
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

// withDaemon runs one CLI operation against a fully wired (but not started)
// daemon. Commands and the background process share the SQLite store; the
// daemon lock only guards lane processing.
func (c *commandContext) withDaemon(ctx context.Context, fn func(context.Context, *daemon.Daemon) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	d, err := daemon.Build(cfg, logging.NewNop())
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(services.WithRequestID(ctx, uuid.NewString()), d)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
