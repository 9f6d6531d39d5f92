package main

import (
	"os"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"land-backend/internal/config"
	"land-backend/internal/db"
)

// commandContext loads config and opens the pool on first use so that
// commands like --help never touch the database.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config

	poolOnce sync.Once
	pool     *pgxpool.Pool
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() *config.Config {
	c.configOnce.Do(func() {
		if c.configFlag != nil {
			if path := strings.TrimSpace(*c.configFlag); path != "" {
				os.Setenv("LAND_CONFIG", path)
			}
		}
		c.config = config.LoadForTools()
	})
	return c.config
}

func (c *commandContext) ensurePool() *pgxpool.Pool {
	c.poolOnce.Do(func() {
		c.pool = db.Connect(c.ensureConfig())
	})
	return c.pool
}

func (c *commandContext) logger() *logrus.Logger {
	cfg := c.ensureConfig()
	return config.NewLogger(cfg.Log.Level, "text")
}

func (c *commandContext) close() {
	if c.pool != nil {
		c.pool.Close()
	}
}
