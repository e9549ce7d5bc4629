package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mmcdole/swipetrack/internal/adapter"
	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/session"
)

// commandContext lazily loads configuration and logging shared by every command
type commandContext struct {
	configOnce sync.Once
	config     *adapter.Config
	configErr  error

	logger    *slog.Logger
	logCloser io.Closer
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*adapter.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := adapter.LoadConfig()
		if err != nil {
			c.configErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		c.config = cfg

		logger, closer, err := adapter.SetupLogger(&cfg.Logging)
		if err != nil {
			// Fall back to null logger if file logging fails
			logger = adapter.NullLogger()
		}
		c.logger = logger
		c.logCloser = closer
		slog.SetDefault(logger)
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *slog.Logger {
	if c.logger == nil {
		return adapter.NullLogger()
	}
	return c.logger
}

func (c *commandContext) close() {
	if c.logCloser != nil {
		c.logCloser.Close()
	}
}

func (c *commandContext) identity() (*session.Identity, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return session.NewIdentity(cfg), nil
}

// openSession opens the saved user's session. Unless offline, the remote
// records are merged in before returning.
func (c *commandContext) openSession(ctx context.Context, offline bool) (*session.Session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	username, ok := session.NewIdentity(cfg).Username()
	if !ok {
		return nil, fmt.Errorf("%w: run `swipetrack login <username>` first", domain.ErrNoSession)
	}
	s, err := session.Open(cfg, username, c.log())
	if err != nil {
		return nil, err
	}
	if offline {
		s.Sync().LoadLocal()
		return s, nil
	}
	res := s.Start(ctx)
	c.log().Info("session loaded", "username", username, "fetched", res.Fetched, "total", res.Total)
	return s, nil
}
