package internal

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/snapcurator/internal/request"
)

// NewClient builds the backend client described by cfg and stores its
// session cookie, if any.
func NewClient(cfg BackendConfig, logger *slog.Logger, opts ...request.Option) (*request.Client, error) {
	base := []request.Option{
		request.WithLogger(logger),
		request.WithTimeout(cfg.Timeout),
	}
	c, err := request.NewClient(cfg.BaseURL, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}
	if cfg.SessionCookie != "" {
		c.SetSession(cfg.CookieName, cfg.SessionCookie)
	}
	return c, nil
}

// NewLogger creates the JSON logger used by every command.
func NewLogger(cfg ApplicationConfig, out io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel}))
}
