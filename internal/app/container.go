package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/ochronus/goputiokit/internal/config"
	"github.com/ochronus/goputiokit/pkg/putio"
	"github.com/sirupsen/logrus"
)

// Container centralizes the core dependencies used across the application.
type Container struct {
	Config        *config.Config
	Logger        *logrus.Logger
	Session       *putio.Session
	Client        *putio.Client
	Transport     putio.Transport
	ValidateToken bool

	logFile *lumberjack.Logger
}

// Option allows customizing the container during construction.
type Option func(*Container) error

// WithLogger overrides the default logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Container) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.Logger = logger
		return nil
	}
}

// WithTransport overrides the live transport, e.g. with a mock.
func WithTransport(transport putio.Transport) Option {
	return func(c *Container) error {
		if transport == nil {
			return fmt.Errorf("transport cannot be nil")
		}
		c.Transport = transport
		return nil
	}
}

// WithTokenValidation enables or disables the account check on startup (default: enabled).
func WithTokenValidation(validate bool) Option {
	return func(c *Container) error {
		c.ValidateToken = validate
		return nil
	}
}

// NewContainer builds a Container with defaults derived from cfg.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	container := &Container{
		Config:        cfg,
		ValidateToken: true,
	}

	for _, opt := range opts {
		if err := opt(container); err != nil {
			return nil, err
		}
	}

	if container.Logger == nil {
		container.Logger, container.logFile = buildDefaultLogger(cfg.Loglevel, cfg.LogFile)
	}

	if container.Transport == nil {
		container.Transport = putio.NewLiveTransport(putio.LiveConfig{
			Timeout: cfg.Putio.Timeout,
			Logger:  container.Logger,
		})
	}

	sessionOpts := []putio.SessionOption{
		putio.WithTransport(container.Transport),
		putio.WithRouter(putio.Router{Base: cfg.Putio.BaseURL, UploadBase: cfg.Putio.UploadURL}),
	}
	if cfg.Putio.APIKey != "" {
		sessionOpts = append(sessionOpts, putio.WithToken(cfg.Putio.APIKey))
	}
	container.Session = putio.NewSession(sessionOpts...)
	container.Client = putio.NewClient(container.Session, putio.WithLogger(container.Logger))

	if container.ValidateToken && cfg.Putio.APIKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Putio.Timeout)
		defer cancel()
		res := <-container.Client.AccountInfo(ctx)
		if res.Err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to verify put.io API key: %w", res.Err)
		}
		container.Logger.Debugf("Authenticated as %s", res.Value.Username)
	}

	return container, nil
}

// Close releases the rotating log file, if any.
func (c *Container) Close() error {
	if c.logFile == nil {
		return nil
	}
	return c.logFile.Close()
}

func buildDefaultLogger(levelStr, logFile string) (*logrus.Logger, *lumberjack.Logger) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if logFile == "" {
		return logger, nil
	}

	rotating := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, rotating))
	return logger, rotating
}
