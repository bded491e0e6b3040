package sswave

import (
	"fmt"
	"runtime"
)

// Logger is an optional logging interface that can be provided to a Codec.
//
// Example with the standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...any) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...any)  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...any) { log.Println(msg, kv) }
//
//	codec, err := sswave.New(sswave.WithLogger(&StdLogger{}))
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Config holds the codec configuration.
type Config struct {
	// Layout locates names and waveforms inside the image.
	Layout Layout

	// Workers bounds the number of goroutines used by DecodeBank.
	// 1 decodes sequentially.
	Workers int

	// SampleRate is attached to exported artifacts.
	SampleRate int

	// Logger receives progress and per-item failures (optional).
	Logger Logger
}

// DefaultConfig returns the configuration for stock firmware images.
func DefaultConfig() Config {
	return Config{
		Layout:     DefaultLayout(),
		Workers:    runtime.NumCPU(),
		SampleRate: ExportSampleRate,
		Logger:     nopLogger{},
	}
}

// Option is a functional option for configuring a Codec.
type Option func(*Config)

// WithLayout decodes against an alternate layout.
func WithLayout(layout Layout) Option {
	return func(c *Config) {
		c.Layout = layout
	}
}

// WithWorkers sets the number of goroutines used to decode a bank.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithSampleRate overrides the sample rate attached to exported artifacts.
func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

// WithLogger sets a logger for codec operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// Codec decodes and encodes wavetables for one firmware layout. A Codec
// holds no image state and is safe for concurrent use.
type Codec struct {
	cfg Config
}

// New creates a codec from the default configuration and the given options.
func New(opts ...Option) (*Codec, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Layout.Validate(); err != nil {
		return nil, err
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", cfg.SampleRate)
	}

	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}

	return &Codec{cfg: cfg}, nil
}

// Config returns a copy of the codec configuration.
func (c *Codec) Config() Config {
	return c.cfg
}

// Layout returns the layout the codec decodes against.
func (c *Codec) Layout() Layout {
	return c.cfg.Layout
}
