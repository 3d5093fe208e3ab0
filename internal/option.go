package internal

import "github.com/starford/infinity/internal/generator"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	generator generator.Provider
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithGenerator overrides the default procedural content generator.
func WithGenerator(gen generator.Provider) Option {
	return func(a *application) {
		a.generator = gen
	}
}
