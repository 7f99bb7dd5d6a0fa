package maincmd

import (
	"github.com/caarlos0/env/v6"

	"github.com/lorelei-lang/lorelei/lang/machine"
)

// RunConfig holds the knobs an embedder can tune through the environment
// rather than flags: a thread's step/call-depth/GC budget. run and repl
// both apply it to every machine.Thread they create.
type RunConfig struct {
	MaxSteps     uint64 `env:"LOREL_MAX_STEPS"`
	MaxCallDepth int    `env:"LOREL_MAX_CALL_DEPTH" envDefault:"2000"`
	GCEvery      int    `env:"LOREL_GC_EVERY"`
}

// LoadRunConfig reads RunConfig from the process environment.
func LoadRunConfig() (RunConfig, error) {
	var cfg RunConfig
	if err := env.Parse(&cfg); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// Apply installs the configured limits on th, leaving a zero-valued field
// at th's own default (env.Parse's envDefault already covers MaxCallDepth).
func (cfg RunConfig) Apply(th *machine.Thread) {
	if cfg.MaxSteps > 0 {
		th.MaxSteps = cfg.MaxSteps
	}
	if cfg.MaxCallDepth > 0 {
		th.MaxCallDepth = cfg.MaxCallDepth
	}
	if cfg.GCEvery > 0 {
		th.GCEvery = cfg.GCEvery
	}
}
