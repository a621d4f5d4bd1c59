package forkwork

import (
	"os"

	"github.com/kelseyhightower/envconfig"
)

// Environment variables carried across the launcher/worker exec boundary.
const (
	envWorkerMode = "FORKWORK_WORKER_MODE"
	envWorkName   = "FORKWORK_WORK"
	envFrameSize  = "FORKWORK_FRAME_SIZE"
	envArgs       = "FORKWORK_ARGS"
	envRunID      = "FORKWORK_RUN_ID"
)

// channelFd is the descriptor number at which a worker process inherits its
// channel half (first ExtraFiles slot after stdio).
const channelFd = 3

// Config holds environment-derived defaults for new orchestrators.
type Config struct {
	FrameSize int  `envconfig:"FRAME_SIZE" default:"1024"`
	Debug     bool `envconfig:"DEBUG" default:"false"`
}

// EnvDefaults loads orchestrator defaults from FORKWORK_* environment
// variables. Unset variables fall back to the struct defaults.
func EnvDefaults() (Config, error) {
	var c Config
	if err := envconfig.Process("forkwork", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// inWorkerProcess reports whether this process was spawned by an
// orchestrator's Run.
func inWorkerProcess() bool {
	return os.Getenv(envWorkerMode) != ""
}
