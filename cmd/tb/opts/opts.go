package opts

import (
	"github.com/walteh/tb/pkg/config"
	"github.com/walteh/tb/pkg/log"
	"github.com/walteh/tb/pkg/operation"
)

// RootOpts contains shared options used by all commands.
// The root command fills it in before any subcommand runs.
type RootOpts struct {
	Config   *config.Config
	Operator operation.Operator
	Logger   *log.Logger
}
