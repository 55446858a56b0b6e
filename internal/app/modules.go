package app

import (
	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
	"github.com/szhaofelicia/Basketball-GAN/modules/artifact"
	"github.com/szhaofelicia/Basketball-GAN/modules/env_vars"
	"github.com/szhaofelicia/Basketball-GAN/modules/eventstream"
	"github.com/szhaofelicia/Basketball-GAN/modules/http_client"
	"github.com/szhaofelicia/Basketball-GAN/modules/print"
	"github.com/szhaofelicia/Basketball-GAN/modules/run_log"
	"github.com/szhaofelicia/Basketball-GAN/modules/trainer"
)

// coreModules is the definitive list of all modules that are compiled into
// the trainctl binary.
var coreModules = []registry.Module{
	&trainer.Module{},
	&run_log.Module{},
	&artifact.Module{},
	&eventstream.Module{},
	&http_client.Module{},
	&env_vars.Module{},
	&print.Module{},
}
