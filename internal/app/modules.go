package app

import (
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/modules/demo"
	"github.com/vk/taskgrid/modules/numbers"
)

// coreModules is the definitive list of all modules that are compiled into
// the taskgrid binary.
var coreModules = []registry.Module{
	&demo.Module{},
	&numbers.Module{},
}
