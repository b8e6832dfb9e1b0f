package app

import (
	"github.com/vk/actorgrid/internal/control"
	"github.com/vk/actorgrid/internal/registry"
	"github.com/vk/actorgrid/modules/exec"
	"github.com/vk/actorgrid/modules/http"
	"github.com/vk/actorgrid/modules/socketio"
	"github.com/vk/actorgrid/modules/standard"
)

// coreModules is the definitive list of all modules that are compiled into
// the actorgrid binary.
var coreModules = []registry.Module{
	control.Module{},
	standard.Module{},
	exec.Module{},
	http.Module{},
	socketio.Module{},
}

// CoreModules returns a copy of the compiled-in modules, for callers that
// register extra modules next to them.
func CoreModules() []registry.Module {
	return append([]registry.Module(nil), coreModules...)
}
