package app

import (
	"github.com/specialistvlad/pagegridgo/internal/registry"
	"github.com/specialistvlad/pagegridgo/modules/env"
	"github.com/specialistvlad/pagegridgo/modules/http"
	"github.com/specialistvlad/pagegridgo/modules/log"
	"github.com/specialistvlad/pagegridgo/modules/socketio"
	"github.com/specialistvlad/pagegridgo/modules/state"
)

// coreModules returns the trigger modules compiled into the pagegridgo
// binary. Modules hold per-instance state, so each App gets fresh ones.
func coreModules() []registry.Module {
	return []registry.Module{
		&log.Module{},
		&env.Module{},
		&state.Module{},
		&http.Module{},
		&socketio.Module{},
	}
}
