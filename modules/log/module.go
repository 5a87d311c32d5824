package log

import (
	"context"

	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/registry"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Log is the 'log' action. It logs its content, one attribute per field for
// objects, and passes the content through as its result.
func Log(ctx context.Context, content value.Value, ec *trigger.Context) (value.Value, error) {
	logger := ctxlog.FromContext(ctx)
	if ec != nil && ec.ComponentID != "" {
		logger = logger.With("component_id", ec.ComponentID)
	}

	if !content.IsObject() {
		text := content.Text()
		if content.IsNull() {
			text = "(null)"
		}
		logger.Info("Log trigger", "content", text)
		return content, nil
	}

	// Keys are sorted for consistent output.
	attrs := make([]any, 0, 2*content.Len())
	for _, k := range content.Keys() {
		f, _ := content.Get(k)
		attrs = append(attrs, k, f.Text())
	}
	logger.Info("Log trigger", attrs...)
	return content, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("log", Log)
}
