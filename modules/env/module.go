package env

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/specialistvlad/pagegridgo/internal/registry"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input selects the variables to load. A bare string content is a prefix; an
// array content is a list of names.
type Input struct {
	Names  []string `json:"names"`
	Prefix string   `json:"prefix"`
}

func parseInput(content value.Value) (*Input, error) {
	in := &Input{}
	switch content.Kind() {
	case value.KindNull:
	case value.KindString:
		in.Prefix, _ = content.AsString()
	case value.KindArray:
		if err := content.Decode(&in.Names); err != nil {
			return nil, fmt.Errorf("names must be strings: %w", err)
		}
	case value.KindObject:
		if err := content.Decode(in); err != nil {
			return nil, fmt.Errorf("invalid loadEnv content: %w", err)
		}
	default:
		return nil, fmt.Errorf("loadEnv content must be a prefix, a list of names or an object, got %s", content.Kind())
	}
	return in, nil
}

// LoadEnv is the 'loadEnv' action. It copies the selected environment
// variables into the context value store and returns them. With neither
// names nor a prefix, every variable is loaded.
func LoadEnv(ctx context.Context, content value.Value, ec *trigger.Context) (value.Value, error) {
	in, err := parseInput(content)
	if err != nil {
		return value.Null(), err
	}
	if ec == nil || ec.Values == nil {
		return value.Null(), fmt.Errorf("no context value store")
	}

	loaded := make(map[string]value.Value)
	if len(in.Names) > 0 {
		for _, name := range in.Names {
			if v, ok := os.LookupEnv(name); ok {
				loaded[name] = value.String(v)
			}
		}
	} else {
		for _, e := range os.Environ() {
			pair := strings.SplitN(e, "=", 2)
			if len(pair) == 2 && strings.HasPrefix(pair[0], in.Prefix) {
				loaded[pair[0]] = value.String(pair[1])
			}
		}
	}

	for k, v := range loaded {
		ec.Values.Set(k, v)
	}
	return value.Object(loaded), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("loadEnv", LoadEnv)
}
