package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/value"
	"gopkg.in/yaml.v3"
)

type namedObject struct {
	name  string
	value value.Value
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func decodeYAML(ctx context.Context, path string, src []byte) ([]namedObject, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, err
	}
	return topLevelObjects(ctx, path, raw)
}

func decodeTOML(ctx context.Context, path string, src []byte) ([]namedObject, error) {
	var raw map[string]any
	if _, err := toml.NewDecoder(bytes.NewReader(src)).Decode(&raw); err != nil {
		return nil, err
	}
	return topLevelObjects(ctx, path, raw)
}

func decodeJSON(ctx context.Context, path string, src []byte) ([]namedObject, error) {
	v, err := value.ParseJSON(src)
	if err != nil {
		return nil, err
	}
	if !v.IsObject() {
		return nil, fmt.Errorf("top-level value must be an object, got %s", v.Kind())
	}
	return objectsOf(ctx, path, v), nil
}

// topLevelObjects treats each top-level key as a definition name.
func topLevelObjects(ctx context.Context, path string, raw map[string]any) ([]namedObject, error) {
	v, err := value.FromGo(raw)
	if err != nil {
		return nil, err
	}
	return objectsOf(ctx, path, v), nil
}

func objectsOf(ctx context.Context, path string, v value.Value) []namedObject {
	logger := ctxlog.FromContext(ctx)
	var out []namedObject
	for _, name := range v.Keys() {
		obj, _ := v.Get(name)
		if !obj.IsObject() {
			logger.Debug("Skipping non-object top-level value", "file_path", path, "key", name, "kind", obj.Kind().String())
			continue
		}
		out = append(out, namedObject{name: name, value: obj})
	}
	return out
}
