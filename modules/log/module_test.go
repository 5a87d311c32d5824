package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/registry"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
	"github.com/specialistvlad/pagegridgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return ctxlog.WithLogger(context.Background(), logger), &buf
}

func TestLog(t *testing.T) {
	t.Parallel()

	t.Run("object fields become attributes", func(t *testing.T) {
		t.Parallel()
		ctx, buf := capture(t)
		content := value.MustFromGo(map[string]any{"b": 2, "a": "x"})

		out, err := Log(ctx, content, &trigger.Context{ComponentID: "OrderForm"})
		require.NoError(t, err)
		assert.True(t, out.Equal(content))
		assert.Contains(t, buf.String(), "component_id=OrderForm a=x b=2")
	})

	t.Run("null content", func(t *testing.T) {
		t.Parallel()
		ctx, buf := capture(t)

		out, err := Log(ctx, value.Null(), nil)
		require.NoError(t, err)
		assert.True(t, out.IsNull())
		assert.Contains(t, buf.String(), "content=(null)")
	})

	t.Run("scalar content", func(t *testing.T) {
		t.Parallel()
		ctx, buf := capture(t)

		_, err := Log(ctx, value.String("hello"), nil)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "content=hello")
	})
}

func TestRegister(t *testing.T) {
	t.Parallel()
	r := registry.New()
	r.Install(&Module{})

	_, ok := r.Lookup(model.NamespaceAction, "log")
	assert.True(t, ok)
}
