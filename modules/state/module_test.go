package state

import (
	"context"
	"testing"

	"github.com/specialistvlad/pagegridgo/internal/datastore"
	"github.com/specialistvlad/pagegridgo/internal/modal"
	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/registry"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
	"github.com/specialistvlad/pagegridgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	values := datastore.NewValues()
	ec := &trigger.Context{Values: values}

	_, err := SetVals(ctx, value.MustFromGo(map[string]any{"userId": "u1", "count": 3}), ec)
	require.NoError(t, err)

	got, ok := values.Get("userId")
	require.True(t, ok)
	assert.Equal(t, "u1", got.Text())

	_, err = SetVals(ctx, value.String("nope"), ec)
	require.EqualError(t, err, "setVals content must be an object, got string")

	_, err = SetVals(ctx, value.Object(nil), nil)
	require.EqualError(t, err, "no context value store")
}

func TestSetData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	content := value.MustFromGo(map[string]any{"componentId": "Grid", "data": []any{map[string]any{"id": 1}}})
	out, err := SetData(ctx, content, nil)
	require.NoError(t, err)
	assert.True(t, out.Equal(content))

	_, err = SetData(ctx, value.MustFromGo(map[string]any{"data": []any{}}), nil)
	require.EqualError(t, err, "setData content needs a componentId")

	_, err = SetData(ctx, value.MustFromGo(map[string]any{"componentId": "Grid"}), nil)
	require.EqualError(t, err, "setData content needs data")
}

func TestAppendData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := datastore.New()
	store.Set("Grid", []value.Value{value.MustFromGo(map[string]any{"id": 1})})
	ec := &trigger.Context{AppendData: store.Append}

	out, err := AppendData(ctx, value.MustFromGo(map[string]any{
		"componentId": "Grid",
		"data":        []any{map[string]any{"id": 2}, map[string]any{"id": 3}},
	}), ec)
	require.NoError(t, err)
	assert.Equal(t, value.Number(2), out)

	_, err = AppendData(ctx, value.MustFromGo(map[string]any{"componentId": "Grid", "data": map[string]any{"id": 4}}), ec)
	require.NoError(t, err)

	records := store.Get("Grid")
	require.Len(t, records, 4)
	id, _ := records[3].Get("id")
	assert.Equal(t, value.Number(4), id)

	_, err = AppendData(ctx, value.MustFromGo(map[string]any{"data": 1}), ec)
	require.EqualError(t, err, "appendData content needs a componentId")
	_, err = AppendData(ctx, value.MustFromGo(map[string]any{"componentId": "Grid"}), ec)
	require.EqualError(t, err, "appendData content needs data")
	_, err = AppendData(ctx, value.MustFromGo(map[string]any{"componentId": "Grid", "data": 1}), nil)
	require.EqualError(t, err, "no data appender in context")
}

func TestModalSignals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	modals := modal.NewSet()
	ec := &trigger.Context{Modals: modals}

	open := signal(modal.SignalOpen)
	closeModal := signal(modal.SignalClose)

	out, err := open(ctx, value.String("EditDialog"), ec)
	require.NoError(t, err)
	assert.Equal(t, "EditDialog", out.Text())
	assert.True(t, modals.IsOpen("EditDialog"))

	_, err = open(ctx, value.MustFromGo(map[string]any{"modalId": "Confirm"}), ec)
	require.NoError(t, err)
	assert.Equal(t, []string{"Confirm", "EditDialog"}, modals.IDs())

	_, err = closeModal(ctx, value.String("EditDialog"), ec)
	require.NoError(t, err)
	assert.False(t, modals.IsOpen("EditDialog"))

	_, err = open(ctx, value.Null(), ec)
	require.ErrorContains(t, err, "modal id missing")

	_, err = open(ctx, value.String("X"), &trigger.Context{})
	require.EqualError(t, err, "no modal set in context")
}

func TestClearData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var cleared []string
	ec := &trigger.Context{
		ComponentID: "OrderGrid",
		SetData: func(id string, records []value.Value) {
			assert.Nil(t, records)
			cleared = append(cleared, id)
		},
	}

	_, err := ClearData(ctx, value.String("CustomerGrid"), ec)
	require.NoError(t, err)
	_, err = ClearData(ctx, value.Null(), ec)
	require.NoError(t, err)
	assert.Equal(t, []string{"CustomerGrid", "OrderGrid"}, cleared)

	_, err = ClearData(ctx, value.String("X"), &trigger.Context{})
	require.EqualError(t, err, "no data setter in context")
}

func TestResetForm(t *testing.T) {
	t.Parallel()
	ec := &trigger.Context{FormData: value.MustFromGo(map[string]any{"name": "x"})}

	_, err := ResetForm(context.Background(), value.Null(), ec)
	require.NoError(t, err)
	assert.True(t, ec.FormData.IsNull())
}

func TestRegister(t *testing.T) {
	t.Parallel()
	r := registry.New()
	r.Install(&Module{})

	for _, name := range []string{"setVals", "setData", "appendData", "openModal", "closeModal"} {
		_, ok := r.Lookup(model.NamespaceAction, name)
		assert.True(t, ok, name)
	}
	for _, name := range []string{"clearData", "resetForm"} {
		_, ok := r.Lookup(model.NamespaceClass, name)
		assert.True(t, ok, name)
	}
}
