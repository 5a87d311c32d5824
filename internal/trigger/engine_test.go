package trigger

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapResolver is a minimal Resolver for tests.
type mapResolver map[string]Implementation

func (m mapResolver) Lookup(ns model.Namespace, name string) (Implementation, bool) {
	impl, ok := m[string(ns)+"/"+name]
	return impl, ok
}

// recorder returns a resolver whose implementations append their name to
// calls and echo their content back.
func recorder(calls *[]string, names ...string) mapResolver {
	m := mapResolver{}
	for _, n := range names {
		n := n
		m[n] = func(_ context.Context, content value.Value, _ *Context) (value.Value, error) {
			*calls = append(*calls, n)
			return content, nil
		}
	}
	return m
}

func action(name string, order float64) model.Trigger {
	return model.Trigger{Namespace: model.NamespaceAction, Name: name, Order: order, HasOrder: true}
}

func TestExecuteTriggers_Order(t *testing.T) {
	t.Parallel()

	var calls []string
	e := New(recorder(&calls, "action/a", "action/b", "action/c", "action/d"))

	report := e.ExecuteTriggers(context.Background(), []model.Trigger{
		action("a", 2),
		action("b", 1),
		{Namespace: model.NamespaceAction, Name: "c"},
		action("d", 1),
	}, nil)

	assert.Equal(t, []string{"c", "b", "d", "a"}, calls, "missing order is 0 and ties keep declared order")
	require.Len(t, report.Results, 4)
	assert.Equal(t, "c", report.Results[0].Trigger.Name)
	assert.True(t, report.OK())
	assert.NotEmpty(t, report.BatchID)
}

func TestExecuteTriggers_Isolation(t *testing.T) {
	t.Parallel()

	var calls []string
	r := recorder(&calls, "action/y")
	r["action/x"] = func(context.Context, value.Value, *Context) (value.Value, error) {
		return value.Null(), errors.New("boom")
	}
	r["action/p"] = func(context.Context, value.Value, *Context) (value.Value, error) {
		panic("kaboom")
	}

	report := New(r).ExecuteTriggers(context.Background(), []model.Trigger{
		action("x", 0), action("p", 0), action("missing", 0), action("y", 0),
	}, nil)

	assert.Equal(t, []string{"y"}, calls)
	require.Len(t, report.Results, 4)

	var execErr *ExecutionError
	require.True(t, errors.As(report.Results[0].Err, &execErr))
	assert.Equal(t, "trigger action/x failed: boom", execErr.Error())

	require.True(t, errors.As(report.Results[1].Err, &execErr))
	assert.Contains(t, execErr.Error(), "panic: kaboom")

	var loadErr *LoadError
	require.True(t, errors.As(report.Results[2].Err, &loadErr))
	assert.Equal(t, "missing", loadErr.Name)

	assert.True(t, report.Results[3].OK())
	assert.False(t, report.OK())
	assert.Len(t, report.Failed(), 3)
	assert.ErrorContains(t, report.Err(), "boom")
}

func TestExecute_ContentDecoding(t *testing.T) {
	t.Parallel()

	var got value.Value
	e := New(mapResolver{"action/capture": func(_ context.Context, content value.Value, _ *Context) (value.Value, error) {
		got = content
		return value.Null(), nil
	}})

	tests := []struct {
		name string
		in   value.Value
		want value.Value
	}{
		{"json object", value.String(`{"k":1}`), value.MustFromGo(map[string]any{"k": 1})},
		{"json array", value.String(` [1, "a"] `), value.MustFromGo([]any{1, "a"})},
		{"plain text", value.String("foo"), value.String("foo")},
		{"broken json", value.String(`{"k":`), value.String(`{"k":`)},
		{"numeric text", value.String("42"), value.String("42")},
		{"structured", value.MustFromGo(map[string]any{"a": true}), value.MustFromGo(map[string]any{"a": true})},
	}
	for _, tc := range tests {
		_, err := e.ExecuteAction(context.Background(), "capture", tc.in, nil)
		require.NoError(t, err, tc.name)
		assert.True(t, tc.want.Equal(got), "%s: got %s", tc.name, got.Text())
	}
}

func TestExecute_LoadErrors(t *testing.T) {
	t.Parallel()

	e := New(mapResolver{})

	_, err := e.ExecuteClass(context.Background(), "onLoad", "Grid", nil)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "failed to load trigger class/onLoad: no implementation registered", err.Error())

	_, err = e.Execute(context.Background(), "job", "x", value.Null(), nil)
	assert.EqualError(t, err, "failed to load trigger job/x: unknown trigger type 'job'")

	_, err = New(nil).ExecuteAction(context.Background(), "x", value.Null(), nil)
	assert.True(t, errors.As(err, &loadErr))
}

func TestExecute_ContextCarriesEngine(t *testing.T) {
	t.Parallel()

	var inner []string
	r := recorder(&inner, "action/child")
	r["action/parent"] = func(ctx context.Context, _ value.Value, ec *Context) (value.Value, error) {
		return ec.Engine.ExecuteAction(ctx, "child", value.String("from parent"), ec)
	}

	res, err := New(r).ExecuteAction(context.Background(), "parent", value.Null(), nil)
	require.NoError(t, err)
	assert.Equal(t, value.String("from parent"), res)
	assert.Equal(t, []string{"child"}, inner)
}

func TestExecuteTriggers_DataRouting(t *testing.T) {
	t.Parallel()

	r := mapResolver{
		"action/fetchMany": func(context.Context, value.Value, *Context) (value.Value, error) {
			return value.MustFromGo(map[string]any{
				"componentId": "grid",
				"data":        []any{map[string]any{"id": 1}, map[string]any{"id": 2}},
			}), nil
		},
		"action/fetchOne": func(context.Context, value.Value, *Context) (value.Value, error) {
			return value.MustFromGo(map[string]any{"componentId": "form", "data": map[string]any{"id": 3}}), nil
		},
		"action/noData": func(context.Context, value.Value, *Context) (value.Value, error) {
			return value.MustFromGo(map[string]any{"componentId": "x"}), nil
		},
	}

	stored := map[string]int{}
	ec := &Context{SetData: func(id string, records []value.Value) { stored[id] = len(records) }}
	report := New(r).ExecuteTriggers(context.Background(), []model.Trigger{
		action("fetchMany", 0), action("fetchOne", 0), action("noData", 0),
	}, ec)

	assert.True(t, report.OK())
	assert.Equal(t, map[string]int{"grid": 2, "form": 1}, stored)

	// Without a setter the result is still reported.
	report = New(r).ExecuteTriggers(context.Background(), []model.Trigger{action("fetchOne", 0)}, nil)
	assert.True(t, report.OK())
}

func TestExecuteTriggers_Continuations(t *testing.T) {
	t.Parallel()

	t.Run("onSuccess receives the last response", func(t *testing.T) {
		var response value.Value
		var nested map[string][]model.Trigger
		r := mapResolver{
			"action/save": func(context.Context, value.Value, *Context) (value.Value, error) {
				return value.String("saved"), nil
			},
			"action/notify": func(_ context.Context, _ value.Value, ec *Context) (value.Value, error) {
				response = ec.Response
				nested = ec.WorkflowTriggers
				return value.Null(), nil
			},
		}
		onSubmit := []model.Trigger{action("save", 0)}
		ec := &Context{WorkflowTriggers: map[string][]model.Trigger{
			"onSubmit":  onSubmit,
			"onSuccess": {action("notify", 0)},
			"onError":   {action("missing", 0)},
		}}

		report := New(r).ExecuteTriggers(context.Background(), onSubmit, ec)
		assert.Equal(t, "onSuccess", report.Continuation)
		require.Len(t, report.ContinuationResults, 1)
		assert.Equal(t, value.String("saved"), response)
		assert.Nil(t, nested, "continuations cannot recurse")
		assert.NotNil(t, ec.WorkflowTriggers, "the caller's context is untouched")
	})

	t.Run("onError receives the last failure", func(t *testing.T) {
		var seen error
		r := mapResolver{
			"action/report": func(_ context.Context, _ value.Value, ec *Context) (value.Value, error) {
				seen = ec.Error
				return value.Null(), nil
			},
		}
		ec := &Context{WorkflowTriggers: map[string][]model.Trigger{
			"onSuccess": {action("never", 0)},
			"onError":   {action("report", 0)},
		}}

		report := New(r).ExecuteTriggers(context.Background(), []model.Trigger{action("missing", 0)}, ec)
		assert.Equal(t, "onError", report.Continuation)
		var loadErr *LoadError
		assert.True(t, errors.As(seen, &loadErr))
		assert.Len(t, report.Failed(), 1)
	})

	t.Run("empty batch runs nothing", func(t *testing.T) {
		ec := &Context{WorkflowTriggers: map[string][]model.Trigger{"onSuccess": {action("x", 0)}}}
		report := New(mapResolver{}).ExecuteTriggers(context.Background(), nil, ec)
		assert.Empty(t, report.Results)
		assert.Empty(t, report.Continuation)
	})
}

func TestResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	ok, err := Result{Trigger: action("a", 1), Result: value.String("done")}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"trigger":{"namespace":"action","name":"a","order":1},"success":true,"result":"done"}`, string(ok))

	failed, err := Result{Trigger: action("b", 0), Err: errors.New("nope")}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"trigger":{"namespace":"action","name":"b"},"success":false,"error":"nope"}`, string(failed))
}
