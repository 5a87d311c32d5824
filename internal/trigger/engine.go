package trigger

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// Implementation is the compiled body of a trigger. It receives the decoded,
// template-resolved content and the batch context.
type Implementation func(ctx context.Context, content value.Value, ec *Context) (value.Value, error)

// Resolver finds the implementation registered for a trigger.
type Resolver interface {
	Lookup(ns model.Namespace, name string) (Implementation, bool)
}

// Engine dispatches triggers to their implementations. It holds no state of
// its own beyond the resolver, so one engine can serve many sessions.
type Engine struct {
	resolver Resolver
}

// New creates an engine that resolves implementations through r.
func New(r Resolver) *Engine {
	return &Engine{resolver: r}
}

// Execute runs a single trigger and returns its result. ec may be nil.
func (e *Engine) Execute(ctx context.Context, ns model.Namespace, name string, content value.Value, ec *Context) (value.Value, error) {
	if ec == nil {
		ec = &Context{}
	}
	if ec.Engine == nil {
		ec.Engine = e
	}
	logger := ctxlog.FromContext(ctx).With("trigger", string(ns)+"/"+name)

	resolved := ResolveTemplates(DecodeContent(content), ec)

	var impl Implementation
	ok := false
	if ns.Valid() && e.resolver != nil {
		impl, ok = e.resolver.Lookup(ns, name)
	}
	if !ok {
		err := &LoadError{Namespace: ns, Name: name}
		logger.Error("Trigger could not be loaded", "error", err)
		return value.Null(), err
	}

	logger.Debug("Executing trigger", "content", resolved.Text())
	result, err := invoke(ctx, impl, resolved, ec)
	if err != nil {
		logger.Error("Trigger failed", "error", err)
		return value.Null(), &ExecutionError{Namespace: ns, Name: name, Err: err}
	}
	logger.Debug("Trigger completed")
	return result, nil
}

func invoke(ctx context.Context, impl Implementation, content value.Value, ec *Context) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = value.Null()
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return impl(ctx, content, ec)
}

// ExecuteClass runs a class trigger with the component name as content.
func (e *Engine) ExecuteClass(ctx context.Context, className, componentName string, ec *Context) (value.Value, error) {
	return e.Execute(ctx, model.NamespaceClass, className, value.String(componentName), ec)
}

// ExecuteAction runs an action trigger.
func (e *Engine) ExecuteAction(ctx context.Context, name string, content value.Value, ec *Context) (value.Value, error) {
	return e.Execute(ctx, model.NamespaceAction, name, content, ec)
}

// ExecuteTriggers runs triggers as one batch. Every trigger is attempted; the
// report records a result or an error per trigger.
func (e *Engine) ExecuteTriggers(ctx context.Context, triggers []model.Trigger, ec *Context) *Report {
	if ec == nil {
		ec = &Context{}
	}
	if ec.Engine == nil {
		ec.Engine = e
	}

	report := &Report{BatchID: uuid.NewString(), Results: make([]Result, 0, len(triggers))}
	logger := ctxlog.FromContext(ctx).With("component", "trigger", "batch", report.BatchID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Executing trigger batch", "triggers", len(triggers))

	var last value.Value
	var lastErr error
	for _, t := range Sort(triggers) {
		res, err := e.Execute(ctx, t.Namespace, t.Name, t.EffectiveContent(), ec)
		report.Results = append(report.Results, Result{Trigger: t, Result: res, Err: err})
		if err != nil {
			lastErr = err
			continue
		}
		last = res
		routeData(ctx, res, ec)
	}

	if len(report.Results) == 0 {
		return report
	}

	var class string
	next := ec.continuation()
	switch {
	case lastErr != nil && len(ec.WorkflowTriggers["onError"]) > 0:
		class = "onError"
		next.Error = lastErr
	case lastErr == nil && len(ec.WorkflowTriggers["onSuccess"]) > 0:
		class = "onSuccess"
		next.Response = last
	default:
		return report
	}

	logger.Debug("Executing continuation", "class", class)
	report.Continuation = class
	report.ContinuationResults = e.ExecuteTriggers(ctx, ec.WorkflowTriggers[class], next).Results
	return report
}

// routeData stores a {componentId, data} result in the DataStore.
func routeData(ctx context.Context, res value.Value, ec *Context) {
	id := res.GetString("componentId")
	data, ok := res.Get("data")
	if id == "" || !ok || data.IsNull() {
		return
	}
	if ec.SetData == nil {
		ctxlog.FromContext(ctx).Warn("Cannot store data, no data setter in context", "component_id", id)
		return
	}
	records := data.Elements()
	if !data.IsArray() {
		records = []value.Value{data}
	}
	ctxlog.FromContext(ctx).Debug("Storing component data", "component_id", id, "records", len(records))
	ec.SetData(id, records)
}

// Sort returns a copy of triggers stable-sorted by order.
func Sort(triggers []model.Trigger) []model.Trigger {
	sorted := make([]model.Trigger, len(triggers))
	copy(sorted, triggers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}
