package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/dag"
	"github.com/specialistvlad/pagegridgo/internal/datastore"
	"github.com/specialistvlad/pagegridgo/internal/discovery"
	"github.com/specialistvlad/pagegridgo/internal/modal"
	"github.com/specialistvlad/pagegridgo/internal/pageconfig"
	"github.com/specialistvlad/pagegridgo/internal/registry"
	"github.com/specialistvlad/pagegridgo/internal/render"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// App encapsulates the application's dependencies, configuration, and
// session state.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	engine   *trigger.Engine

	store  *datastore.Store
	values *datastore.Values
	modals *modal.Set

	mu     sync.RWMutex
	result *discovery.Result
	graph  *dag.Graph
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// With no modules, the core modules are installed. Registering the same
// trigger twice panics.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules()
	}
	reg.Install(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "triggers", len(reg.Keys()))

	store := datastore.New()
	store.Subscribe(func(componentID string) {
		logger.Debug("Component data changed", "component_id", componentID, "records", len(store.Get(componentID)))
	})

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		engine:   trigger.New(reg),
		store:    store,
		values:   datastore.NewValues(),
		modals:   modal.NewSet(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Store returns the session DataStore.
func (a *App) Store() *datastore.Store {
	return a.store
}

// Modals returns the session's open-modal set.
func (a *App) Modals() *modal.Set {
	return a.modals
}

func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

func (a *App) policy() pageconfig.MatchPolicy {
	return pageconfig.MatchPolicy(a.config.MatchPolicy)
}

// Discover walks the definition tree and caches the result for later
// generation.
func (a *App) Discover(ctx context.Context) (*discovery.Result, error) {
	ctx = a.withLogger(ctx)
	res, err := discovery.Discover(ctx, a.config.RootPath, discovery.Options{
		Include: a.config.Include,
		Exclude: a.config.Exclude,
	})
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.result = res
	a.graph = nil
	a.mu.Unlock()
	return res, nil
}

// discovered returns the cached discovery result, discovering on first use.
func (a *App) discovered(ctx context.Context) (*discovery.Result, error) {
	a.mu.RLock()
	res := a.result
	a.mu.RUnlock()
	if res != nil {
		return res, nil
	}
	return a.Discover(ctx)
}

// ReferenceGraph returns the resolved parent to component graph of the
// discovered definitions. It is rebuilt after each discovery.
func (a *App) ReferenceGraph(ctx context.Context) (*dag.Graph, error) {
	res, err := a.discovered(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.graph != nil && a.result == res {
		return a.graph, nil
	}
	cm, _ := pageconfig.Resolver{Policy: a.policy()}.Resolve(a.withLogger(ctx), res.Definitions, res.Dependencies)
	g := pageconfig.ReferenceGraph(res.Definitions, cm)
	a.logger.Debug("Reference graph built", "nodes", g.Len())
	if a.result == res {
		a.graph = g
	}
	return g, nil
}

// References lists the definitions name uses and the ones that use it.
type References struct {
	Name   string   `json:"name"`
	Uses   []string `json:"uses"`
	UsedBy []string `json:"usedBy"`
}

// References reports the direct references of one definition.
func (a *App) References(ctx context.Context, name string) (References, error) {
	g, err := a.ReferenceGraph(ctx)
	if err != nil {
		return References{}, err
	}
	uses, err := g.Dependencies(name)
	if err != nil {
		return References{}, fmt.Errorf("eventType '%s' not found", name)
	}
	usedBy, err := g.Dependents(name)
	if err != nil {
		return References{}, fmt.Errorf("eventType '%s' not found", name)
	}
	return References{Name: name, Uses: uses, UsedBy: usedBy}, nil
}

// Session returns the session state: DataStore records, context values and
// open modals.
func (a *App) Session() value.Value {
	modals := a.modals.IDs()
	ids := make([]value.Value, 0, len(modals))
	for _, id := range modals {
		ids = append(ids, value.String(id))
	}
	return value.Object(map[string]value.Value{
		"data":       a.store.Snapshot(),
		"values":     a.values.Snapshot(),
		"openModals": value.Array(ids...),
	})
}

// Generate builds the page config for primary.
func (a *App) Generate(ctx context.Context, primary string) (*pageconfig.PageConfig, error) {
	res, err := a.discovered(ctx)
	if err != nil {
		return nil, err
	}
	return pageconfig.Generate(a.withLogger(ctx), res, primary, a.policy())
}

// GenerateAll writes the page config of every container definition to the
// output directory and returns the written paths.
func (a *App) GenerateAll(ctx context.Context) ([]string, error) {
	res, err := a.discovered(ctx)
	if err != nil {
		return nil, err
	}
	format, err := pageconfig.ParseFormat(a.config.OutputFormat)
	if err != nil {
		return nil, err
	}

	var containers []string
	for name, def := range res.Definitions {
		if def.IsContainer() {
			containers = append(containers, name)
		}
	}
	sort.Strings(containers)

	var paths []string
	var errs []error
	for _, name := range containers {
		pc, err := pageconfig.Generate(a.withLogger(ctx), res, name, a.policy())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		path, err := pageconfig.Write(pc, a.config.OutputDir, format)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, path)
	}
	a.logger.Info("Page configs written", "count", len(paths), "dir", a.config.OutputDir)
	return paths, errors.Join(errs...)
}

// Validate generates and validates the page config for primary. Triggers
// without a registered implementation are added as warnings. A missing
// primary is reported as a violation, not an error.
func (a *App) Validate(ctx context.Context, primary string) (pageconfig.Report, error) {
	res, err := a.discovered(ctx)
	if err != nil {
		return pageconfig.Report{}, err
	}

	pc, err := pageconfig.Generate(a.withLogger(ctx), res, primary, a.policy())
	var missing *pageconfig.MissingPrimaryError
	switch {
	case errors.As(err, &missing):
		pc = &pageconfig.PageConfig{PrimaryEventType: primary, EventTypes: res.Definitions}
	case err != nil:
		return pageconfig.Report{}, err
	}

	report := pageconfig.Validate(pc)
	return report.WithWarnings(a.registry.CheckDefinitions(a.withLogger(ctx), res.Definitions)...), nil
}

// ValidateDefinition checks one definition against the grid standards.
func (a *App) ValidateDefinition(ctx context.Context, name string) (pageconfig.Report, error) {
	res, err := a.discovered(ctx)
	if err != nil {
		return pageconfig.Report{}, err
	}
	def, ok := res.Definitions[name]
	if !ok {
		return pageconfig.Report{}, fmt.Errorf("eventType '%s' not found", name)
	}
	return pageconfig.ValidateDefinition(def), nil
}

func (a *App) context() *trigger.Context {
	return &trigger.Context{
		Values:     a.values,
		SetData:    a.store.Set,
		AppendData: a.store.Append,
		Modals:     a.modals,
		Engine:     a.engine,
	}
}

// ExecAction runs a single action against the session state.
func (a *App) ExecAction(ctx context.Context, name string, content value.Value) (value.Value, error) {
	ctx = a.withLogger(ctx)
	a.logger.Debug("Executing action", "action", name)
	return a.engine.ExecuteAction(ctx, name, content, a.context())
}

// Render mounts the page for primary, running its onLoad triggers, and
// renders the element tree. The mount report is nil when the page has no
// onLoad triggers.
func (a *App) Render(ctx context.Context, primary string) (*render.Element, *trigger.Report, error) {
	pc, err := a.Generate(ctx, primary)
	if err != nil {
		return nil, nil, err
	}
	ctx = a.withLogger(ctx)
	in := render.New(pc, a.engine, a.store, a.values, a.modals)
	report := in.Mount(ctx)
	return in.Render(ctx), report, nil
}
