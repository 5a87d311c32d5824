package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
)

// Module is the interface that all trigger modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Key identifies an implementation.
type Key struct {
	Namespace model.Namespace
	Name      string
}

func (k Key) String() string {
	return string(k.Namespace) + "/" + k.Name
}

// Registry holds the trigger implementations of a single application
// instance.
type Registry struct {
	mu    sync.RWMutex
	impls map[Key]trigger.Implementation
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{impls: make(map[Key]trigger.Implementation)}
}

// Install registers every module in order.
func (r *Registry) Install(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Register adds an implementation. Registering the same key twice, or an
// unknown namespace, is a programming error and panics.
func (r *Registry) Register(ns model.Namespace, name string, impl trigger.Implementation) {
	if !ns.Valid() {
		panic(fmt.Sprintf("invalid trigger namespace '%s' for '%s'", ns, name))
	}
	if impl == nil {
		panic(fmt.Sprintf("trigger implementation %s/%s is nil", ns, name))
	}

	key := Key{Namespace: ns, Name: name}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.impls[key]; exists {
		panic(fmt.Sprintf("trigger implementation '%s' already registered", key))
	}
	slog.Debug("Registering trigger implementation.", "namespace", ns, "name", name)
	r.impls[key] = impl
}

// RegisterAction registers an implementation in the action namespace.
func (r *Registry) RegisterAction(name string, impl trigger.Implementation) {
	r.Register(model.NamespaceAction, name, impl)
}

// RegisterClass registers an implementation in the class namespace.
func (r *Registry) RegisterClass(name string, impl trigger.Implementation) {
	r.Register(model.NamespaceClass, name, impl)
}

// Lookup implements trigger.Resolver.
func (r *Registry) Lookup(ns model.Namespace, name string) (trigger.Implementation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	impl, ok := r.impls[Key{Namespace: ns, Name: name}]
	return impl, ok
}

// Keys returns the registered keys sorted by namespace, then name.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]Key, 0, len(r.impls))
	for k := range r.impls {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Namespace != keys[j].Namespace {
			return keys[i].Namespace < keys[j].Namespace
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}
