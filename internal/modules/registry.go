package modules

import (
	"fmt"
	"slices"
	"sort"

	"git.home.luguber.info/inful/attackbuild/internal/foundation/normalization"
)

// Registry holds the menu and run pool views over registered modules.
type Registry struct {
	menu    []Descriptor
	runPool []Descriptor
	keys    map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{keys: make(map[string]struct{})}
}

// Register adds a module to both views, keeping each view sorted by priority.
// Modules with equal priority keep registration order. Registering the same
// name twice (case-insensitively) or a module without an action is an error.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("module name is required")
	}
	if d.Run == nil {
		return fmt.Errorf("module %s has no action", d.Name)
	}
	key := d.Key()
	if _, dup := r.keys[key]; dup {
		return fmt.Errorf("module %s already registered", d.Name)
	}
	r.keys[key] = struct{}{}

	r.runPool = insertByPriority(r.runPool, d)
	if d.MenuVisible {
		r.menu = insertByPriority(r.menu, d)
	}
	return nil
}

// MustRegister is Register for static registration tables.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

func insertByPriority(list []Descriptor, d Descriptor) []Descriptor {
	i := sort.Search(len(list), func(i int) bool { return list[i].Priority > d.Priority })
	return slices.Insert(list, i, d)
}

// RunPool returns a copy of the modules scheduled to run, in order.
func (r *Registry) RunPool() []Descriptor {
	return slices.Clone(r.runPool)
}

// Menu returns a copy of the menu view, in order.
func (r *Registry) Menu() []Descriptor {
	return slices.Clone(r.menu)
}

// Names returns the names of the run pool in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.runPool))
	for i, d := range r.runPool {
		names[i] = d.Name
	}
	return names
}

// RemoveFromBuild narrows both views to the selected modules. Selection
// names are compared with descriptor names case-insensitively. Names that
// match no module are ignored; an empty selection empties both views.
func (r *Registry) RemoveFromBuild(selection []string) {
	selected := make(map[string]struct{}, len(selection))
	for _, name := range selection {
		selected[normalization.Fold(name)] = struct{}{}
	}
	isSelected := func(d Descriptor) bool {
		_, ok := selected[d.Key()]
		return ok
	}

	r.runPool = filterDescriptors(r.runPool, isSelected)
	r.menu = filterDescriptors(r.menu, isSelected)
}

// filterDescriptors returns a new slice with the descriptors keep accepts,
// in their original order. The input slice is not modified.
func filterDescriptors(list []Descriptor, keep func(Descriptor) bool) []Descriptor {
	out := make([]Descriptor, 0, len(list))
	for _, d := range list {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}
