// Package settings resolves setting ids from changeset content to typed
// descriptors and carries each setting's capability requirement.
package settings

import (
	"sync"

	"glaze/api/internal/rbac"
)

// Descriptor describes a single registered setting.
type Descriptor struct {
	ID         string
	Capability rbac.Capability
	Transport  string // "refresh" or "postMessage"; informational only
}

// Registry holds the settings known to one working context. A registry is
// built fresh per context by running the configured registrars against it.
type Registry struct {
	mu   sync.RWMutex
	byID map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Descriptor)}
}

func (r *Registry) Add(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[d.ID] = d
}

// Lookup resolves a setting id. The second return reports whether the id is known.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	return d, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Registrar populates a registry when a working context is built.
type Registrar interface {
	Register(r *Registry)
}

// RegistrarFunc adapts a plain function to the Registrar interface.
type RegistrarFunc func(r *Registry)

func (f RegistrarFunc) Register(r *Registry) { f(r) }

// DefaultSiteSettings registers the core site identity and reading settings.
// Theme- or plugin-specific settings come from additional registrars.
func DefaultSiteSettings() Registrar {
	return RegistrarFunc(func(r *Registry) {
		for _, d := range []Descriptor{
			{ID: "blogname", Capability: rbac.CapEdit, Transport: "postMessage"},
			{ID: "blogdescription", Capability: rbac.CapEdit, Transport: "postMessage"},
			{ID: "show_on_front", Capability: rbac.CapEdit, Transport: "refresh"},
			{ID: "page_on_front", Capability: rbac.CapEdit, Transport: "refresh"},
			{ID: "posts_per_page", Capability: rbac.CapEdit, Transport: "refresh"},
			{ID: "site_icon", Capability: rbac.CapManageOptions, Transport: "postMessage"},
			{ID: "custom_css", Capability: rbac.CapManageOptions, Transport: "postMessage"},
		} {
			r.Add(d)
		}
	})
}
