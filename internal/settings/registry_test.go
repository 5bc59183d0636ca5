package settings

import (
	"testing"

	"glaze/api/internal/rbac"
)

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	reg.Add(Descriptor{ID: "blogname", Capability: rbac.CapEdit})

	d, ok := reg.Lookup("blogname")
	if !ok {
		t.Fatalf("expected blogname to resolve")
	}
	if d.Capability != rbac.CapEdit {
		t.Fatalf("expected edit capability, got %s", d.Capability)
	}

	if _, ok := reg.Lookup("no_such_setting"); ok {
		t.Fatalf("unknown ids must not resolve")
	}
}

func TestDefaultSiteSettingsRegistrar(t *testing.T) {
	reg := NewRegistry()
	DefaultSiteSettings().Register(reg)

	if reg.Len() == 0 {
		t.Fatalf("expected default settings to be registered")
	}
	if _, ok := reg.Lookup("blogname"); !ok {
		t.Fatalf("blogname should be a default setting")
	}
	d, ok := reg.Lookup("custom_css")
	if !ok {
		t.Fatalf("custom_css should be a default setting")
	}
	if d.Capability != rbac.CapManageOptions {
		t.Fatalf("custom_css should require manage-options, got %s", d.Capability)
	}
}

func TestRegistrarsCompose(t *testing.T) {
	reg := NewRegistry()
	DefaultSiteSettings().Register(reg)
	RegistrarFunc(func(r *Registry) {
		r.Add(Descriptor{ID: "theme_mod_header_color", Capability: rbac.CapEdit})
	}).Register(reg)

	if _, ok := reg.Lookup("theme_mod_header_color"); !ok {
		t.Fatalf("additional registrar settings should resolve")
	}
}
