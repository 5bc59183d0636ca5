package app

import (
	"context"

	"glaze/api/internal/settings"
)

// Manager is the working context for one changeset uuid: the settings known
// for that context plus the resolved storage row, if any.
type Manager struct {
	uuid        string
	changesetID int64
	settings    *settings.Registry
}

func (m *Manager) UUID() string {
	return m.uuid
}

// ChangesetID returns the internal row id for the manager's uuid, or 0 when
// no changeset with that uuid exists yet. Callers treat 0 as not-found on
// read paths and as create-new on write paths.
func (m *Manager) ChangesetID() int64 {
	return m.changesetID
}

func (m *Manager) Settings() *settings.Registry {
	return m.settings
}

// resolveManager returns the working context for a uuid. The settings
// registry is the expensive part: a single slot on the service caches it,
// reused while requests keep hitting the same uuid and rebuilt, re-running
// every registrar, when the uuid changes. Each call returns its own Manager
// over the shared registry, so concurrent requests never see one another's
// context, and the cached slot is only touched under the mutex. The row id
// is re-resolved on every call so a freshly inserted changeset is visible to
// the next request.
func (s *Service) resolveManager(ctx context.Context, uuid string) (*Manager, error) {
	s.managerMu.Lock()
	if s.manager == nil || s.manager.uuid != uuid {
		registry := settings.NewRegistry()
		for _, registrar := range s.registrars {
			registrar.Register(registry)
		}
		s.manager = &Manager{uuid: uuid, settings: registry}
	}
	registry := s.manager.settings
	s.managerMu.Unlock()

	id, err := s.store.ChangesetIDByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	return &Manager{uuid: uuid, changesetID: id, settings: registry}, nil
}
