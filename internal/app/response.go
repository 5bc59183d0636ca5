package app

import (
	"encoding/json"
	"html"
	"time"

	"glaze/api/internal/rbac"
	"glaze/api/internal/store"
)

// prepareChangesetResponse renders one changeset for a given context. The raw
// title is edit-context only; settings are filtered down to the ids the
// principal may read, silently dropping the rest.
func prepareChangesetResponse(mgr *Manager, item store.Changeset, role rbac.Role, context string) map[string]any {
	title := map[string]any{
		"rendered": html.EscapeString(item.Title),
	}
	if context == "edit" {
		title["raw"] = item.Title
	}

	return map[string]any{
		"author":   item.AuthorID,
		"date":     formatDate(item.Date, item.DateGMT),
		"date_gmt": formatDateGMT(item.Date, item.DateGMT),
		"settings": readableSettings(mgr, item.Settings, role),
		"slug":     item.UUID,
		"status":   item.Status,
		"title":    title,
	}
}

// formatDate renders the local datetime, falling back to the GMT one. Unset
// timestamps come out as JSON null, never a fabricated zero date.
func formatDate(date, dateGMT *time.Time) any {
	if date != nil {
		return date.Format(time.RFC3339)
	}
	if dateGMT != nil {
		return dateGMT.Format(time.RFC3339)
	}
	return nil
}

// formatDateGMT renders the GMT datetime, deriving it from the local one when
// only that is set.
func formatDateGMT(date, dateGMT *time.Time) any {
	if dateGMT != nil {
		return dateGMT.UTC().Format(time.RFC3339)
	}
	if date != nil {
		return date.UTC().Format(time.RFC3339)
	}
	return nil
}

// readableSettings decodes the stored settings content and keeps only the
// entries whose descriptor resolves and whose capability the role holds.
// Undecodable content renders as an empty object rather than failing the read.
func readableSettings(mgr *Manager, content string, role rbac.Role) map[string]any {
	out := map[string]any{}

	var decoded map[string]map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return out
	}

	for settingID, params := range decoded {
		descriptor, ok := mgr.Settings().Lookup(settingID)
		if !ok || !rbac.Can(role, descriptor.Capability) {
			continue
		}
		value, ok := params["value"]
		if !ok {
			value = json.RawMessage("null")
		}
		out[settingID] = map[string]any{"value": value}
	}
	return out
}
