package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"glaze/api/internal/rbac"
	"glaze/api/internal/store"
)

// changesetDateFormat is the only datetime form accepted on writes, e.g.
// "2026-03-01 6:30 pm". Responses always render RFC 3339.
const changesetDateFormat = "2006-01-02 3:04 pm"

var writableStatuses = map[string]struct{}{
	store.StatusAutoDraft: {},
	store.StatusDraft:     {},
	store.StatusFuture:    {},
	store.StatusPublish:   {},
	store.StatusPrivate:   {},
}

// ChangesetInput is the request body for create and update. Title and Status
// stay raw because both accept more than one JSON shape.
type ChangesetInput struct {
	UUID     string          `json:"uuid"`
	Title    json.RawMessage `json:"title"`
	Settings json.RawMessage `json:"settings"`
	Date     string          `json:"date"`
	DateGMT  string          `json:"date_gmt"`
	Slug     *string         `json:"slug"`
	Author   int64           `json:"author"`
	Status   json.RawMessage `json:"status"`
}

// sanitizeStatuses validates a status slug list. The default status is always
// allowed; every other value requires the edit capability.
func sanitizeStatuses(statuses []string, role rbac.Role) error {
	for _, status := range statuses {
		if status == store.StatusAutoDraft {
			continue
		}
		if !rbac.Can(role, rbac.CapEdit) {
			return domainError(http.StatusForbidden, CodeForbiddenStatus, "Status is forbidden.", nil)
		}
	}
	return nil
}

// prepareChangeset folds a request body into the row to persist, validating
// each field. existing is nil on first-time create; the whole write is
// rejected on the first invalid field.
func (s *Service) prepareChangeset(ctx context.Context, sess Session, mgr *Manager, input ChangesetInput, existing *store.Changeset) (store.Changeset, error) {
	item := store.Changeset{
		UUID:     mgr.UUID(),
		Status:   store.StatusAutoDraft,
		AuthorID: sess.UserID,
		Settings: "{}",
	}
	if existing != nil {
		item = *existing
	}

	if input.Slug != nil {
		return store.Changeset{}, domainError(http.StatusBadRequest, CodeCannotEditSlug, "Not allowed to edit changeset slug.", nil)
	}

	if len(input.Title) > 0 {
		title, err := decodeTitle(input.Title)
		if err != nil {
			return store.Changeset{}, err
		}
		item.Title = title
	}

	if len(input.Settings) > 0 {
		content, err := s.sanitizeSettings(mgr, sess, input.Settings)
		if err != nil {
			return store.Changeset{}, err
		}
		item.Settings = content
	}

	if input.Date != "" {
		local, gmt, err := s.parseDatePair(input.Date, false)
		if err != nil {
			return store.Changeset{}, err
		}
		item.Date, item.DateGMT = local, gmt
	} else if input.DateGMT != "" {
		local, gmt, err := s.parseDatePair(input.DateGMT, true)
		if err != nil {
			return store.Changeset{}, err
		}
		item.Date, item.DateGMT = local, gmt
	}

	if input.Author != 0 {
		if input.Author != sess.UserID {
			if _, err := s.store.GetUserByID(ctx, input.Author); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return store.Changeset{}, domainError(http.StatusBadRequest, CodeInvalidAuthor, "Invalid author ID.", nil)
				}
				return store.Changeset{}, err
			}
			if !rbac.Can(rbac.Normalize(sess.Role), rbac.CapEditOthers) {
				return store.Changeset{}, domainError(http.StatusForbidden, CodeCannotEditOthers,
					"Sorry, you are not allowed to create changesets as this user.", nil)
			}
		}
		item.AuthorID = input.Author
	}

	if len(input.Status) > 0 {
		status, err := decodeStatus(input.Status)
		if err != nil {
			return store.Changeset{}, err
		}
		if _, ok := writableStatuses[status]; !ok {
			return store.Changeset{}, invalidParam("status", "status must be one of auto-draft, draft, future, publish, private")
		}
		if err := sanitizeStatuses([]string{status}, rbac.Normalize(sess.Role)); err != nil {
			return store.Changeset{}, err
		}
		item.Status = status
	}

	return item, nil
}

// sanitizeSettings validates the settings payload shape and every setting id
// against the manager's registry. Unknown ids fail the whole write; so does a
// capability miss on any referenced setting. The stored form is normalized to
// id -> {"value": ...}.
func (s *Service) sanitizeSettings(mgr *Manager, sess Session, raw json.RawMessage) (string, error) {
	var decoded map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", domainError(http.StatusBadRequest, CodeInvalidChangesetData, "Invalid customize changeset data.", nil)
	}

	role := rbac.Normalize(sess.Role)
	normalized := make(map[string]map[string]json.RawMessage, len(decoded))
	for settingID, params := range decoded {
		descriptor, ok := mgr.Settings().Lookup(settingID)
		if !ok {
			return "", domainError(http.StatusBadRequest, CodeInvalidChangesetData, "Invalid setting.",
				map[string]any{"setting": settingID})
		}
		if !rbac.Can(role, descriptor.Capability) {
			return "", domainError(http.StatusForbidden, CodeForbidden,
				"Sorry, you are not allowed to edit some of the settings.", nil)
		}
		value, ok := params["value"]
		if !ok {
			value = json.RawMessage("null")
		}
		normalized[settingID] = map[string]json.RawMessage{"value": value}
	}

	content, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// parseDatePair parses a datetime in the accepted write format and derives
// the missing local/GMT counterpart from the configured site timezone.
func (s *Service) parseDatePair(value string, isGMT bool) (*time.Time, *time.Time, error) {
	loc := s.loc
	if isGMT {
		loc = time.UTC
	}
	parsed, err := time.ParseInLocation(changesetDateFormat, value, loc)
	if err != nil {
		return nil, nil, domainError(http.StatusBadRequest, CodeIncorrectDate, "Incorrect date format.", nil)
	}

	gmt := parsed.UTC()
	local := parsed.In(s.loc)
	return &local, &gmt, nil
}

func decodeTitle(raw json.RawMessage) (string, error) {
	var direct string
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct, nil
	}
	var object struct {
		Raw string `json:"raw"`
	}
	if err := json.Unmarshal(raw, &object); err == nil {
		return object.Raw, nil
	}
	return "", invalidParam("title", "title must be a string or an object with a raw property")
}

// decodeStatus accepts either a single status string or a list, of which the
// first entry wins.
func decodeStatus(raw json.RawMessage) (string, error) {
	var direct string
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0], nil
	}
	return "", invalidParam("status", "status must be a string or a list of strings")
}
