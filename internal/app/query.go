package app

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"glaze/api/internal/store"
)

// ListParams are the recognized collection parameters for GET /api/changesets,
// after parsing and defaulting but before capability-aware sanitization.
type ListParams struct {
	Context       string
	Author        []int64
	AuthorExclude []int64
	Status        []string
	Offset        *int
	Order         string
	OrderBy       string
	Page          int
	PerPage       int
	Search        string
}

var allowedOrderBy = map[string]struct{}{
	"date":      {},
	"relevance": {},
	"id":        {},
	"title":     {},
	"slug":      {},
}

var allowedListStatuses = map[string]struct{}{
	store.StatusAutoDraft: {},
	store.StatusDraft:     {},
	store.StatusFuture:    {},
	store.StatusPublish:   {},
	store.StatusPrivate:   {},
	store.StatusTrash:     {},
	"any":                 {},
}

// QueryAugmenter adjusts the assembled query vars before execution. Augmenters
// run in registration order after the fixed parameter translation.
type QueryAugmenter interface {
	Augment(vars store.QueryVars, params ListParams) store.QueryVars
}

// QueryAugmenterFunc adapts a plain function to the QueryAugmenter interface.
type QueryAugmenterFunc func(vars store.QueryVars, params ListParams) store.QueryVars

func (f QueryAugmenterFunc) Augment(vars store.QueryVars, params ListParams) store.QueryVars {
	return f(vars, params)
}

// parseListParams decodes and validates the collection query string. Unknown
// parameters are ignored; malformed or out-of-enum values are rejected.
func parseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Context: "view",
		Status:  []string{store.StatusAutoDraft},
		Order:   "desc",
		OrderBy: "date",
		Page:    1,
		PerPage: 10,
	}

	if raw := values.Get("context"); raw != "" {
		if raw != "view" && raw != "edit" {
			return params, invalidParam("context", "context must be one of view, edit")
		}
		params.Context = raw
	}

	authors, err := parseIntList(values, "author")
	if err != nil {
		return params, err
	}
	params.Author = authors

	excluded, err := parseIntList(values, "author_exclude")
	if err != nil {
		return params, err
	}
	params.AuthorExclude = excluded

	if raw := values["status"]; len(raw) > 0 {
		statuses := parseSlugList(raw)
		for _, status := range statuses {
			if _, ok := allowedListStatuses[status]; !ok {
				return params, invalidParam("status", fmt.Sprintf("status %q is not a valid changeset status", status))
			}
		}
		if len(statuses) > 0 {
			params.Status = statuses
		}
	}

	if raw := values.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return params, invalidParam("offset", "offset must be a non-negative integer")
		}
		params.Offset = &offset
	}

	if raw := values.Get("order"); raw != "" {
		order := strings.ToLower(raw)
		if order != "asc" && order != "desc" {
			return params, invalidParam("order", "order must be asc or desc")
		}
		params.Order = order
	}

	if raw := values.Get("orderby"); raw != "" {
		if _, ok := allowedOrderBy[raw]; !ok {
			return params, invalidParam("orderby", "orderby must be one of date, relevance, id, title, slug")
		}
		params.OrderBy = raw
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, invalidParam("page", "page must be a positive integer")
		}
		params.Page = page
	}

	if raw := values.Get("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage < 1 || perPage > 100 {
			return params, invalidParam("per_page", "per_page must be between 1 and 100")
		}
		params.PerPage = perPage
	}

	params.Search = strings.TrimSpace(values.Get("search"))

	if params.OrderBy == "relevance" && params.Search == "" {
		return params, domainError(http.StatusBadRequest, CodeNoSearchTerm,
			"You need to define a search term to order by relevance.", nil)
	}

	return params, nil
}

// buildQueryVars translates the collection parameters into the store's native
// query shape. The document type and sticky-post bypass are always injected
// here; clients cannot influence them.
func (s *Service) buildQueryVars(params ListParams) store.QueryVars {
	vars := store.QueryVars{}

	if len(params.Author) > 0 {
		vars[store.VarAuthorIn] = params.Author
	}
	if len(params.AuthorExclude) > 0 {
		vars[store.VarAuthorNotIn] = params.AuthorExclude
	}
	if params.Offset != nil {
		vars[store.VarOffset] = *params.Offset
	}
	vars[store.VarOrder] = params.Order
	vars[store.VarOrderBy] = remapOrderBy(params.OrderBy)
	vars[store.VarPaged] = params.Page
	if params.Search != "" {
		vars[store.VarSearch] = params.Search
	}
	if len(params.Status) > 0 {
		vars[store.VarPostStatus] = params.Status
	}
	vars[store.VarPerPage] = params.PerPage
	vars[store.VarPostType] = store.ChangesetType
	vars[store.VarIgnoreSticky] = true

	for _, augmenter := range s.augmenters {
		vars = augmenter.Augment(vars, params)
	}
	return vars
}

// remapOrderBy translates API orderby values onto the store's sort keys.
// Values without a mapping pass through unchanged.
func remapOrderBy(orderBy string) string {
	switch orderBy {
	case "id":
		return store.OrderByID
	case "slug":
		return store.OrderBySlug
	default:
		return orderBy
	}
}

func parseIntList(values url.Values, key string) ([]int64, error) {
	var out []int64
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, invalidParam(key, key+" must be a list of integers")
			}
			out = append(out, id)
		}
	}
	return out, nil
}

// parseSlugList flattens repeated and comma-separated status values into one
// slug list, the same way both forms are accepted for author filters.
func parseSlugList(raw []string) []string {
	var out []string
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(strings.ToLower(part))
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func invalidParam(param, message string) *DomainError {
	return domainError(http.StatusBadRequest, CodeInvalidParam, message, map[string]any{"param": param})
}
