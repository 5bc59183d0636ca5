package store

// QueryVars is the store's native query shape for changeset collections. The
// API layer translates its collection parameters into these keys; augmenters
// may adjust the assembled set before execution.
type QueryVars map[string]any

// Recognized query var keys.
const (
	VarAuthorIn     = "author__in"
	VarAuthorNotIn  = "author__not_in"
	VarOffset       = "offset"
	VarOrder        = "order"
	VarOrderBy      = "orderby"
	VarPaged        = "paged"
	VarSearch       = "s"
	VarPostStatus   = "post_status"
	VarPerPage      = "posts_per_page"
	VarPostType     = "post_type"
	VarIgnoreSticky = "ignore_sticky_posts"
)

// Orderby values after the API layer's remapping.
const (
	OrderByDate      = "date"
	OrderByID        = "ID"
	OrderBySlug      = "post_name"
	OrderByTitle     = "title"
	OrderByRelevance = "relevance"
)

func (v QueryVars) Clone() QueryVars {
	out := make(QueryVars, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

func (v QueryVars) Int(key string, fallback int) int {
	if raw, ok := v[key]; ok {
		if n, ok := raw.(int); ok {
			return n
		}
	}
	return fallback
}

func (v QueryVars) String(key string) string {
	if raw, ok := v[key]; ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}

func (v QueryVars) Strings(key string) []string {
	if raw, ok := v[key]; ok {
		if s, ok := raw.([]string); ok {
			return s
		}
	}
	return nil
}

func (v QueryVars) Int64s(key string) []int64 {
	if raw, ok := v[key]; ok {
		if s, ok := raw.([]int64); ok {
			return s
		}
	}
	return nil
}
