package app

import "fmt"

// Stable error codes surfaced in the response envelope. Clients key off
// these, so they never change even when messages do.
const (
	CodeInvalidParam          = "rest_invalid_param"
	CodeNoSearchTerm          = "rest_no_search_term_defined"
	CodeInvalidPageNumber     = "rest_post_invalid_page_number"
	CodeInvalidUUID           = "rest_post_invalid_uuid"
	CodeForbidden             = "rest_forbidden"
	CodeForbiddenContext      = "rest_forbidden_context"
	CodeForbiddenStatus       = "rest_forbidden_status"
	CodeCannotCreate          = "rest_cannot_create"
	CodeCannotEdit            = "rest_cannot_edit"
	CodeCannotEditOthers      = "rest_cannot_edit_others"
	CodeCannotDelete          = "rest_cannot_delete"
	CodeInvalidAuthor         = "rest_invalid_author"
	CodeIncorrectDate         = "rest_incorrect_date"
	CodeInvalidChangesetData  = "invalid_customize_changeset_data"
	CodeCannotEditSlug        = "cannot_edit_changeset_slug"
	CodePublishUnauthorized   = "changeset_publish_unauthorized"
	CodeAlreadyTrashed        = "rest_already_trashed"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}
