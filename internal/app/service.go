package app

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"glaze/api/internal/auth"
	"glaze/api/internal/authpw"
	"glaze/api/internal/config"
	"glaze/api/internal/rbac"
	"glaze/api/internal/search"
	"glaze/api/internal/settings"
	"glaze/api/internal/store"
	"glaze/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       int64
	UserName     string
	Role         string
	JTI          string
	ExpiresAt    time.Time
}

// ListResult is the outcome of a collection query, ready for the transport
// layer to wrap with pagination headers.
type ListResult struct {
	Items      []map[string]any
	Total      int
	TotalPages int
	Page       int
}

type dataStore interface {
	EnsureUserByName(ctx context.Context, name string) (store.User, error)
	GetUserByID(ctx context.Context, userID int64) (store.User, error)
	SaveRefreshSession(ctx context.Context, tokenHash string, userID int64, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
	RevokeAccessToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error)
	ChangesetIDByUUID(ctx context.Context, uuid string) (int64, error)
	GetChangeset(ctx context.Context, id int64) (store.Changeset, error)
	InsertChangeset(ctx context.Context, item store.Changeset) (int64, error)
	UpdateChangeset(ctx context.Context, item store.Changeset) error
	TrashChangeset(ctx context.Context, id int64) error
	DeleteChangeset(ctx context.Context, id int64) error
	QueryChangesets(ctx context.Context, vars store.QueryVars) ([]store.Changeset, int, error)
	CountChangesets(ctx context.Context, vars store.QueryVars) (int, error)
	Ping(ctx context.Context) error
}

// refreshSessionStore is the slice of session storage Refresh and Logout
// need. Redis serves it when configured; the Postgres store otherwise.
type refreshSessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash string, userID int64, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type Service struct {
	cfg        config.Config
	store      dataStore
	sessions   refreshSessionStore
	searchSvc  *search.Service
	authPW     *authpw.Service
	registrars []settings.Registrar
	augmenters []QueryAugmenter
	loc        *time.Location

	managerMu sync.Mutex
	manager   *Manager
}

func New(cfg config.Config, dataStore *store.PostgresStore) *Service {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("app: unknown timezone %q, using UTC", cfg.Timezone)
		loc = time.UTC
	}
	return &Service{
		cfg:   cfg,
		store: dataStore,
		loc:   loc,
	}
}

// SetSessionStore swaps refresh token storage from the database to a
// dedicated backend.
func (s *Service) SetSessionStore(sessions refreshSessionStore) {
	s.sessions = sessions
}

func (s *Service) SetSearch(svc *search.Service) {
	s.searchSvc = svc
}

func (s *Service) SetAuthPassword(svc *authpw.Service) {
	s.authPW = svc
}

func (s *Service) AuthPasswordService() *authpw.Service {
	return s.authPW
}

// AddRegistrar appends a settings registrar. Registrars run, in order, each
// time a manager is built for a new uuid.
func (s *Service) AddRegistrar(registrar settings.Registrar) {
	s.registrars = append(s.registrars, registrar)
}

// AddQueryAugmenter appends a collection query augmenter.
func (s *Service) AddQueryAugmenter(augmenter QueryAugmenter) {
	s.augmenters = append(s.augmenters, augmenter)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) Can(role string, cap rbac.Capability) bool {
	return rbac.Can(rbac.Normalize(role), cap)
}

// ── Sessions ──

// Login is the development name-based login; it provisions an editor
// principal on first use.
func (s *Service) Login(ctx context.Context, name string) (Session, error) {
	userName := strings.TrimSpace(name)
	if userName == "" {
		userName = "User"
	}
	user, err := s.store.EnsureUserByName(ctx, userName)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) CreateSession(ctx context.Context, userID int64) (Session, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	found, err := s.sessionStore().LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	user, err := s.store.GetUserByID(ctx, found.ID)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessionStore().RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:  user.ID,
		Name: user.DisplayName,
		Role: user.Role,
		JTI:  jti,
		Exp:  expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessionStore().SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		Role:         user.Role,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		Role:      user.Role,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, sess Session, refreshToken string) error {
	if sess.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, sess.JTI, sess.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessionStore().RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

func (s *Service) sessionStore() refreshSessionStore {
	if s.sessions != nil {
		return s.sessions
	}
	return s.store
}

// ── Changesets ──

func (s *Service) ListChangesets(ctx context.Context, sess Session, params ListParams) (ListResult, error) {
	role := rbac.Normalize(sess.Role)

	if params.Context == "edit" && !rbac.Can(role, rbac.CapEdit) {
		return ListResult{}, domainError(http.StatusForbidden, CodeForbiddenContext,
			"Sorry, you are not allowed to edit changesets.", nil)
	}
	if !rbac.Can(role, rbac.CapRead) {
		return ListResult{}, domainError(http.StatusForbidden, CodeForbidden,
			"Sorry, you are not allowed to read changesets.", nil)
	}
	if err := sanitizeStatuses(params.Status, role); err != nil {
		return ListResult{}, err
	}

	vars := s.buildQueryVars(params)
	items, total, err := s.store.QueryChangesets(ctx, vars)
	if err != nil {
		return ListResult{}, err
	}

	// An out-of-range page and a genuinely empty result both come back with a
	// zero total; recount without pagination bounds to tell them apart.
	if total < 1 {
		recount := vars.Clone()
		delete(recount, store.VarPaged)
		total, err = s.store.CountChangesets(ctx, recount)
		if err != nil {
			return ListResult{}, err
		}
	}

	perPage := params.PerPage
	totalPages := (total + perPage - 1) / perPage
	if params.Page > totalPages && total > 0 {
		return ListResult{}, domainError(http.StatusBadRequest, CodeInvalidPageNumber,
			"The page number requested is larger than the number of pages available.", nil)
	}

	rendered := make([]map[string]any, 0, len(items))
	for _, item := range items {
		mgr, err := s.resolveManager(ctx, item.UUID)
		if err != nil {
			return ListResult{}, err
		}
		rendered = append(rendered, prepareChangesetResponse(mgr, item, role, params.Context))
	}

	return ListResult{
		Items:      rendered,
		Total:      total,
		TotalPages: totalPages,
		Page:       params.Page,
	}, nil
}

func (s *Service) GetChangesetItem(ctx context.Context, sess Session, uuid, requestContext string) (map[string]any, error) {
	role := rbac.Normalize(sess.Role)

	mgr, err := s.resolveManager(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if mgr.ChangesetID() == 0 {
		return nil, domainError(http.StatusNotFound, CodeInvalidUUID, "Invalid changeset UUID.", nil)
	}
	item, err := s.store.GetChangeset(ctx, mgr.ChangesetID())
	if err != nil {
		return nil, err
	}

	if requestContext == "edit" && !rbac.CanForAuthor(role, rbac.CapEdit, item.AuthorID, sess.UserID) {
		return nil, domainError(http.StatusForbidden, CodeForbiddenContext,
			"Sorry, you are not allowed to edit this changeset.", nil)
	}
	if !rbac.Can(role, rbac.CapRead) {
		return nil, domainError(http.StatusForbidden, CodeForbidden,
			"Sorry, you are not allowed to read this changeset.", nil)
	}

	return prepareChangesetResponse(mgr, item, role, requestContext), nil
}

// CreateChangeset creates or, when the uuid already names a changeset,
// updates it in place. Both paths respond alike; the transport layer always
// answers 201 with a Location for the uuid.
func (s *Service) CreateChangeset(ctx context.Context, sess Session, input ChangesetInput) (map[string]any, string, error) {
	role := rbac.Normalize(sess.Role)

	if input.Author != 0 && input.Author != sess.UserID && !rbac.Can(role, rbac.CapEditOthers) {
		return nil, "", domainError(http.StatusForbidden, CodeCannotEditOthers,
			"Sorry, you are not allowed to create changesets as this user.", nil)
	}
	if !rbac.Can(role, rbac.CapCreate) {
		return nil, "", domainError(http.StatusForbidden, CodeCannotCreate,
			"Sorry, you are not allowed to create changesets as this user.", nil)
	}

	uuid := input.UUID
	if uuid == "" {
		uuid = util.NewUUID()
	} else if !util.IsValidUUID(uuid) {
		return nil, "", invalidParam("uuid", "uuid must be a lowercase hyphenated UUID")
	}

	mgr, err := s.resolveManager(ctx, uuid)
	if err != nil {
		return nil, "", err
	}

	var existing *store.Changeset
	if mgr.ChangesetID() != 0 {
		found, err := s.store.GetChangeset(ctx, mgr.ChangesetID())
		if err != nil {
			return nil, "", err
		}
		existing = &found
	}

	prepared, err := s.prepareChangeset(ctx, sess, mgr, input, existing)
	if err != nil {
		return nil, "", err
	}
	if err := s.checkPublishCapability(prepared.Status, role); err != nil {
		return nil, "", err
	}

	if existing != nil {
		prepared.ID = existing.ID
		if err := s.store.UpdateChangeset(ctx, prepared); err != nil {
			return nil, "", err
		}
	} else {
		id, err := s.store.InsertChangeset(ctx, prepared)
		if err != nil {
			return nil, "", err
		}
		prepared.ID = id
	}

	saved, err := s.store.GetChangeset(ctx, prepared.ID)
	if err != nil {
		return nil, "", err
	}
	s.indexChangeset(saved)

	return prepareChangesetResponse(mgr, saved, role, "edit"), uuid, nil
}

func (s *Service) UpdateChangesetItem(ctx context.Context, sess Session, uuid string, input ChangesetInput) (map[string]any, error) {
	role := rbac.Normalize(sess.Role)

	mgr, err := s.resolveManager(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if mgr.ChangesetID() == 0 {
		return nil, domainError(http.StatusNotFound, CodeInvalidUUID, "Invalid changeset UUID.", nil)
	}
	existing, err := s.store.GetChangeset(ctx, mgr.ChangesetID())
	if err != nil {
		return nil, err
	}

	if !rbac.CanForAuthor(role, rbac.CapEdit, existing.AuthorID, sess.UserID) {
		return nil, domainError(http.StatusForbidden, CodeCannotEdit,
			"Sorry, you are not allowed to edit this changeset.", nil)
	}

	prepared, err := s.prepareChangeset(ctx, sess, mgr, input, &existing)
	if err != nil {
		return nil, err
	}
	if err := s.checkPublishCapability(prepared.Status, role); err != nil {
		return nil, err
	}

	if err := s.store.UpdateChangeset(ctx, prepared); err != nil {
		return nil, err
	}
	saved, err := s.store.GetChangeset(ctx, prepared.ID)
	if err != nil {
		return nil, err
	}
	s.indexChangeset(saved)

	return prepareChangesetResponse(mgr, saved, role, "edit"), nil
}

// DeleteChangesetItem trashes a changeset, or removes the row entirely when
// force is set. Deleting from trash without force is reported as gone.
func (s *Service) DeleteChangesetItem(ctx context.Context, sess Session, uuid string, force bool) (map[string]any, error) {
	role := rbac.Normalize(sess.Role)

	mgr, err := s.resolveManager(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if mgr.ChangesetID() == 0 {
		return nil, domainError(http.StatusNotFound, CodeInvalidUUID, "Invalid changeset UUID.", nil)
	}
	existing, err := s.store.GetChangeset(ctx, mgr.ChangesetID())
	if err != nil {
		return nil, err
	}

	if !rbac.CanForAuthor(role, rbac.CapDelete, existing.AuthorID, sess.UserID) {
		return nil, domainError(http.StatusForbidden, CodeCannotDelete,
			"Sorry, you are not allowed to delete this changeset.", nil)
	}

	if force {
		previous := prepareChangesetResponse(mgr, existing, role, "edit")
		if err := s.store.DeleteChangeset(ctx, existing.ID); err != nil {
			return nil, err
		}
		if s.searchSvc != nil {
			s.searchSvc.DeleteChangeset(uuid)
		}
		return map[string]any{"deleted": true, "previous": previous}, nil
	}

	if existing.Status == store.StatusTrash {
		return nil, domainError(http.StatusGone, CodeAlreadyTrashed,
			"The changeset has already been deleted.", nil)
	}
	if err := s.store.TrashChangeset(ctx, existing.ID); err != nil {
		return nil, err
	}
	existing.Status = store.StatusTrash
	s.indexChangeset(existing)

	return prepareChangesetResponse(mgr, existing, role, "edit"), nil
}

func (s *Service) checkPublishCapability(status string, role rbac.Role) error {
	if status != store.StatusPublish && status != store.StatusFuture {
		return nil
	}
	if !rbac.Can(role, rbac.CapPublish) {
		return domainError(http.StatusForbidden, CodePublishUnauthorized,
			"Sorry, you are not allowed to publish changesets.", nil)
	}
	return nil
}

// ── Search ──

func (s *Service) Search(q search.Query) (search.Response, error) {
	if s.searchSvc == nil {
		return search.Response{}, domainError(http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE",
			"Search is not configured", nil)
	}
	return s.searchSvc.Search(q), nil
}

func (s *Service) indexChangeset(item store.Changeset) {
	if s.searchSvc == nil {
		return
	}
	s.searchSvc.IndexChangeset(search.ChangesetRecord{
		UUID:       item.UUID,
		Title:      item.Title,
		Status:     item.Status,
		SettingIDs: settingIDs(item.Settings),
	})
}

func settingIDs(content string) []string {
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return nil
	}
	ids := make([]string, 0, len(decoded))
	for id := range decoded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
