package app

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"glaze/api/internal/config"
	"glaze/api/internal/settings"
	"glaze/api/internal/store"
)

type fakeStore struct {
	ensureUserByNameFn  func(context.Context, string) (store.User, error)
	getUserByIDFn       func(context.Context, int64) (store.User, error)
	changesetIDByUUIDFn func(context.Context, string) (int64, error)
	getChangesetFn      func(context.Context, int64) (store.Changeset, error)
	insertChangesetFn   func(context.Context, store.Changeset) (int64, error)
	updateChangesetFn   func(context.Context, store.Changeset) error
	trashChangesetFn    func(context.Context, int64) error
	deleteChangesetFn   func(context.Context, int64) error
	queryChangesetsFn   func(context.Context, store.QueryVars) ([]store.Changeset, int, error)
	countChangesetsFn   func(context.Context, store.QueryVars) (int, error)
}

func (f *fakeStore) EnsureUserByName(ctx context.Context, name string) (store.User, error) {
	if f.ensureUserByNameFn != nil {
		return f.ensureUserByNameFn(ctx, name)
	}
	return store.User{ID: 1, DisplayName: name, Role: "editor"}, nil
}
func (f *fakeStore) GetUserByID(ctx context.Context, userID int64) (store.User, error) {
	if f.getUserByIDFn != nil {
		return f.getUserByIDFn(ctx, userID)
	}
	return store.User{}, sql.ErrNoRows
}
func (f *fakeStore) SaveRefreshSession(context.Context, string, int64, time.Time) error { return nil }
func (f *fakeStore) LookupRefreshSession(context.Context, string) (store.User, error) {
	return store.User{}, sql.ErrNoRows
}
func (f *fakeStore) RevokeRefreshSession(context.Context, string) error         { return nil }
func (f *fakeStore) RevokeAccessToken(context.Context, string, time.Time) error { return nil }
func (f *fakeStore) IsAccessTokenRevoked(context.Context, string) (bool, error) {
	return false, nil
}
func (f *fakeStore) ChangesetIDByUUID(ctx context.Context, uuid string) (int64, error) {
	if f.changesetIDByUUIDFn != nil {
		return f.changesetIDByUUIDFn(ctx, uuid)
	}
	return 0, nil
}
func (f *fakeStore) GetChangeset(ctx context.Context, id int64) (store.Changeset, error) {
	if f.getChangesetFn != nil {
		return f.getChangesetFn(ctx, id)
	}
	return store.Changeset{}, sql.ErrNoRows
}
func (f *fakeStore) InsertChangeset(ctx context.Context, item store.Changeset) (int64, error) {
	if f.insertChangesetFn != nil {
		return f.insertChangesetFn(ctx, item)
	}
	return 1, nil
}
func (f *fakeStore) UpdateChangeset(ctx context.Context, item store.Changeset) error {
	if f.updateChangesetFn != nil {
		return f.updateChangesetFn(ctx, item)
	}
	return nil
}
func (f *fakeStore) TrashChangeset(ctx context.Context, id int64) error {
	if f.trashChangesetFn != nil {
		return f.trashChangesetFn(ctx, id)
	}
	return nil
}
func (f *fakeStore) DeleteChangeset(ctx context.Context, id int64) error {
	if f.deleteChangesetFn != nil {
		return f.deleteChangesetFn(ctx, id)
	}
	return nil
}
func (f *fakeStore) QueryChangesets(ctx context.Context, vars store.QueryVars) ([]store.Changeset, int, error) {
	if f.queryChangesetsFn != nil {
		return f.queryChangesetsFn(ctx, vars)
	}
	return nil, 0, nil
}
func (f *fakeStore) CountChangesets(ctx context.Context, vars store.QueryVars) (int, error) {
	if f.countChangesetsFn != nil {
		return f.countChangesetsFn(ctx, vars)
	}
	return 0, nil
}
func (f *fakeStore) Ping(context.Context) error { return nil }

func testConfig() config.Config {
	return config.Config{
		JWTSecret:  "test-secret",
		AccessTTL:  time.Hour,
		RefreshTTL: time.Hour,
		Timezone:   "UTC",
	}
}

func newTestService(fs *fakeStore) *Service {
	svc := &Service{cfg: testConfig(), store: fs, loc: time.UTC}
	svc.AddRegistrar(settings.DefaultSiteSettings())
	return svc
}

func adminSession() Session {
	return Session{UserID: 7, UserName: "Avery", Role: "administrator"}
}

func domainErrOf(t *testing.T, err error) *DomainError {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	domainErr, ok := err.(*DomainError)
	if !ok {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	return domainErr
}

const testUUID = "2f3c5ad2-2e14-43a5-ac53-f1a6aa405b51"

func TestCreateChangesetGeneratesUUID(t *testing.T) {
	var inserted store.Changeset
	fs := &fakeStore{
		insertChangesetFn: func(_ context.Context, item store.Changeset) (int64, error) {
			inserted = item
			inserted.ID = 42
			return 42, nil
		},
		getChangesetFn: func(_ context.Context, id int64) (store.Changeset, error) {
			return inserted, nil
		},
	}
	svc := newTestService(fs)

	payload, uuid, err := svc.CreateChangeset(context.Background(), adminSession(), ChangesetInput{})
	if err != nil {
		t.Fatalf("CreateChangeset: %v", err)
	}
	if uuid == "" || len(uuid) != 36 {
		t.Fatalf("expected a generated uuid, got %q", uuid)
	}
	if inserted.UUID != uuid {
		t.Fatalf("inserted uuid %q does not match returned %q", inserted.UUID, uuid)
	}
	if inserted.Status != store.StatusAutoDraft {
		t.Fatalf("expected default status auto-draft, got %q", inserted.Status)
	}
	if inserted.AuthorID != 7 {
		t.Fatalf("expected author defaulted to principal, got %d", inserted.AuthorID)
	}
	if payload["slug"] != uuid {
		t.Fatalf("expected slug %q in payload, got %v", uuid, payload["slug"])
	}
}

func TestCreateChangesetUpsertsExistingUUID(t *testing.T) {
	existing := store.Changeset{ID: 9, UUID: testUUID, Status: store.StatusDraft, AuthorID: 7, Title: "Before", Settings: "{}"}
	inserts := 0
	var updated store.Changeset
	fs := &fakeStore{
		changesetIDByUUIDFn: func(_ context.Context, uuid string) (int64, error) { return 9, nil },
		getChangesetFn: func(_ context.Context, id int64) (store.Changeset, error) {
			if updated.ID != 0 {
				return updated, nil
			}
			return existing, nil
		},
		insertChangesetFn: func(context.Context, store.Changeset) (int64, error) {
			inserts++
			return 0, nil
		},
		updateChangesetFn: func(_ context.Context, item store.Changeset) error {
			updated = item
			return nil
		},
	}
	svc := newTestService(fs)

	payload, uuid, err := svc.CreateChangeset(context.Background(), adminSession(), ChangesetInput{
		UUID:  testUUID,
		Title: []byte(`"After"`),
	})
	if err != nil {
		t.Fatalf("CreateChangeset: %v", err)
	}
	if inserts != 0 {
		t.Fatalf("expected upsert to reuse the existing row, got %d inserts", inserts)
	}
	if uuid != testUUID {
		t.Fatalf("expected uuid %q, got %q", testUUID, uuid)
	}
	if updated.ID != 9 || updated.Title != "After" {
		t.Fatalf("unexpected update row: %+v", updated)
	}
	if updated.Status != store.StatusDraft {
		t.Fatalf("expected status retained on upsert, got %q", updated.Status)
	}
	title, _ := payload["title"].(map[string]any)
	if title["raw"] != "After" {
		t.Fatalf("expected raw title in create response, got %v", title)
	}
}

func TestCreateChangesetPublishRequiresCapability(t *testing.T) {
	svc := newTestService(&fakeStore{})
	sess := Session{UserID: 3, Role: "author"}

	_, _, err := svc.CreateChangeset(context.Background(), sess, ChangesetInput{
		Status: []byte(`"publish"`),
	})
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodePublishUnauthorized || domainErr.Status != 403 {
		t.Fatalf("expected 403 %s, got %d %s", CodePublishUnauthorized, domainErr.Status, domainErr.Code)
	}
}

func TestCreateChangesetAsOtherUserRequiresEditOthers(t *testing.T) {
	svc := newTestService(&fakeStore{})
	sess := Session{UserID: 3, Role: "author"}

	_, _, err := svc.CreateChangeset(context.Background(), sess, ChangesetInput{Author: 99})
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodeCannotEditOthers {
		t.Fatalf("expected %s, got %s", CodeCannotEditOthers, domainErr.Code)
	}
}

func TestCreateChangesetInvalidAuthor(t *testing.T) {
	svc := newTestService(&fakeStore{}) // GetUserByID defaults to no rows

	_, _, err := svc.CreateChangeset(context.Background(), adminSession(), ChangesetInput{Author: 99})
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodeInvalidAuthor || domainErr.Status != 400 {
		t.Fatalf("expected 400 %s, got %d %s", CodeInvalidAuthor, domainErr.Status, domainErr.Code)
	}
}

func TestCreateChangesetRejectsMalformedUUID(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, _, err := svc.CreateChangeset(context.Background(), adminSession(), ChangesetInput{UUID: "Not-A-UUID"})
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodeInvalidParam {
		t.Fatalf("expected %s, got %s", CodeInvalidParam, domainErr.Code)
	}
}

func TestUpdateUnknownUUIDIs404(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.UpdateChangesetItem(context.Background(), adminSession(), testUUID, ChangesetInput{})
	domainErr := domainErrOf(t, err)
	if domainErr.Status != 404 || domainErr.Code != CodeInvalidUUID {
		t.Fatalf("expected 404 %s, got %d %s", CodeInvalidUUID, domainErr.Status, domainErr.Code)
	}
}

func existingChangesetStore(existing store.Changeset, updated *store.Changeset) *fakeStore {
	return &fakeStore{
		changesetIDByUUIDFn: func(context.Context, string) (int64, error) { return existing.ID, nil },
		getChangesetFn: func(_ context.Context, id int64) (store.Changeset, error) {
			if updated != nil && updated.ID != 0 {
				return *updated, nil
			}
			return existing, nil
		},
		updateChangesetFn: func(_ context.Context, item store.Changeset) error {
			if updated != nil {
				*updated = item
			}
			return nil
		},
	}
}

func TestUpdateRejectsSlugEdit(t *testing.T) {
	existing := store.Changeset{ID: 5, UUID: testUUID, Status: store.StatusDraft, AuthorID: 7, Settings: "{}"}
	svc := newTestService(existingChangesetStore(existing, nil))

	slug := "new-slug"
	_, err := svc.UpdateChangesetItem(context.Background(), adminSession(), testUUID, ChangesetInput{Slug: &slug})
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodeCannotEditSlug || domainErr.Status != 400 {
		t.Fatalf("expected 400 %s, got %d %s", CodeCannotEditSlug, domainErr.Status, domainErr.Code)
	}
}

func TestUpdateRejectsUnknownSetting(t *testing.T) {
	existing := store.Changeset{ID: 5, UUID: testUUID, Status: store.StatusDraft, AuthorID: 7, Settings: "{}"}
	var updated store.Changeset
	svc := newTestService(existingChangesetStore(existing, &updated))

	_, err := svc.UpdateChangesetItem(context.Background(), adminSession(), testUUID, ChangesetInput{
		Settings: []byte(`{"blogname":{"value":"Glaze"},"no_such_setting":{"value":1}}`),
	})
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodeInvalidChangesetData || domainErr.Status != 400 {
		t.Fatalf("expected 400 %s, got %d %s", CodeInvalidChangesetData, domainErr.Status, domainErr.Code)
	}
	if updated.ID != 0 {
		t.Fatal("expected no write after a rejected setting")
	}
}

func TestUpdateSettingsAllOrNothingOnCapability(t *testing.T) {
	existing := store.Changeset{ID: 5, UUID: testUUID, Status: store.StatusDraft, AuthorID: 4, Settings: "{}"}
	var updated store.Changeset
	svc := newTestService(existingChangesetStore(existing, &updated))
	sess := Session{UserID: 4, Role: "editor"}

	// site_icon needs manage-options, which editors lack; blogname alone
	// would be fine but the whole write must fail.
	_, err := svc.UpdateChangesetItem(context.Background(), sess, testUUID, ChangesetInput{
		Settings: []byte(`{"blogname":{"value":"Glaze"},"site_icon":{"value":123}}`),
	})
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodeForbidden || domainErr.Status != 403 {
		t.Fatalf("expected 403 %s, got %d %s", CodeForbidden, domainErr.Status, domainErr.Code)
	}
	if updated.ID != 0 {
		t.Fatal("expected no write when any setting fails its capability check")
	}
}

func TestUpdateRejectsBadDateFormat(t *testing.T) {
	existing := store.Changeset{ID: 5, UUID: testUUID, Status: store.StatusDraft, AuthorID: 7, Settings: "{}"}
	svc := newTestService(existingChangesetStore(existing, nil))

	_, err := svc.UpdateChangesetItem(context.Background(), adminSession(), testUUID, ChangesetInput{
		Date: "2026-03-01T18:30:00Z",
	})
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodeIncorrectDate || domainErr.Status != 400 {
		t.Fatalf("expected 400 %s, got %d %s", CodeIncorrectDate, domainErr.Status, domainErr.Code)
	}
}

func TestUpdateDateDerivesGMTFromSiteTimezone(t *testing.T) {
	existing := store.Changeset{ID: 5, UUID: testUUID, Status: store.StatusDraft, AuthorID: 7, Settings: "{}"}
	var updated store.Changeset
	svc := newTestService(existingChangesetStore(existing, &updated))
	svc.loc = time.FixedZone("UTC+2", 2*3600)

	_, err := svc.UpdateChangesetItem(context.Background(), adminSession(), testUUID, ChangesetInput{
		Date: "2026-03-01 6:30 pm",
	})
	if err != nil {
		t.Fatalf("UpdateChangesetItem: %v", err)
	}
	if updated.DateGMT == nil || !updated.DateGMT.Equal(time.Date(2026, 3, 1, 16, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected GMT derived as 16:30Z, got %v", updated.DateGMT)
	}
	if updated.Date == nil || updated.Date.Hour() != 18 {
		t.Fatalf("expected local time kept at 18:30, got %v", updated.Date)
	}
}

func TestUpdateOthersChangesetRequiresEditOthers(t *testing.T) {
	existing := store.Changeset{ID: 5, UUID: testUUID, Status: store.StatusDraft, AuthorID: 99, Settings: "{}"}
	svc := newTestService(existingChangesetStore(existing, nil))
	sess := Session{UserID: 3, Role: "author"}

	_, err := svc.UpdateChangesetItem(context.Background(), sess, testUUID, ChangesetInput{})
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodeCannotEdit || domainErr.Status != 403 {
		t.Fatalf("expected 403 %s, got %d %s", CodeCannotEdit, domainErr.Status, domainErr.Code)
	}
}

func TestDeleteTrashesThenReportsGone(t *testing.T) {
	existing := store.Changeset{ID: 5, UUID: testUUID, Status: store.StatusDraft, AuthorID: 7, Settings: "{}"}
	trashed := false
	fs := &fakeStore{
		changesetIDByUUIDFn: func(context.Context, string) (int64, error) { return 5, nil },
		getChangesetFn: func(context.Context, int64) (store.Changeset, error) {
			item := existing
			if trashed {
				item.Status = store.StatusTrash
			}
			return item, nil
		},
		trashChangesetFn: func(context.Context, int64) error {
			trashed = true
			return nil
		},
	}
	svc := newTestService(fs)

	payload, err := svc.DeleteChangesetItem(context.Background(), adminSession(), testUUID, false)
	if err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if payload["status"] != store.StatusTrash {
		t.Fatalf("expected trash status in response, got %v", payload["status"])
	}

	_, err = svc.DeleteChangesetItem(context.Background(), adminSession(), testUUID, false)
	domainErr := domainErrOf(t, err)
	if domainErr.Status != 410 || domainErr.Code != CodeAlreadyTrashed {
		t.Fatalf("expected 410 %s, got %d %s", CodeAlreadyTrashed, domainErr.Status, domainErr.Code)
	}
}

func TestDeleteForceRemovesRow(t *testing.T) {
	existing := store.Changeset{ID: 5, UUID: testUUID, Status: store.StatusTrash, AuthorID: 7, Title: "Old", Settings: "{}"}
	deleted := false
	fs := &fakeStore{
		changesetIDByUUIDFn: func(context.Context, string) (int64, error) { return 5, nil },
		getChangesetFn:      func(context.Context, int64) (store.Changeset, error) { return existing, nil },
		deleteChangesetFn: func(context.Context, int64) error {
			deleted = true
			return nil
		},
	}
	svc := newTestService(fs)

	payload, err := svc.DeleteChangesetItem(context.Background(), adminSession(), testUUID, true)
	if err != nil {
		t.Fatalf("force delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected the row to be deleted")
	}
	if payload["deleted"] != true {
		t.Fatalf("expected deleted:true, got %v", payload["deleted"])
	}
	previous, _ := payload["previous"].(map[string]any)
	if previous["slug"] != testUUID {
		t.Fatalf("expected previous item in response, got %v", payload["previous"])
	}
}

func TestDeleteOthersChangesetRequiresDeleteOthers(t *testing.T) {
	existing := store.Changeset{ID: 5, UUID: testUUID, Status: store.StatusDraft, AuthorID: 99, Settings: "{}"}
	svc := newTestService(existingChangesetStore(existing, nil))
	sess := Session{UserID: 3, Role: "author"}

	_, err := svc.DeleteChangesetItem(context.Background(), sess, testUUID, false)
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodeCannotDelete || domainErr.Status != 403 {
		t.Fatalf("expected 403 %s, got %d %s", CodeCannotDelete, domainErr.Status, domainErr.Code)
	}
}

func TestManagerReusedWhileUUIDMatches(t *testing.T) {
	runs := 0
	svc := newTestService(&fakeStore{})
	svc.registrars = []settings.Registrar{
		settings.RegistrarFunc(func(r *settings.Registry) { runs++ }),
	}

	ctx := context.Background()
	if _, err := svc.resolveManager(ctx, testUUID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.resolveManager(ctx, testUUID); err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Fatalf("expected registrars to run once for a repeated uuid, ran %d times", runs)
	}

	other := strings.Replace(testUUID, "2f3c", "aaaa", 1)
	if _, err := svc.resolveManager(ctx, other); err != nil {
		t.Fatal(err)
	}
	if runs != 2 {
		t.Fatalf("expected registrars to run again for a new uuid, ran %d times", runs)
	}
}

func TestResolveManagerIsolatesRequests(t *testing.T) {
	fs := &fakeStore{
		changesetIDByUUIDFn: func(context.Context, string) (int64, error) { return 5, nil },
	}
	svc := newTestService(fs)
	ctx := context.Background()

	first, err := svc.resolveManager(ctx, testUUID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.resolveManager(ctx, testUUID)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("each request must get its own manager")
	}
	if first.Settings() != second.Settings() {
		t.Fatal("requests for the same uuid should share one registry")
	}

	first.changesetID = 99
	if second.ChangesetID() != 5 {
		t.Fatalf("mutating one request's manager must not leak into another, got %d", second.ChangesetID())
	}
}

func TestManagerConcurrentCreateAndResolve(t *testing.T) {
	existing := store.Changeset{ID: 7, UUID: testUUID, Status: store.StatusAutoDraft, AuthorID: 7, Settings: "{}"}
	fs := &fakeStore{
		insertChangesetFn: func(context.Context, store.Changeset) (int64, error) { return 7, nil },
		getChangesetFn:    func(context.Context, int64) (store.Changeset, error) { return existing, nil },
	}
	svc := newTestService(fs)

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 50; i++ {
			if _, _, err := svc.CreateChangeset(context.Background(), adminSession(), ChangesetInput{UUID: testUUID}); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for i := 0; i < 50; i++ {
		mgr, err := svc.resolveManager(context.Background(), testUUID)
		if err != nil {
			t.Fatal(err)
		}
		_ = mgr.ChangesetID()
	}
	if err := <-done; err != nil {
		t.Fatalf("concurrent create: %v", err)
	}
}

func TestListRecountsWhenPageEmpty(t *testing.T) {
	countCalls := 0
	fs := &fakeStore{
		queryChangesetsFn: func(context.Context, store.QueryVars) ([]store.Changeset, int, error) {
			return nil, 0, nil
		},
		countChangesetsFn: func(_ context.Context, vars store.QueryVars) (int, error) {
			countCalls++
			if _, ok := vars[store.VarPaged]; ok {
				t.Fatal("recount must drop the paged var")
			}
			return 25, nil
		},
	}
	svc := newTestService(fs)

	params := ListParams{Context: "view", Status: []string{"any"}, Order: "desc", OrderBy: "date", Page: 9, PerPage: 10}
	_, err := svc.ListChangesets(context.Background(), adminSession(), params)
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodeInvalidPageNumber || domainErr.Status != 400 {
		t.Fatalf("expected 400 %s, got %d %s", CodeInvalidPageNumber, domainErr.Status, domainErr.Code)
	}
	if countCalls != 1 {
		t.Fatalf("expected exactly one recount, got %d", countCalls)
	}
}

func TestListEmptyCollectionIsNotAnError(t *testing.T) {
	svc := newTestService(&fakeStore{})

	params := ListParams{Context: "view", Status: []string{store.StatusAutoDraft}, Order: "desc", OrderBy: "date", Page: 2, PerPage: 10}
	result, err := svc.ListChangesets(context.Background(), adminSession(), params)
	if err != nil {
		t.Fatalf("ListChangesets: %v", err)
	}
	if result.Total != 0 || result.TotalPages != 0 {
		t.Fatalf("expected zero totals, got %d/%d", result.Total, result.TotalPages)
	}
	if len(result.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(result.Items))
	}
}

func TestListStatusRequiresEditCapability(t *testing.T) {
	svc := newTestService(&fakeStore{})
	sess := Session{UserID: 2, Role: "subscriber"}

	params := ListParams{Context: "view", Status: []string{store.StatusDraft}, Order: "desc", OrderBy: "date", Page: 1, PerPage: 10}
	_, err := svc.ListChangesets(context.Background(), sess, params)
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodeForbiddenStatus || domainErr.Status != 403 {
		t.Fatalf("expected 403 %s, got %d %s", CodeForbiddenStatus, domainErr.Status, domainErr.Code)
	}
}

func TestGetChangesetEditContextForbidden(t *testing.T) {
	existing := store.Changeset{ID: 5, UUID: testUUID, Status: store.StatusDraft, AuthorID: 7, Settings: "{}"}
	svc := newTestService(existingChangesetStore(existing, nil))
	sess := Session{UserID: 2, Role: "subscriber"}

	_, err := svc.GetChangesetItem(context.Background(), sess, testUUID, "edit")
	domainErr := domainErrOf(t, err)
	if domainErr.Code != CodeForbiddenContext || domainErr.Status != 403 {
		t.Fatalf("expected 403 %s, got %d %s", CodeForbiddenContext, domainErr.Status, domainErr.Code)
	}
}
