package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ── Users ──

func (s *PostgresStore) EnsureUserByName(ctx context.Context, name string) (User, error) {
	const findUser = `SELECT id, display_name, email, role FROM users WHERE display_name = $1`
	var user User
	err := s.db.QueryRowContext(ctx, findUser, name).Scan(&user.ID, &user.DisplayName, &user.Email, &user.Role)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	insertUser := `
		INSERT INTO users (display_name, email, role)
		VALUES ($1, CONCAT(LOWER(REPLACE($1, ' ', '.')), '@local.glaze.dev'), 'editor')
		RETURNING id, display_name, email, role
	`
	if err := s.db.QueryRowContext(ctx, insertUser, name).Scan(&user.ID, &user.DisplayName, &user.Email, &user.Role); err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID int64) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, role FROM users WHERE id=$1
	`, userID).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.Role)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, role FROM users WHERE email=$1
	`, email).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.Role)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (display_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, user.DisplayName, user.Email, user.PasswordHash, user.Role).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// ── Refresh sessions (Postgres fallback when Redis is not configured) ──

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash string, userID int64, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	const query = `
		SELECT u.id, u.display_name, u.email, u.role
		FROM refresh_sessions rs
		JOIN users u ON u.id = rs.user_id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
	`
	var user User
	err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(&user.ID, &user.DisplayName, &user.Email, &user.Role)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_access_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_access_tokens WHERE jti=$1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

// ── Changesets ──

const changesetColumns = `id, uuid, status, author_id, title, settings, date, date_gmt, created_at, updated_at`

func scanChangeset(row interface{ Scan(...any) error }) (Changeset, error) {
	var (
		item    Changeset
		date    sql.NullTime
		dateGMT sql.NullTime
	)
	err := row.Scan(&item.ID, &item.UUID, &item.Status, &item.AuthorID, &item.Title,
		&item.Settings, &date, &dateGMT, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Changeset{}, err
	}
	if date.Valid {
		t := date.Time
		item.Date = &t
	}
	if dateGMT.Valid {
		t := dateGMT.Time
		item.DateGMT = &t
	}
	return item, nil
}

// ChangesetIDByUUID resolves the internal id for a uuid, or 0 when no
// changeset with that uuid exists.
func (s *PostgresStore) ChangesetIDByUUID(ctx context.Context, uuid string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM changesets WHERE uuid=$1`, uuid).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("resolve changeset uuid: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetChangeset(ctx context.Context, id int64) (Changeset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+changesetColumns+` FROM changesets WHERE id=$1`, id)
	return scanChangeset(row)
}

func (s *PostgresStore) InsertChangeset(ctx context.Context, item Changeset) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO changesets (uuid, status, author_id, title, settings, date, date_gmt)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, item.UUID, item.Status, item.AuthorID, item.Title, item.Settings, nullTime(item.Date), nullTime(item.DateGMT)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert changeset: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateChangeset(ctx context.Context, item Changeset) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE changesets
		SET status=$2, author_id=$3, title=$4, settings=$5, date=$6, date_gmt=$7, updated_at=NOW()
		WHERE id=$1
	`, item.ID, item.Status, item.AuthorID, item.Title, item.Settings, nullTime(item.Date), nullTime(item.DateGMT))
	if err != nil {
		return fmt.Errorf("update changeset: %w", err)
	}
	return nil
}

func (s *PostgresStore) TrashChangeset(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE changesets SET status=$2, updated_at=NOW() WHERE id=$1`, id, StatusTrash)
	if err != nil {
		return fmt.Errorf("trash changeset: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteChangeset(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM changesets WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete changeset: %w", err)
	}
	return nil
}

// QueryChangesets runs a bounded collection query. The returned total is the
// unpaged match count, taken from a window function — it comes back 0 when the
// requested page is past the end, which the pagination recount disambiguates.
func (s *PostgresStore) QueryChangesets(ctx context.Context, vars QueryVars) ([]Changeset, int, error) {
	where, args := buildChangesetFilter(vars)
	order := buildChangesetOrder(vars, &args)

	perPage := vars.Int(VarPerPage, 10)
	paged := vars.Int(VarPaged, 1)
	if paged < 1 {
		paged = 1
	}
	offset := (paged - 1) * perPage
	if raw, ok := vars[VarOffset]; ok {
		if n, ok := raw.(int); ok {
			offset = n
		}
	}

	args = append(args, perPage, offset)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total
		FROM changesets
		WHERE %s
		%s
		LIMIT $%d OFFSET $%d
	`, changesetColumns, where, order, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query changesets: %w", err)
	}
	defer rows.Close()

	items := make([]Changeset, 0)
	total := 0
	for rows.Next() {
		var (
			item    Changeset
			date    sql.NullTime
			dateGMT sql.NullTime
		)
		if err := rows.Scan(&item.ID, &item.UUID, &item.Status, &item.AuthorID, &item.Title,
			&item.Settings, &date, &dateGMT, &item.CreatedAt, &item.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan changeset: %w", err)
		}
		if date.Valid {
			t := date.Time
			item.Date = &t
		}
		if dateGMT.Valid {
			t := dateGMT.Time
			item.DateGMT = &t
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate changesets: %w", err)
	}
	return items, total, nil
}

// CountChangesets counts matches for the same filter set with pagination
// bounds ignored.
func (s *PostgresStore) CountChangesets(ctx context.Context, vars QueryVars) (int, error) {
	where, args := buildChangesetFilter(vars)
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM changesets WHERE `+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count changesets: %w", err)
	}
	return total, nil
}

// buildChangesetFilter translates query vars into a WHERE clause. The post
// type guard keeps the store honest should a second document type ever share
// the query path.
func buildChangesetFilter(vars QueryVars) (string, []any) {
	conditions := []string{"TRUE"}
	args := []any{}

	if postType := vars.String(VarPostType); postType != "" && postType != ChangesetType {
		conditions = append(conditions, "FALSE")
	}

	if authors := vars.Int64s(VarAuthorIn); len(authors) > 0 {
		args = append(args, authors)
		conditions = append(conditions, fmt.Sprintf("author_id = ANY($%d)", len(args)))
	}
	if excluded := vars.Int64s(VarAuthorNotIn); len(excluded) > 0 {
		args = append(args, excluded)
		conditions = append(conditions, fmt.Sprintf("NOT (author_id = ANY($%d))", len(args)))
	}

	statuses := vars.Strings(VarPostStatus)
	anyStatus := false
	for _, status := range statuses {
		if status == "any" {
			anyStatus = true
		}
	}
	if len(statuses) > 0 && !anyStatus {
		args = append(args, statuses)
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	if search := strings.TrimSpace(vars.String(VarSearch)); search != "" {
		args = append(args, "%"+search+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR settings::text ILIKE $%d)", len(args), len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

func buildChangesetOrder(vars QueryVars, args *[]any) string {
	direction := "DESC"
	if strings.EqualFold(vars.String(VarOrder), "asc") {
		direction = "ASC"
	}

	switch vars.String(VarOrderBy) {
	case OrderByID:
		return "ORDER BY id " + direction
	case OrderBySlug:
		return "ORDER BY uuid " + direction
	case OrderByTitle:
		return "ORDER BY title " + direction
	case OrderByRelevance:
		// The API layer guarantees a search term is present for relevance.
		*args = append(*args, vars.String(VarSearch))
		return fmt.Sprintf("ORDER BY ts_rank(fts, plainto_tsquery('english', $%d)) %s, updated_at DESC", len(*args), direction)
	default:
		return "ORDER BY COALESCE(date_gmt, created_at) " + direction
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
