package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const userColumns = `id, email, full_name, password_hash, role, enabled, token_version, created_at`

func (q *queries) CreateUser(ctx context.Context, u *entity.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	const stmt = `
		INSERT INTO users (email, full_name, password_hash, role, enabled, token_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := q.db.QueryRow(ctx, stmt,
		u.Email, u.FullName, u.PasswordHash, string(u.Role), u.Enabled, u.TokenVersion, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return wrap(err, fmt.Sprintf("email %s is already registered", u.Email), "create user")
	}
	return nil
}

func (q *queries) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return u, nil
}

func (q *queries) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = $1`, email))
	if err != nil {
		return nil, notFound(err, "user", email)
	}
	return u, nil
}

func (q *queries) ListUsersByRole(ctx context.Context, role entity.Role, page ports.Page) ([]entity.User, error) {
	page = page.Normalize()
	rows, err := q.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		string(role), page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list %s users: %w", role, err)
	}
	defer rows.Close()

	var out []entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (q *queries) SetUserEnabled(ctx context.Context, id int64, enabled bool) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE users
		SET    enabled = $1,
		       token_version = CASE WHEN $1 THEN token_version ELSE token_version + 1 END
		WHERE  id = $2`, enabled, id)
	if err != nil {
		return fmt.Errorf("postgres: set user %d enabled: %w", id, err)
	}
	return expectOneRow(tag, "user", id)
}

func (q *queries) SetUserRole(ctx context.Context, id int64, role entity.Role) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE users SET role = $1, token_version = token_version + 1 WHERE id = $2`, string(role), id)
	if err != nil {
		return fmt.Errorf("postgres: set user %d role: %w", id, err)
	}
	return expectOneRow(tag, "user", id)
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &role, &u.Enabled, &u.TokenVersion, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	return &u, nil
}
