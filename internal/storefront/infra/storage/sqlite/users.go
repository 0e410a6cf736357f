package sqlite

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
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, stmt,
		u.Email, u.FullName, u.PasswordHash, string(u.Role), u.Enabled, u.TokenVersion, formatTime(u.CreatedAt))
	if err != nil {
		return wrap(err, fmt.Sprintf("email %s is already registered", u.Email), "create user")
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (q *queries) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return u, nil
}

func (q *queries) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user", email)
	}
	return u, nil
}

func (q *queries) ListUsersByRole(ctx context.Context, role entity.Role, page ports.Page) ([]entity.User, error) {
	page = page.Normalize()
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY id LIMIT ? OFFSET ?`,
		string(role), page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list %s users: %w", role, err)
	}
	defer rows.Close()

	var out []entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (q *queries) SetUserEnabled(ctx context.Context, id int64, enabled bool) error {
	bump := 0
	if !enabled {
		bump = 1
	}
	res, err := q.db.ExecContext(ctx,
		`UPDATE users SET enabled = ?, token_version = token_version + ? WHERE id = ?`, enabled, bump, id)
	if err != nil {
		return fmt.Errorf("sqlite: set user %d enabled: %w", id, err)
	}
	return expectOneRow(res, "user", id)
}

func (q *queries) SetUserRole(ctx context.Context, id int64, role entity.Role) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE users SET role = ?, token_version = token_version + 1 WHERE id = ?`, string(role), id)
	if err != nil {
		return fmt.Errorf("sqlite: set user %d role: %w", id, err)
	}
	return expectOneRow(res, "user", id)
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.Enabled, &u.TokenVersion, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseRFC3339(createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = t
	return &u, nil
}
