package app

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const minPasswordLength = 8

type UserService struct {
	store  ports.Store
	tokens *auth.TokenIssuer
}

func NewUserService(store ports.Store, tokens *auth.TokenIssuer) *UserService {
	return &UserService{store: store, tokens: tokens}
}

type Session struct {
	AccessToken string
	User        *entity.User
}

// Register creates an enabled CUSTOMER.
func (s *UserService) Register(ctx context.Context, email, password, fullName string) (*entity.User, error) {
	return s.Create(ctx, email, password, fullName, entity.RoleCustomer)
}

// Create is the unrestricted form of Register, used by the CLI to bootstrap
// admins and employees.
func (s *UserService) Create(ctx context.Context, email, password, fullName string, role entity.Role) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("invalid email %q", email)
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Validation("password must have at least %d characters", minPasswordLength)
	}
	if !role.Valid() {
		return nil, apperr.Validation("unknown role %q", role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login never says whether the email or the password was wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if errIsNotFound(err) {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}
	if !u.Enabled {
		return nil, apperr.New(apperr.KindUnauthorized, "account is disabled")
	}

	token, err := s.tokens.Issue(u.ID, string(u.Role), u.TokenVersion)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, User: u}, nil
}

// Authenticate resolves a bearer token to the calling actor. The role comes
// from the stored user, not the token, and a token issued before the
// user's last token version bump is rejected.
func (s *UserService) Authenticate(ctx context.Context, raw string) (entity.Actor, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return entity.Actor{}, apperr.Wrap(apperr.KindUnauthorized, err, "invalid token")
	}
	id, err := claims.UserID()
	if err != nil {
		return entity.Actor{}, apperr.Wrap(apperr.KindUnauthorized, err, "invalid token")
	}

	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return entity.Actor{}, apperr.New(apperr.KindUnauthorized, "unknown user")
	}
	if err != nil {
		return entity.Actor{}, err
	}
	if !u.Enabled {
		return entity.Actor{}, apperr.New(apperr.KindUnauthorized, "account is disabled")
	}
	if u.TokenVersion != claims.TokenVersion {
		return entity.Actor{}, apperr.New(apperr.KindUnauthorized, "token has been revoked")
	}
	return entity.Actor{ID: u.ID, Role: u.Role}, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*entity.User, error) {
	return s.store.GetUser(ctx, id)
}

// CreateEmployee is the admin path for adding staff.
func (s *UserService) CreateEmployee(ctx context.Context, email, password, fullName string) (*entity.User, error) {
	return s.Create(ctx, email, password, fullName, entity.RoleEmployee)
}

func (s *UserService) ListEmployees(ctx context.Context, page ports.Page) ([]entity.User, error) {
	return s.store.ListUsersByRole(ctx, entity.RoleEmployee, page)
}

// Disable locks the account out and revokes every token issued to it.
// Admin accounts cannot be disabled.
func (s *UserService) Disable(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(q ports.Queries) error {
		u, err := q.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if u.Role == entity.RoleAdmin {
			return apperr.Validation("admin accounts cannot be disabled")
		}
		if err := q.SetUserEnabled(ctx, id, false); err != nil {
			return err
		}
		slog.InfoContext(ctx, "user disabled", "user_id", id)
		return nil
	})
}

func (s *UserService) Enable(ctx context.Context, id int64) error {
	if err := s.store.SetUserEnabled(ctx, id, true); err != nil {
		return err
	}
	slog.InfoContext(ctx, "user enabled", "user_id", id)
	return nil
}

// ChangeRole revokes the user's tokens so the next login carries the new
// role. An admin cannot be demoted.
func (s *UserService) ChangeRole(ctx context.Context, id int64, role entity.Role) (*entity.User, error) {
	role = entity.Role(strings.ToUpper(strings.TrimSpace(string(role))))
	if !role.Valid() {
		return nil, apperr.Validation("unknown role %q", role)
	}

	var out *entity.User
	err := s.store.InTx(ctx, func(q ports.Queries) error {
		u, err := q.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if u.Role == entity.RoleAdmin && role != entity.RoleAdmin {
			return apperr.Validation("admin accounts cannot change role")
		}
		if err := q.SetUserRole(ctx, id, role); err != nil {
			return err
		}
		out, err = q.GetUser(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user role changed", "user_id", id, "role", out.Role)
	return out, nil
}
