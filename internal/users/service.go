package users

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-backoffice/atlas/internal/shared"
)

// Store abstracts persistence for the service.
type Store interface {
	ListUsers(ctx context.Context, filters ListFilters) ([]User, int, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	DeleteUser(ctx context.Context, id int64) error
	SetLock(ctx context.Context, id int64, locked bool) error
}

// Service implements user management operations.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// List returns a page of users and pagination metadata.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]User, shared.Pagination, error) {
	users, total, err := s.store.ListUsers(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

// Get fetches a single user.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.store.GetUser(ctx, id)
}

// Create hashes the password and inserts the account.
func (s *Service) Create(ctx context.Context, user User, password string) (User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	created, err := s.store.CreateUser(ctx, user, string(hashed))
	if err != nil {
		return User{}, err
	}
	s.logger.Info("user created",
		slog.Int64("user_id", created.ID),
		slog.String("username", created.Username))
	return created, nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.Int64("user_id", id))
	return nil
}

// SetLock locks or unlocks an account. Locked accounts keep their tokens
// but every permission check denies until the lock is lifted.
func (s *Service) SetLock(ctx context.Context, id int64, locked bool) error {
	if err := s.store.SetLock(ctx, id, locked); err != nil {
		return err
	}
	s.logger.Info("user lock changed", slog.Int64("user_id", id), slog.Bool("locked", locked))
	return nil
}
