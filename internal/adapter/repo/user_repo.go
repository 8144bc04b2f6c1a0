package repo

import (
	"context"

	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
	"ngoledger/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// Create inserts the user and fills in the generated id and timestamp.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertUser, user.Username, user.PasswordHash)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		if infra.IsUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByUsername fetches a user by login name.
func (r *UserRepositoryPG) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByUsername, username))
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id))
}

// TokenFor returns the existing token of the user or stores newKey.
func (r *UserRepositoryPG) TokenFor(ctx context.Context, userID, newKey string) (string, error) {
	var key string
	if err := r.sql.QueryRow(ctx, sqlinline.QUpsertAuthToken, newKey, userID).Scan(&key); err != nil {
		return "", err
	}
	return key, nil
}

// UserIDForToken resolves an API token to its owner.
func (r *UserRepositoryPG) UserIDForToken(ctx context.Context, key string) (string, error) {
	var userID string
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectUserIDByToken, key).Scan(&userID); err != nil {
		if infra.IsNoRows(err) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return userID, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
