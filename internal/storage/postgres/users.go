package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
)

type userRepository struct {
	db querier
}

const userColumns = `id, login, password_hash, role, status, created_at`

func (r *userRepository) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash, role, status) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	u := model.User{Login: login, PasswordHash: passwordHash, Role: role, Status: model.UserStatusActive}
	err := r.db.QueryRow(ctx, query, login, passwordHash, string(role), string(u.Status)).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE login=$1`
	return scanUser(r.db.QueryRow(ctx, query, login))
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepository) SetStatus(ctx context.Context, id int64, status model.UserStatus) error {
	const query = `UPDATE users SET status=$2 WHERE id=$1`
	tag, err := r.db.Exec(ctx, query, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u            model.User
		role, status string
	)
	if err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &role, &status, &u.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	u.Role = model.Role(role)
	u.Status = model.UserStatus(status)
	return &u, nil
}
