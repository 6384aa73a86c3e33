package postgres

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/ignite/trader-link/internal/domain"
	"github.com/ignite/trader-link/internal/service/linking"
)

// AccountRepo implements linking.Directory. Credentials are stored as
// salted SHA-256 digests; verification happens in the platform's login
// stack, not here.
type AccountRepo struct{ db *sql.DB }

// NewAccountRepo creates a Postgres-backed identity directory.
func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

const accountColumns = `id, login, email, display_name, role, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(&a.ID, &a.Login, &a.Email, &a.DisplayName, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AccountRepo) accountWhere(ctx context.Context, op, where string, arg interface{}) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE `+where,
		arg)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, linking.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (r *AccountRepo) Account(ctx context.Context, id string) (*domain.Account, error) {
	return r.accountWhere(ctx, "get account", `id = $1`, id)
}

func (r *AccountRepo) AccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.accountWhere(ctx, "get account by email", `LOWER(email) = LOWER($1)`, email)
}

func (r *AccountRepo) AccountByLogin(ctx context.Context, login string) (*domain.Account, error) {
	return r.accountWhere(ctx, "get account by login", `login = $1`, login)
}

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account, password string) (string, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, login, email, display_name, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	`, a.ID, a.Login, a.Email, a.DisplayName, a.Role, hash)
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}
	return a.ID, nil
}

func (r *AccountRepo) Update(ctx context.Context, a *domain.Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET display_name = $2, role = $3, updated_at = now()
		WHERE id = $1
	`, a.ID, a.DisplayName, a.Role)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return linking.ErrNotFound
	}
	return nil
}

func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return linking.ErrNotFound
	}
	return nil
}

// hashPassword salts and digests a credential for storage. The format is
// "<salt-hex>$<digest-hex>".
func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	sum := sha256.Sum256(append(salt, []byte(password)...))
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(sum[:]), nil
}
