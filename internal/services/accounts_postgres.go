package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AnshRaj112/landing-backend/internal/models"
	"github.com/AnshRaj112/landing-backend/pkg/utils"
)

const accountColumns = `id, username, email, full_name, password_hash, is_active, created_at, last_login`

const profileColumns = `id, user_id, phone, created_at, updated_at`

// PostgresAccountRepository is the AccountRepository backed by PostgreSQL
type PostgresAccountRepository struct {
	db *sql.DB
}

func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a         models.Account
		lastLogin sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.FullName, &a.PasswordHash, &a.IsActive, &a.CreatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLogin = &t
	}
	return &a, nil
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.ID, &p.UserID, &p.Phone, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresAccountRepository) findAccount(ctx context.Context, op, where string, arg any) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where+` ORDER BY id LIMIT 1`, arg)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr(op, err)
	}
	return a, nil
}

// FindByEmail matches case-insensitively; the oldest account wins when several share an email
func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findAccount(ctx, "find account by email", `LOWER(email) = LOWER($1)`, email)
}

func (r *PostgresAccountRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.findAccount(ctx, "find account by username", `LOWER(username) = LOWER($1)`, username)
}

func (r *PostgresAccountRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.findAccount(ctx, "find account by id", `id = $1`, id)
}

func (r *PostgresAccountRepository) GetOrCreateByEmail(ctx context.Context, email, passwordHash string) (*models.Account, bool, error) {
	existing, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	base := utils.DeriveUsername(email)
	for n := 0; n < maxUsernameAttempts; n++ {
		candidate := utils.UsernameCandidate(base, n)
		row := r.db.QueryRowContext(ctx, `
			INSERT INTO accounts (username, email, password_hash)
			VALUES ($1, $2, $3)
			ON CONFLICT (username) DO NOTHING
			RETURNING `+accountColumns, candidate, email, passwordHash)
		created, err := scanAccount(row)
		if err == nil {
			return created, true, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, persistErr("create account", err)
		}

		// Username taken: either a concurrent verification of this email won,
		// or another account holds the name and the next suffix is tried
		winner, err := r.FindByEmail(ctx, email)
		if err != nil {
			return nil, false, err
		}
		if winner != nil {
			return winner, false, nil
		}
	}
	return nil, false, persistErr("create account", fmt.Errorf("no free username for %q", base))
}

func (r *PostgresAccountRepository) CreateWithProfile(ctx context.Context, na NewAccount) (*models.Account, *models.Profile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, persistErr("begin signup", err)
	}
	defer tx.Rollback()

	var account *models.Account
	for n := 0; n < maxUsernameAttempts && account == nil; n++ {
		candidate := utils.UsernameCandidate(na.BaseUsername, n)
		row := tx.QueryRowContext(ctx, `
			INSERT INTO accounts (username, email, full_name, password_hash)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (username) DO NOTHING
			RETURNING `+accountColumns, candidate, na.Email, na.FullName, na.PasswordHash)
		account, err = scanAccount(row)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, persistErr("create account", err)
		}
	}
	if account == nil {
		return nil, nil, persistErr("create account", fmt.Errorf("no free username for %q", na.BaseUsername))
	}

	profile, err := scanProfile(tx.QueryRowContext(ctx, `
		INSERT INTO profiles (user_id, phone)
		VALUES ($1, $2)
		RETURNING `+profileColumns, account.ID, na.Phone))
	if err != nil {
		return nil, nil, persistErr("create profile", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, persistErr("commit signup", err)
	}
	return account, profile, nil
}

func (r *PostgresAccountRepository) GetOrCreateProfile(ctx context.Context, userID int64) (*models.Profile, bool, error) {
	profile, err := scanProfile(r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING `+profileColumns, userID))
	if err == nil {
		return profile, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, persistErr("create profile", err)
	}

	profile, err = r.FindProfile(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if profile == nil {
		return nil, false, persistErr("create profile", fmt.Errorf("profile for user %d conflicted but was not found", userID))
	}
	return profile, false, nil
}

func (r *PostgresAccountRepository) FindProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	profile, err := scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("find profile", err)
	}
	return profile, nil
}

func (r *PostgresAccountRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, persistErr("count accounts", err)
	}
	return n, nil
}

func (r *PostgresAccountRepository) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET last_login = NOW() WHERE id = $1`, id)
	return persistErr("update last login", err)
}
