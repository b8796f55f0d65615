package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pesaflow/pesaflow/internal/ledger"
)

var (
	// ErrPhoneExists indicates the phone number is already registered.
	ErrPhoneExists = errors.New("phone number already registered")
	// ErrUserNotFound indicates no user matches the given identifier.
	ErrUserNotFound = errors.New("user not found")
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByPhone(ctx context.Context, phone string) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. A duplicate phone number maps to
// ErrPhoneExists via the unique constraint.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, full_name, phone, kyc_status, pin_hash, ledger_account_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)`,
		userID, user.FullName, user.Phone, user.KYCStatus, user.PINHash, user.LedgerAccountID.String(), user.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return ErrPhoneExists
	}
	return err
}

// FindByID fetches a user by primary key.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, full_name, phone, kyc_status, pin_hash, ledger_account_id::text, created_at
        FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// FindByPhone fetches a user by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, full_name, phone, kyc_status, pin_hash, ledger_account_id::text, created_at
        FROM users WHERE phone = $1`, phone)
	return scanUser(row)
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		accountID string
		createdAt time.Time
		user      User
	)
	if err := row.Scan(&id, &user.FullName, &user.Phone, &user.KYCStatus, &user.PINHash, &accountID, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}

	parsed, err := ledger.ParseUint128(accountID)
	if err != nil {
		return User{}, err
	}
	user.ID = id.String()
	user.LedgerAccountID = parsed
	user.CreatedAt = createdAt.UTC()
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
