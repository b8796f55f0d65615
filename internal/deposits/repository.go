package deposits

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pesaflow/pesaflow/internal/ledger"
)

var (
	// ErrDuplicateCheckoutRequest indicates the provider correlation id is
	// already tracked by another deposit.
	ErrDuplicateCheckoutRequest = errors.New("checkout request id already exists")
	// ErrDepositNotFound indicates no deposit matches the lookup key.
	ErrDepositNotFound = errors.New("deposit not found")
)

// Repository persists deposit attempts and their callback verdicts.
type Repository interface {
	Create(ctx context.Context, dep Deposit) error
	FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (Deposit, error)
	UpdateStatus(ctx context.Context, checkoutRequestID, status, receipt string) error
	StoreCallbackPayload(ctx context.Context, checkoutRequestID string, payload []byte) error
}

// PostgresRepository stores deposits in PostgreSQL. Transfer identifiers are
// kept as NUMERIC columns since they exceed the bigint range.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a Postgres-backed deposit repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, dep Deposit) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO deposits (
			id, user_id, amount_cents, status,
			checkout_request_id, merchant_request_id,
			pending_transfer_id, post_transfer_id, void_transfer_id,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9::numeric, $10, $10)`,
		dep.ID, dep.UserID, int64(dep.Amount), dep.Status,
		dep.CheckoutRequestID, dep.MerchantRequestID,
		dep.PendingTransferID.String(), dep.PostTransferID.String(), dep.VoidTransferID.String(),
		dep.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateCheckoutRequest
	}
	if err != nil {
		return fmt.Errorf("insert deposit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (Deposit, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, amount_cents, status,
		       checkout_request_id, merchant_request_id, COALESCE(receipt, ''),
		       pending_transfer_id::text, post_transfer_id::text, void_transfer_id::text,
		       created_at, updated_at
		FROM deposits
		WHERE checkout_request_id = $1`,
		checkoutRequestID,
	)

	var (
		dep                       Deposit
		amount                    int64
		pendingID, postID, voidID string
	)
	err := row.Scan(
		&dep.ID, &dep.UserID, &amount, &dep.Status,
		&dep.CheckoutRequestID, &dep.MerchantRequestID, &dep.Receipt,
		&pendingID, &postID, &voidID,
		&dep.CreatedAt, &dep.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Deposit{}, ErrDepositNotFound
	}
	if err != nil {
		return Deposit{}, fmt.Errorf("find deposit: %w", err)
	}

	dep.Amount = uint64(amount)
	if dep.PendingTransferID, err = ledger.ParseUint128(pendingID); err != nil {
		return Deposit{}, fmt.Errorf("decode pending transfer id: %w", err)
	}
	if dep.PostTransferID, err = ledger.ParseUint128(postID); err != nil {
		return Deposit{}, fmt.Errorf("decode post transfer id: %w", err)
	}
	if dep.VoidTransferID, err = ledger.ParseUint128(voidID); err != nil {
		return Deposit{}, fmt.Errorf("decode void transfer id: %w", err)
	}
	return dep, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, checkoutRequestID, status, receipt string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE deposits
		SET status = $2, receipt = NULLIF($3, ''), updated_at = now()
		WHERE checkout_request_id = $1`,
		checkoutRequestID, status, receipt,
	)
	if err != nil {
		return fmt.Errorf("update deposit status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDepositNotFound
	}
	return nil
}

func (r *PostgresRepository) StoreCallbackPayload(ctx context.Context, checkoutRequestID string, payload []byte) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE deposits
		SET raw_callback = $2::jsonb, updated_at = now()
		WHERE checkout_request_id = $1`,
		checkoutRequestID, payload,
	)
	if err != nil {
		return fmt.Errorf("store callback payload: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDepositNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
