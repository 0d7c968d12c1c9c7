package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rifahub/backend/internal/domain"
)

const paymentColumns = `id, kind, reference_id, numbers, pledge_id, quantity,
	holder_name, holder_tax_id, holder_phone,
	amount, method, status, COALESCE(provider_ref, '') as provider_ref,
	created_at, updated_at`

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository
func NewPostgresPaymentRepository(pool *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

func (r *PostgresPaymentRepository) scanPayment(row pgx.Row) (*domain.Payment, error) {
	payment := &domain.Payment{}
	var numbers []int32
	var pledgeID *string
	err := row.Scan(
		&payment.ID,
		&payment.Kind,
		&payment.ReferenceID,
		&numbers,
		&pledgeID,
		&payment.Quantity,
		&payment.Holder.Name,
		&payment.Holder.TaxID,
		&payment.Holder.Phone,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.ProviderRef,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	for _, n := range numbers {
		payment.Numbers = append(payment.Numbers, int(n))
	}
	if pledgeID != nil {
		payment.PledgeID = *pledgeID
	}
	return payment, nil
}

// Create creates a new payment record
func (r *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	numbers := make([]int32, len(payment.Numbers))
	for i, n := range payment.Numbers {
		numbers[i] = int32(n)
	}
	var pledgeID *string
	if payment.PledgeID != "" {
		pledgeID = &payment.PledgeID
	}

	query := `
		INSERT INTO payments (id, kind, reference_id, numbers, pledge_id, quantity,
			holder_name, holder_tax_id, holder_phone,
			amount, method, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		payment.ID,
		payment.Kind,
		payment.ReferenceID,
		numbers,
		pledgeID,
		payment.Quantity,
		payment.Holder.Name,
		payment.Holder.TaxID,
		payment.Holder.Phone,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	return err
}

// GetByID retrieves a payment by ID
func (r *PostgresPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.scanPayment(r.pool.QueryRow(ctx, query, id))
}

// UpdateStatus atomically moves a payment from expected to next status
func (r *PostgresPaymentRepository) UpdateStatus(ctx context.Context, id, expected, next string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, next, id, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetProviderRef records the provider's session reference
func (r *PostgresPaymentRepository) SetProviderRef(ctx context.Context, id, providerRef string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE payments SET provider_ref = $1, updated_at = now()
		WHERE id = $2
	`, providerRef, id)
	return err
}

// ListPendingByOrganizer returns pending payments for the organizer's
// raffles and campaigns, oldest first
func (r *PostgresPaymentRepository) ListPendingByOrganizer(ctx context.Context, organizerID string) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE status = 'pending' AND (
			(kind = 'raffle' AND reference_id IN (SELECT id FROM raffles WHERE organizer_id = $1)) OR
			(kind = 'campaign' AND reference_id IN (SELECT id FROM campaigns WHERE organizer_id = $1))
		)
		ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
