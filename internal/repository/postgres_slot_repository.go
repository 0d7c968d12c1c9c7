package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rifahub/backend/internal/domain"
)

const slotColumns = `raffle_id, number, status,
	holder_name, holder_tax_id, holder_phone,
	is_winner, reserved_at, updated_at`

// PostgresSlotRepository implements SlotRepository using PostgreSQL.
// Every state transition goes through a single conditional UPDATE, so the
// database row is the only serialization point.
type PostgresSlotRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSlotRepository creates a new PostgresSlotRepository
func NewPostgresSlotRepository(pool *pgxpool.Pool) *PostgresSlotRepository {
	return &PostgresSlotRepository{pool: pool}
}

func (r *PostgresSlotRepository) scanSlot(row pgx.Row) (*domain.Slot, error) {
	slot := &domain.Slot{}
	var holderName, holderTaxID, holderPhone *string
	err := row.Scan(
		&slot.RaffleID,
		&slot.Number,
		&slot.Status,
		&holderName,
		&holderTaxID,
		&holderPhone,
		&slot.IsWinner,
		&slot.ReservedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if holderTaxID != nil {
		slot.Holder = &domain.Holder{
			TaxID: *holderTaxID,
		}
		if holderName != nil {
			slot.Holder.Name = *holderName
		}
		if holderPhone != nil {
			slot.Holder.Phone = *holderPhone
		}
	}
	return slot, nil
}

// CreateInventory creates the full slot set for a raffle in one transaction
func (r *PostgresSlotRepository) CreateInventory(ctx context.Context, raffleID string, totalSlots int) error {
	if totalSlots <= 0 {
		return fmt.Errorf("total slots must be positive, got %d", totalSlots)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM slots WHERE raffle_id = $1)`, raffleID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrAlreadyInitialized
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO slots (raffle_id, number, status, updated_at)
		SELECT $1, gs, $2, now() FROM generate_series(1, $3) AS gs
	`, raffleID, domain.SlotStatusAvailable, totalSlots)
	if err != nil {
		// Two concurrent initializers race past the exists check; the
		// primary key turns the loser into AlreadyInitialized.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyInitialized
		}
		return err
	}

	return tx.Commit(ctx)
}

// GetOccupied returns the numbers not currently available
func (r *PostgresSlotRepository) GetOccupied(ctx context.Context, raffleID string) ([]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT number FROM slots
		WHERE raffle_id = $1 AND status <> $2
		ORDER BY number ASC
	`, raffleID, domain.SlotStatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// CompareAndSetStatus atomically applies a conditional slot transition
func (r *PostgresSlotRepository) CompareAndSetStatus(ctx context.Context, raffleID string, number int, cas SlotCAS) (bool, error) {
	var holderName, holderTaxID, holderPhone *string
	if cas.NewHolder != nil {
		holderName = &cas.NewHolder.Name
		holderTaxID = &cas.NewHolder.TaxID
		holderPhone = &cas.NewHolder.Phone
	}

	var reservedAt *time.Time
	if cas.NewStatus == domain.SlotStatusReserved {
		now := time.Now()
		reservedAt = &now
	}

	query := `
		UPDATE slots
		SET status = $1,
			holder_name = $2, holder_tax_id = $3, holder_phone = $4,
			reserved_at = $5, updated_at = now()
		WHERE raffle_id = $6 AND number = $7 AND status = $8`
	args := []interface{}{
		cas.NewStatus,
		holderName, holderTaxID, holderPhone,
		reservedAt,
		raffleID, number, cas.ExpectedStatus,
	}

	if cas.ExpectedHolder != nil {
		query += ` AND holder_tax_id = $9 AND holder_phone = $10`
		args = append(args, cas.ExpectedHolder.TaxID, cas.ExpectedHolder.Phone)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// GetSlot retrieves a single slot
func (r *PostgresSlotRepository) GetSlot(ctx context.Context, raffleID string, number int) (*domain.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE raffle_id = $1 AND number = $2`
	return r.scanSlot(r.pool.QueryRow(ctx, query, raffleID, number))
}

// ListByRaffle retrieves every slot of a raffle ordered by number
func (r *PostgresSlotRepository) ListByRaffle(ctx context.Context, raffleID string) ([]*domain.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE raffle_id = $1 ORDER BY number ASC`
	rows, err := r.pool.Query(ctx, query, raffleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectSlots(rows)
}

// ListConfirmedNumbers returns confirmed numbers ordered ascending
func (r *PostgresSlotRepository) ListConfirmedNumbers(ctx context.Context, raffleID string) ([]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT number FROM slots
		WHERE raffle_id = $1 AND status = $2
		ORDER BY number ASC
	`, raffleID, domain.SlotStatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// ListExpiredReservations returns reservations older than the cutoff
func (r *PostgresSlotRepository) ListExpiredReservations(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots
		WHERE status = $1 AND reserved_at < $2
		ORDER BY reserved_at ASC
		LIMIT $3`
	rows, err := r.pool.Query(ctx, query, domain.SlotStatusReserved, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectSlots(rows)
}

// SetWinner flags a slot as the raffle winner
func (r *PostgresSlotRepository) SetWinner(ctx context.Context, raffleID string, number int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE slots SET is_winner = TRUE, updated_at = now()
		WHERE raffle_id = $1 AND number = $2
	`, raffleID, number)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

// FindByHolder returns all slots held by a buyer identity
func (r *PostgresSlotRepository) FindByHolder(ctx context.Context, taxID, phone string) ([]*domain.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots
		WHERE holder_tax_id = $1 AND holder_phone = $2
		ORDER BY raffle_id, number ASC`
	rows, err := r.pool.Query(ctx, query, taxID, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectSlots(rows)
}

// CountByStatus counts a raffle's slots in the given status
func (r *PostgresSlotRepository) CountByStatus(ctx context.Context, raffleID, status string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM slots WHERE raffle_id = $1 AND status = $2
	`, raffleID, status).Scan(&count)
	return count, err
}

// DeleteByRaffle removes all slots of a raffle
func (r *PostgresSlotRepository) DeleteByRaffle(ctx context.Context, raffleID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM slots WHERE raffle_id = $1`, raffleID)
	return err
}

func (r *PostgresSlotRepository) collectSlots(rows pgx.Rows) ([]*domain.Slot, error) {
	var slots []*domain.Slot
	for rows.Next() {
		slot, err := r.scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}
