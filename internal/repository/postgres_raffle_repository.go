package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rifahub/backend/internal/domain"
)

const raffleColumns = `id, organizer_id, title, COALESCE(description, '') as description,
	COALESCE(image_url, '') as image_url,
	ticket_price, total_slots, status, winning_number,
	created_at, updated_at, closed_at`

// PostgresRaffleRepository implements RaffleRepository using PostgreSQL
type PostgresRaffleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRaffleRepository creates a new PostgresRaffleRepository
func NewPostgresRaffleRepository(pool *pgxpool.Pool) *PostgresRaffleRepository {
	return &PostgresRaffleRepository{pool: pool}
}

func (r *PostgresRaffleRepository) scanRaffle(row pgx.Row) (*domain.Raffle, error) {
	raffle := &domain.Raffle{}
	err := row.Scan(
		&raffle.ID,
		&raffle.OrganizerID,
		&raffle.Title,
		&raffle.Description,
		&raffle.ImageURL,
		&raffle.TicketPrice,
		&raffle.TotalSlots,
		&raffle.Status,
		&raffle.WinningNumber,
		&raffle.CreatedAt,
		&raffle.UpdatedAt,
		&raffle.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return raffle, nil
}

// Create creates a new raffle
func (r *PostgresRaffleRepository) Create(ctx context.Context, raffle *domain.Raffle) error {
	query := `
		INSERT INTO raffles (id, organizer_id, title, description, image_url,
			ticket_price, total_slots, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		raffle.ID,
		raffle.OrganizerID,
		raffle.Title,
		raffle.Description,
		raffle.ImageURL,
		raffle.TicketPrice,
		raffle.TotalSlots,
		raffle.Status,
		raffle.CreatedAt,
		raffle.UpdatedAt,
	)
	return err
}

// GetByID retrieves a raffle by ID
func (r *PostgresRaffleRepository) GetByID(ctx context.Context, id string) (*domain.Raffle, error) {
	query := `SELECT ` + raffleColumns + ` FROM raffles WHERE id = $1`
	return r.scanRaffle(r.pool.QueryRow(ctx, query, id))
}

// ListByOrganizer retrieves an organizer's raffles, newest first
func (r *PostgresRaffleRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Raffle, error) {
	query := `SELECT ` + raffleColumns + ` FROM raffles
		WHERE organizer_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectRaffles(rows)
}

// ListActive retrieves active raffles with pagination
func (r *PostgresRaffleRepository) ListActive(ctx context.Context, limit, offset int) ([]*domain.Raffle, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM raffles WHERE status = $1`, domain.RaffleStatusActive,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + raffleColumns + ` FROM raffles
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, domain.RaffleStatusActive, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	raffles, err := r.collectRaffles(rows)
	if err != nil {
		return nil, 0, err
	}
	return raffles, total, nil
}

// CountByOrganizer counts how many raffles an organizer has
func (r *PostgresRaffleRepository) CountByOrganizer(ctx context.Context, organizerID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM raffles WHERE organizer_id = $1`, organizerID,
	).Scan(&count)
	return count, err
}

// Close atomically moves an active raffle to closed with a winning number
func (r *PostgresRaffleRepository) Close(ctx context.Context, id string, winningNumber int, closedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE raffles
		SET status = $1, winning_number = $2, closed_at = $3, updated_at = now()
		WHERE id = $4 AND status = $5
	`, domain.RaffleStatusClosed, winningNumber, closedAt, id, domain.RaffleStatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a raffle
func (r *PostgresRaffleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM raffles WHERE id = $1`, id)
	return err
}

func (r *PostgresRaffleRepository) collectRaffles(rows pgx.Rows) ([]*domain.Raffle, error) {
	var raffles []*domain.Raffle
	for rows.Next() {
		raffle, err := r.scanRaffle(rows)
		if err != nil {
			return nil, err
		}
		raffles = append(raffles, raffle)
	}
	return raffles, rows.Err()
}
