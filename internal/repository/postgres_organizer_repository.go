package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rifahub/backend/internal/domain"
)

const organizerColumns = `id, name, email, COALESCE(payout_key, '') as payout_key,
	plan_tier, created_at, updated_at`

// PostgresOrganizerRepository implements OrganizerRepository using PostgreSQL
type PostgresOrganizerRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOrganizerRepository creates a new PostgresOrganizerRepository
func NewPostgresOrganizerRepository(pool *pgxpool.Pool) *PostgresOrganizerRepository {
	return &PostgresOrganizerRepository{pool: pool}
}

func (r *PostgresOrganizerRepository) scanOrganizer(row pgx.Row) (*domain.Organizer, error) {
	organizer := &domain.Organizer{}
	err := row.Scan(
		&organizer.ID,
		&organizer.Name,
		&organizer.Email,
		&organizer.PayoutKey,
		&organizer.PlanTier,
		&organizer.CreatedAt,
		&organizer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return organizer, nil
}

// Create creates a new organizer
func (r *PostgresOrganizerRepository) Create(ctx context.Context, organizer *domain.Organizer) error {
	query := `
		INSERT INTO organizers (id, name, email, payout_key, plan_tier, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		organizer.ID,
		organizer.Name,
		organizer.Email,
		organizer.PayoutKey,
		organizer.PlanTier,
		organizer.CreatedAt,
		organizer.UpdatedAt,
	)
	return err
}

// GetByID retrieves an organizer by ID
func (r *PostgresOrganizerRepository) GetByID(ctx context.Context, id string) (*domain.Organizer, error) {
	query := `SELECT ` + organizerColumns + ` FROM organizers WHERE id = $1`
	return r.scanOrganizer(r.pool.QueryRow(ctx, query, id))
}

// Update updates an organizer's profile fields
func (r *PostgresOrganizerRepository) Update(ctx context.Context, organizer *domain.Organizer) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE organizers
		SET name = $1, payout_key = $2, plan_tier = $3, updated_at = now()
		WHERE id = $4
	`, organizer.Name, organizer.PayoutKey, organizer.PlanTier, organizer.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrganizerNotFound
	}
	return nil
}
