package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rifahub/backend/internal/domain"
)

const campaignColumns = `id, organizer_id, title, COALESCE(description, '') as description,
	COALESCE(image_url, '') as image_url,
	unit_price, mode, featured, created_at, updated_at`

// PostgresCampaignRepository implements CampaignRepository using PostgreSQL
type PostgresCampaignRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCampaignRepository creates a new PostgresCampaignRepository
func NewPostgresCampaignRepository(pool *pgxpool.Pool) *PostgresCampaignRepository {
	return &PostgresCampaignRepository{pool: pool}
}

func (r *PostgresCampaignRepository) scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	campaign := &domain.Campaign{}
	err := row.Scan(
		&campaign.ID,
		&campaign.OrganizerID,
		&campaign.Title,
		&campaign.Description,
		&campaign.ImageURL,
		&campaign.UnitPrice,
		&campaign.Mode,
		&campaign.Featured,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return campaign, nil
}

// Create creates a new campaign
func (r *PostgresCampaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	query := `
		INSERT INTO campaigns (id, organizer_id, title, description, image_url,
			unit_price, mode, featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		campaign.ID,
		campaign.OrganizerID,
		campaign.Title,
		campaign.Description,
		campaign.ImageURL,
		campaign.UnitPrice,
		campaign.Mode,
		campaign.Featured,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	)
	return err
}

// GetByID retrieves a campaign by ID
func (r *PostgresCampaignRepository) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	return r.scanCampaign(r.pool.QueryRow(ctx, query, id))
}

// ListByOrganizer retrieves an organizer's campaigns, newest first
func (r *PostgresCampaignRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns
		WHERE organizer_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectCampaigns(rows)
}

// ListPublic retrieves campaigns for the public listing, featured first
func (r *PostgresCampaignRepository) ListPublic(ctx context.Context, limit, offset int) ([]*domain.Campaign, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM campaigns`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns
		ORDER BY featured DESC, created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns, err := r.collectCampaigns(rows)
	if err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// CountByOrganizer counts how many campaigns an organizer has
func (r *PostgresCampaignRepository) CountByOrganizer(ctx context.Context, organizerID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM campaigns WHERE organizer_id = $1`, organizerID,
	).Scan(&count)
	return count, err
}

// Delete removes a campaign
func (r *PostgresCampaignRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	return err
}

func (r *PostgresCampaignRepository) collectCampaigns(rows pgx.Rows) ([]*domain.Campaign, error) {
	var campaigns []*domain.Campaign
	for rows.Next() {
		campaign, err := r.scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, rows.Err()
}
