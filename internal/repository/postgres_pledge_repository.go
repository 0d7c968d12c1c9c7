package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rifahub/backend/internal/domain"
)

const pledgeColumns = `id, campaign_id, quantity,
	holder_name, holder_tax_id, holder_phone,
	status, created_at, updated_at`

// PostgresPledgeRepository implements PledgeRepository using PostgreSQL
type PostgresPledgeRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPledgeRepository creates a new PostgresPledgeRepository
func NewPostgresPledgeRepository(pool *pgxpool.Pool) *PostgresPledgeRepository {
	return &PostgresPledgeRepository{pool: pool}
}

func (r *PostgresPledgeRepository) scanPledge(row pgx.Row) (*domain.Pledge, error) {
	pledge := &domain.Pledge{}
	err := row.Scan(
		&pledge.ID,
		&pledge.CampaignID,
		&pledge.Quantity,
		&pledge.Holder.Name,
		&pledge.Holder.TaxID,
		&pledge.Holder.Phone,
		&pledge.Status,
		&pledge.CreatedAt,
		&pledge.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return pledge, nil
}

// Create creates a new pledge
func (r *PostgresPledgeRepository) Create(ctx context.Context, pledge *domain.Pledge) error {
	query := `
		INSERT INTO pledges (id, campaign_id, quantity,
			holder_name, holder_tax_id, holder_phone,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		pledge.ID,
		pledge.CampaignID,
		pledge.Quantity,
		pledge.Holder.Name,
		pledge.Holder.TaxID,
		pledge.Holder.Phone,
		pledge.Status,
		pledge.CreatedAt,
		pledge.UpdatedAt,
	)
	return err
}

// GetByID retrieves a pledge by ID
func (r *PostgresPledgeRepository) GetByID(ctx context.Context, id string) (*domain.Pledge, error) {
	query := `SELECT ` + pledgeColumns + ` FROM pledges WHERE id = $1`
	return r.scanPledge(r.pool.QueryRow(ctx, query, id))
}

// UpdateStatus atomically moves a pledge from expected to next status
func (r *PostgresPledgeRepository) UpdateStatus(ctx context.Context, id, expected, next string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE pledges SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, next, id, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// FindByHolder returns all pledges of a buyer identity across campaigns
func (r *PostgresPledgeRepository) FindByHolder(ctx context.Context, taxID, phone string) ([]*domain.Pledge, error) {
	query := `SELECT ` + pledgeColumns + ` FROM pledges
		WHERE holder_tax_id = $1 AND holder_phone = $2
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, taxID, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pledges []*domain.Pledge
	for rows.Next() {
		pledge, err := r.scanPledge(rows)
		if err != nil {
			return nil, err
		}
		pledges = append(pledges, pledge)
	}
	return pledges, rows.Err()
}

// TopBuyers aggregates paid quantity per buyer for a campaign
func (r *PostgresPledgeRepository) TopBuyers(ctx context.Context, campaignID string, limit int) ([]*BuyerRank, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT holder_name, holder_tax_id, holder_phone, SUM(quantity) AS total
		FROM pledges
		WHERE campaign_id = $1 AND status = $2
		GROUP BY holder_name, holder_tax_id, holder_phone
		ORDER BY total DESC
		LIMIT $3
	`, campaignID, domain.PledgeStatusPaid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranks []*BuyerRank
	for rows.Next() {
		rank := &BuyerRank{}
		if err := rows.Scan(&rank.Holder.Name, &rank.Holder.TaxID, &rank.Holder.Phone, &rank.TotalQuantity); err != nil {
			return nil, err
		}
		ranks = append(ranks, rank)
	}
	return ranks, rows.Err()
}

// DeleteByCampaign removes all pledges of a campaign
func (r *PostgresPledgeRepository) DeleteByCampaign(ctx context.Context, campaignID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM pledges WHERE campaign_id = $1`, campaignID)
	return err
}
