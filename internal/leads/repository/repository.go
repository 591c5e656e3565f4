package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadscout_backend/internal/pipeline"
	"leadscout_backend/internal/quality"
	"leadscout_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMessage = "lead not found"

const leadColumns = `id, source, external_place_id, business_name, address, city, region, postal_code,
		country_code, phone, website_url, has_website, category, google_rating, ratings_count,
		website_host, has_contact_channel, quality_score, freshness_score, status,
		last_synced_at, source_updated_at, created_at, updated_at`

// Repo implements LeadsRepository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time checks that Repo satisfies both the local interface and the
// pipeline persistence port.
var (
	_ LeadsRepository         = (*Repo)(nil)
	_ pipeline.LeadRepository = (*Repo)(nil)
)

// UpsertLeads inserts or updates a batch on the (source, external_place_id)
// conflict key and returns the current rows. Leads without an external place
// ID carry a NULL key and always insert. Re-running the same batch is a no-op
// update, never a duplicate insert.
func (r *Repo) UpsertLeads(ctx context.Context, leads []quality.EnrichedLead) (pipeline.UpsertResult, error) {
	if len(leads) == 0 {
		return pipeline.UpsertResult{}, nil
	}

	query := `
		INSERT INTO leads (
			id, source, external_place_id, business_name, address, city, region, postal_code,
			country_code, phone, website_url, has_website, category, google_rating, ratings_count,
			website_host, has_contact_channel, quality_score, freshness_score, status,
			last_synced_at, source_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (source, external_place_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			region = EXCLUDED.region,
			postal_code = EXCLUDED.postal_code,
			country_code = EXCLUDED.country_code,
			phone = EXCLUDED.phone,
			website_url = EXCLUDED.website_url,
			has_website = EXCLUDED.has_website,
			category = EXCLUDED.category,
			google_rating = EXCLUDED.google_rating,
			ratings_count = EXCLUDED.ratings_count,
			website_host = EXCLUDED.website_host,
			has_contact_channel = EXCLUDED.has_contact_channel,
			quality_score = EXCLUDED.quality_score,
			freshness_score = EXCLUDED.freshness_score,
			status = EXCLUDED.status,
			last_synced_at = EXCLUDED.last_synced_at,
			source_updated_at = EXCLUDED.source_updated_at,
			updated_at = now()
		RETURNING id, source, COALESCE(external_place_id, ''), business_name, address, city, category, status`

	batch := &pgx.Batch{}
	for _, lead := range leads {
		batch.Queue(query,
			uuid.New(), lead.Source, nullableString(lead.ExternalPlaceID), lead.BusinessName,
			lead.Address, lead.City, lead.Region, lead.PostalCode, lead.CountryCode,
			lead.Phone, lead.WebsiteURL, lead.HasWebsite, lead.Category, lead.GoogleRating,
			lead.RatingsCount, lead.WebsiteHost, lead.HasContactChannel, lead.QualityScore,
			lead.FreshnessScore, lead.Status, lead.LastSyncedAt, lead.SourceUpdatedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	out := pipeline.UpsertResult{Rows: make([]pipeline.PersistedLead, 0, len(leads))}
	for range leads {
		var row pipeline.PersistedLead
		err := results.QueryRow().Scan(
			&row.ID, &row.Source, &row.ExternalPlaceID, &row.BusinessName,
			&row.Address, &row.City, &row.Category, &row.Status,
		)
		if err != nil {
			return pipeline.UpsertResult{}, fmt.Errorf("upsert leads: %w", err)
		}
		out.Rows = append(out.Rows, row)
	}

	out.PersistedCount = len(out.Rows)
	return out, nil
}

// GetByID retrieves a single lead.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead by id: %w", err)
	}
	return lead, nil
}

// GetByIDs retrieves leads for a set of IDs, preserving no particular order.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Lead, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get leads by ids: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// List retrieves leads with optional search, filters and paging.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Search != "" {
		placeholder := arg("%" + params.Search + "%")
		where = append(where, fmt.Sprintf("(business_name ILIKE %s OR address ILIKE %s)", placeholder, placeholder))
	}
	if params.City != "" {
		where = append(where, "city ILIKE "+arg(params.City))
	}
	if params.Category != "" {
		where = append(where, "category ILIKE "+arg("%"+params.Category+"%"))
	}
	if params.Status != "" {
		where = append(where, "status = "+arg(params.Status))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM leads WHERE " + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE ` + whereClause +
		` ORDER BY quality_score DESC, business_name ASC LIMIT ` + arg(params.Limit) + ` OFFSET ` + arg((params.Page-1)*params.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// Archive marks a lead archived. Archiving an already-archived lead is a
// no-op update.
func (r *Repo) Archive(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := `UPDATE leads SET status = $1, updated_at = now() WHERE id = $2
		RETURNING ` + leadColumns

	row := r.pool.QueryRow(ctx, query, quality.StatusArchived, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("archive lead: %w", err)
	}
	return lead, nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&lead.ID, &lead.Source, &lead.ExternalPlaceID, &lead.BusinessName, &lead.Address,
		&lead.City, &lead.Region, &lead.PostalCode, &lead.CountryCode, &lead.Phone,
		&lead.WebsiteURL, &lead.HasWebsite, &lead.Category, &lead.GoogleRating, &lead.RatingsCount,
		&lead.WebsiteHost, &lead.HasContactChannel, &lead.QualityScore, &lead.FreshnessScore,
		&lead.Status, &lead.LastSyncedAt, &lead.SourceUpdatedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return Lead{}, err
	}

	lead.CreatedAt = createdAt.Format(time.RFC3339)
	lead.UpdatedAt = updatedAt.Format(time.RFC3339)
	return lead, nil
}

func scanLeads(rows pgx.Rows) ([]Lead, error) {
	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
