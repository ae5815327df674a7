package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const recordColumns = `id::text, name, phone, email, address, service_type, description,
		ai_category, ai_estimated_hours, ai_complexity, ai_recommendation,
		status, created_at, updated_at`

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db pgxQuerier) *PostgresRepository {
	if db == nil {
		panic("leads: db required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}

	stored := rec.clone()
	stored.ID = uuid.New().String()
	stored.Status = StatusNew

	query := `
		INSERT INTO leads (id, name, phone, email, address, service_type, description,
			ai_category, ai_estimated_hours, ai_complexity, ai_recommendation, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		stored.ID,
		stored.Name,
		stored.Phone,
		stored.Email,
		stored.Address,
		stored.ServiceType,
		stored.Description,
		stored.AICategory,
		stored.AIEstimatedHours,
		stored.AIComplexity,
		stored.AIRecommendation,
		string(stored.Status),
	).Scan(&stored.CreatedAt, &stored.UpdatedAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	stored.CreatedAt = stored.CreatedAt.UTC()
	stored.UpdatedAt = stored.UpdatedAt.UTC()
	return stored, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrLeadNotFound
	}
	query := `SELECT ` + recordColumns + ` FROM leads WHERE id = $1`
	rec, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	filter = filter.normalize()

	query := `SELECT ` + recordColumns + ` FROM leads`
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

// UpdateStatus moves a lead through the lifecycle. The write is conditional
// on the status read, so a concurrent change surfaces as ErrStatusConflict.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Record, error) {
	status, err := ParseStatus(string(status))
	if err != nil {
		return nil, err
	}
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(status) {
		return nil, ErrInvalidTransition
	}

	query := `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING ` + recordColumns
	rec, err := scanRecord(r.db.QueryRow(ctx, query, id, string(status), string(current.Status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("leads: update status failed: %w", err)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var status string
	if err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Phone,
		&rec.Email,
		&rec.Address,
		&rec.ServiceType,
		&rec.Description,
		&rec.AICategory,
		&rec.AIEstimatedHours,
		&rec.AIComplexity,
		&rec.AIRecommendation,
		&status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}
