// Package store persists insights to the relational insight store. Both
// tiers land in one table; the metainsight flag is the boundary the
// retrieval/ranking collaborator queries against.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lilac-app/insightd/internal/insight"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the insights table if it does not exist. The
// metainsight column holds 0 or 1, matching what the retrieval side filters
// on.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS insights (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			tagline TEXT NOT NULL,
			description TEXT NOT NULL,
			context TEXT NOT NULL,
			supporting_evidence TEXT NOT NULL,
			metainsight INTEGER NOT NULL CHECK (metainsight IN (0, 1)),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure insights schema: %w", err)
	}
	return nil
}

// WriteInsight inserts one insight row. Rows are immutable after insert.
func (s *Store) WriteInsight(ctx context.Context, in insight.Insight) (uuid.UUID, error) {
	id := uuid.New()
	meta := 0
	if in.Meta {
		meta = 1
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO insights (id, title, tagline, description, context, supporting_evidence, metainsight)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, in.Title, in.Tagline, in.Description, in.Context, in.SupportingEvidence, meta,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert insight: %w", err)
	}
	return id, nil
}

// InsightRow is one persisted insight as read back from the store.
type InsightRow struct {
	ID                 uuid.UUID
	Title              string
	Tagline            string
	Description        string
	Context            string
	SupportingEvidence string
	Meta               bool
	CreatedAt          time.Time
}

// ListInsights returns insights of one tier, newest first.
func (s *Store) ListInsights(ctx context.Context, meta bool) ([]InsightRow, error) {
	want := 0
	if meta {
		want = 1
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, tagline, description, context, supporting_evidence, metainsight, created_at
		FROM insights WHERE metainsight = $1
		ORDER BY created_at DESC`, want)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	var out []InsightRow
	for rows.Next() {
		var r InsightRow
		var metaInt int
		if err := rows.Scan(&r.ID, &r.Title, &r.Tagline, &r.Description, &r.Context, &r.SupportingEvidence, &metaInt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		r.Meta = metaInt == 1
		out = append(out, r)
	}
	return out, rows.Err()
}
