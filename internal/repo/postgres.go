package repo

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portstack/surgeops/internal/models"
)

//go:embed sql/*.sql
var migrationFS embed.FS

// OpenPostgres connects a pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations applies the embedded SQL files in name order. Every file is
// idempotent.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	names, err := migrationNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		body, err := migrationFS.ReadFile("sql/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
	}
	return nil
}

func migrationNames() ([]string, error) {
	entries, err := migrationFS.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// PostgresStore implements HistoryRepo on PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// RecordTransition inserts a transition. Replays of the same id are ignored.
func (s *PostgresStore) RecordTransition(ctx context.Context, t models.SurgeTransition) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	hotBlocks, err := json.Marshal(nonNil(t.HotBlocks))
	if err != nil {
		return fmt.Errorf("marshal hot blocks: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
        INSERT INTO surge_transitions
            (id, episode_id, from_phase, to_phase, reason, at, waiting_vessels, critical_alerts, avg_utilization, hot_blocks)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
        ON CONFLICT (id) DO NOTHING
    `, t.ID, t.EpisodeID, string(t.From), string(t.To), t.Reason, t.At, t.WaitingVessels, t.CriticalAlerts, t.AvgUtilization, string(hotBlocks))
	if err != nil {
		return fmt.Errorf("insert surge transition: %w", err)
	}
	return nil
}

// RecordDecision upserts the decision for a plan.
func (s *PostgresStore) RecordDecision(ctx context.Context, d models.PlanDecision) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO plan_decisions (plan_id, episode_id, accepted, notes, decided_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (plan_id) DO UPDATE
            SET accepted = EXCLUDED.accepted,
                notes = EXCLUDED.notes,
                decided_at = EXCLUDED.decided_at
    `, d.PlanID, d.EpisodeID, d.Accepted, d.Notes, d.DecidedAt)
	if err != nil {
		return fmt.Errorf("insert plan decision: %w", err)
	}
	return nil
}

// ListTransitions returns transitions at or after since, newest first.
func (s *PostgresStore) ListTransitions(ctx context.Context, since time.Time, limit int) ([]models.SurgeTransition, error) {
	limit = NormaliseLimit(limit)

	rows, err := s.pool.Query(ctx, `
        SELECT id, episode_id, from_phase, to_phase, reason, at, waiting_vessels, critical_alerts, avg_utilization, hot_blocks
        FROM surge_transitions
        WHERE ($1::timestamptz IS NULL OR at >= $1)
        ORDER BY at DESC
        LIMIT $2
    `, nullableTime(since), limit)
	if err != nil {
		return nil, fmt.Errorf("query surge transitions: %w", err)
	}
	defer rows.Close()

	results := make([]models.SurgeTransition, 0, limit)
	for rows.Next() {
		var (
			t             models.SurgeTransition
			from, to      string
			hotBlocksJSON []byte
		)
		if err := rows.Scan(
			&t.ID,
			&t.EpisodeID,
			&from,
			&to,
			&t.Reason,
			&t.At,
			&t.WaitingVessels,
			&t.CriticalAlerts,
			&t.AvgUtilization,
			&hotBlocksJSON,
		); err != nil {
			return nil, fmt.Errorf("scan surge transition: %w", err)
		}
		t.From = models.SurgePhase(from)
		t.To = models.SurgePhase(to)
		_ = json.Unmarshal(hotBlocksJSON, &t.HotBlocks)
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate surge transitions: %w", err)
	}
	return results, nil
}

// ListDecisions returns plan decisions, newest first.
func (s *PostgresStore) ListDecisions(ctx context.Context, limit int) ([]models.PlanDecision, error) {
	limit = NormaliseLimit(limit)

	rows, err := s.pool.Query(ctx, `
        SELECT plan_id, episode_id, accepted, notes, decided_at
        FROM plan_decisions
        ORDER BY decided_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("query plan decisions: %w", err)
	}
	defer rows.Close()

	results := make([]models.PlanDecision, 0, limit)
	for rows.Next() {
		var d models.PlanDecision
		if err := rows.Scan(&d.PlanID, &d.EpisodeID, &d.Accepted, &d.Notes, &d.DecidedAt); err != nil {
			return nil, fmt.Errorf("scan plan decision: %w", err)
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan decisions: %w", err)
	}
	return results, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
