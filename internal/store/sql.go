package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/credence/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analyses (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	url               TEXT NOT NULL,
	title             TEXT NOT NULL,
	content           TEXT NOT NULL,
	credibility_score INTEGER NOT NULL,
	explanation       TEXT NOT NULL,
	summary           TEXT NOT NULL,
	final_verdict     TEXT NOT NULL,
	method            TEXT NOT NULL,
	quotes_synthetic  BOOLEAN NOT NULL DEFAULT FALSE,
	details           TEXT NOT NULL,
	created_at        TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_user_created ON analyses (user_id, created_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS analyses (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	url               TEXT NOT NULL,
	title             TEXT NOT NULL,
	content           TEXT NOT NULL,
	credibility_score INTEGER NOT NULL,
	explanation       TEXT NOT NULL,
	summary           TEXT NOT NULL,
	final_verdict     TEXT NOT NULL,
	method            TEXT NOT NULL,
	quotes_synthetic  BOOLEAN NOT NULL DEFAULT FALSE,
	details           JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_user_created ON analyses (user_id, created_at);
`

const selectColumns = "id, user_id, url, title, content, credibility_score, explanation, " +
	"summary, final_verdict, method, quotes_synthetic, details, created_at"

// sortColumns whitelists ORDER BY targets
var sortColumns = map[string]string{
	model.SortCreatedAt:        "created_at",
	model.SortCredibilityScore: "credibility_score",
	model.SortTitle:            "title",
}

// SQLStore implements HistoryStore over sqlite or postgres
type SQLStore struct {
	db *sqlx.DB
}

type analysisRow struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	URL              string    `db:"url"`
	Title            string    `db:"title"`
	Content          string    `db:"content"`
	CredibilityScore int       `db:"credibility_score"`
	Explanation      string    `db:"explanation"`
	Summary          string    `db:"summary"`
	FinalVerdict     string    `db:"final_verdict"`
	Method           string    `db:"method"`
	QuotesSynthetic  bool      `db:"quotes_synthetic"`
	Details          string    `db:"details"`
	CreatedAt        time.Time `db:"created_at"`
}

// analysisDetails holds the list fields stored as one JSON column
type analysisDetails struct {
	KeyPoints           []string                   `json:"keyPoints"`
	Quotes              []string                   `json:"quotes"`
	Claims              []model.Claim              `json:"claims"`
	RedFlags            []string                   `json:"redFlags"`
	PositiveIndicators  []string                   `json:"positiveIndicators"`
	VerificationSources []model.VerificationSource `json:"verificationSources"`
	Signals             []model.Signal             `json:"signals,omitempty"`
}

type statsRow struct {
	Total   int             `db:"total"`
	High    int             `db:"high"`
	Medium  int             `db:"medium"`
	Low     int             `db:"low"`
	Average sql.NullFloat64 `db:"average"`
}

// OpenSQL connects to driver/dsn and creates the schema if needed
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if driver == DriverSQLite && dsn == "" {
		dsn = ":memory:"
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One connection keeps :memory: databases shared and serializes writers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	s := NewSQLStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database without touching the schema
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the analyses table and index if they do not exist
func (s *SQLStore) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.db.DriverName() == DriverPostgres {
		schema = postgresSchema
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Insert stores one history record
func (s *SQLStore) Insert(ctx context.Context, rec *model.HistoryRecord) error {
	details, err := json.Marshal(analysisDetails{
		KeyPoints:           rec.KeyPoints,
		Quotes:              rec.Quotes,
		Claims:              rec.Claims,
		RedFlags:            rec.RedFlags,
		PositiveIndicators:  rec.PositiveIndicators,
		VerificationSources: rec.VerificationSources,
		Signals:             rec.Signals,
	})
	if err != nil {
		return fmt.Errorf("failed to encode analysis details: %w", err)
	}

	query := s.db.Rebind(`
		INSERT INTO analyses (
			id, user_id, url, title, content, credibility_score, explanation,
			summary, final_verdict, method, quotes_synthetic, details, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.URL,
		rec.Title,
		rec.Content,
		rec.CredibilityScore,
		rec.Explanation,
		rec.Summary,
		rec.FinalVerdict,
		string(rec.Method),
		rec.QuotesSynthetic,
		string(details),
		rec.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// Get returns the record if userID owns it
func (s *SQLStore) Get(ctx context.Context, userID, id string) (*model.HistoryRecord, error) {
	var row analysisRow
	query := s.db.Rebind(`SELECT ` + selectColumns + ` FROM analyses WHERE id = ? AND user_id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return row.record()
}

// List returns one sorted page of the user's records
func (s *SQLStore) List(ctx context.Context, q model.HistoryQuery) (*model.HistoryPage, error) {
	q = q.Normalize()

	var total int
	countQuery := s.db.Rebind(`SELECT COUNT(*) FROM analyses WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &total, countQuery, q.UserID); err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}

	direction := "DESC"
	if q.Ascending {
		direction = "ASC"
	}
	query := s.db.Rebind(fmt.Sprintf(
		`SELECT %s FROM analyses WHERE user_id = ? ORDER BY %s %s, created_at DESC, id ASC LIMIT ? OFFSET ?`,
		selectColumns, sortColumns[q.SortBy], direction,
	))

	var rows []analysisRow
	if err := s.db.SelectContext(ctx, &rows, query, q.UserID, q.Limit, q.Offset()); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	analyses := make([]model.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *rec)
	}

	return &model.HistoryPage{
		Analyses:   analyses,
		Pagination: model.NewPagination(q.Page, q.Limit, total),
	}, nil
}

// Delete removes the record if userID owns it
func (s *SQLStore) Delete(ctx context.Context, userID, id string) error {
	query := s.db.Rebind(`DELETE FROM analyses WHERE id = ? AND user_id = ?`)
	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// DeleteAll removes every record owned by userID
func (s *SQLStore) DeleteAll(ctx context.Context, userID string) (int, error) {
	query := s.db.Rebind(`DELETE FROM analyses WHERE user_id = ?`)
	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete analyses: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(n), nil
}

// Stats summarizes the user's records by band
func (s *SQLStore) Stats(ctx context.Context, userID string) (*model.Stats, error) {
	query := s.db.Rebind(fmt.Sprintf(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN credibility_score >= %[1]d THEN 1 ELSE 0 END), 0) AS high,
			COALESCE(SUM(CASE WHEN credibility_score >= %[2]d AND credibility_score < %[1]d THEN 1 ELSE 0 END), 0) AS medium,
			COALESCE(SUM(CASE WHEN credibility_score < %[2]d THEN 1 ELSE 0 END), 0) AS low,
			AVG(credibility_score) AS average
		FROM analyses
		WHERE user_id = ?
	`, model.CredibleThreshold, model.MixedThreshold))

	var row statsRow
	if err := s.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	stats := &model.Stats{
		TotalAnalyses: row.Total,
		CredibilityDistribution: model.CredibilityDistribution{
			High:   row.High,
			Medium: row.Medium,
			Low:    row.Low,
		},
	}
	if row.Average.Valid {
		stats.AverageCredibility = int(row.Average.Float64 + 0.5)
	}
	return stats, nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (r analysisRow) record() (*model.HistoryRecord, error) {
	var d analysisDetails
	if err := json.Unmarshal([]byte(r.Details), &d); err != nil {
		return nil, fmt.Errorf("failed to decode analysis details for %s: %w", r.ID, err)
	}

	return &model.HistoryRecord{
		ID:        r.ID,
		UserID:    r.UserID,
		Timestamp: r.CreatedAt.UTC(),
		AnalysisResult: model.AnalysisResult{
			URL:                 r.URL,
			Title:               r.Title,
			Content:             r.Content,
			CredibilityScore:    r.CredibilityScore,
			Band:                model.BandFor(r.CredibilityScore),
			Explanation:         r.Explanation,
			Summary:             r.Summary,
			KeyPoints:           d.KeyPoints,
			Quotes:              d.Quotes,
			QuotesSynthetic:     r.QuotesSynthetic,
			Claims:              d.Claims,
			RedFlags:            d.RedFlags,
			PositiveIndicators:  d.PositiveIndicators,
			VerificationSources: d.VerificationSources,
			FinalVerdict:        r.FinalVerdict,
			Method:              model.Method(r.Method),
			Signals:             d.Signals,
		},
	}, nil
}
