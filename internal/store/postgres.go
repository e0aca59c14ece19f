package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/satark-labs/scamintel/internal/model"
)

// pgPool is the minimal pool surface used by PostgresStore, satisfied by
// both *pgxpool.Pool and pgxmock for unit testing.
type pgPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool pgPool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS intel_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reported_numbers (
	key        TEXT PRIMARY KEY,
	count      INT NOT NULL,
	first_seen TIMESTAMPTZ NOT NULL,
	last_seen  TIMESTAMPTZ NOT NULL,
	scam_types TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reported_upis (
	key        TEXT PRIMARY KEY,
	count      INT NOT NULL,
	first_seen TIMESTAMPTZ NOT NULL,
	last_seen  TIMESTAMPTZ NOT NULL,
	scam_types TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS live_reports (
	id       UUID PRIMARY KEY,
	position INT NOT NULL,
	title    TEXT NOT NULL,
	source   TEXT NOT NULL,
	link     TEXT,
	phones   TEXT,
	ts       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_live_reports_position ON live_reports(position);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Load reassembles the snapshot from the relational tables. A database with
// no meta rows is treated as absent.
func (s *PostgresStore) Load(ctx context.Context) (*model.Snapshot, error) {
	meta, err := s.loadMeta(ctx)
	if err != nil {
		return nil, err
	}
	if len(meta) == 0 {
		return nil, nil
	}

	snap := &model.Snapshot{
		ReportedNumbers: make(map[string]*model.ReportRecord),
		ReportedUPIs:    make(map[string]*model.ReportRecord),
		LiveReports:     []model.RawReport{},
	}

	if raw, ok := meta["last_updated"]; ok {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: parse last_updated")
		}
		snap.LastUpdated = ts
	}
	if raw, ok := meta["total_reports"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: parse total_reports")
		}
		snap.TotalReports = n
	}
	if raw, ok := meta["scam_keywords"]; ok {
		if err := json.Unmarshal([]byte(raw), &snap.ScamKeywords); err != nil {
			return nil, eris.Wrap(err, "postgres: decode scam_keywords")
		}
	}
	if raw, ok := meta["sources"]; ok {
		if err := json.Unmarshal([]byte(raw), &snap.Sources); err != nil {
			return nil, eris.Wrap(err, "postgres: decode sources")
		}
	}

	if err := s.loadRecords(ctx, "reported_numbers", snap.ReportedNumbers); err != nil {
		return nil, err
	}
	if err := s.loadRecords(ctx, "reported_upis", snap.ReportedUPIs); err != nil {
		return nil, err
	}
	if err := s.loadLiveReports(ctx, snap); err != nil {
		return nil, err
	}

	if err := snap.Validate(); err != nil {
		return nil, eris.Wrap(err, "postgres: validate snapshot")
	}
	return snap, nil
}

func (s *PostgresStore) loadMeta(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, value FROM intel_meta`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query meta")
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, eris.Wrap(err, "postgres: scan meta")
		}
		meta[k] = v
	}
	return meta, eris.Wrap(rows.Err(), "postgres: iterate meta")
}

func (s *PostgresStore) loadRecords(ctx context.Context, table string, dst map[string]*model.ReportRecord) error {
	rows, err := s.pool.Query(ctx, `SELECT key, count, first_seen, last_seen, scam_types FROM `+table)
	if err != nil {
		return eris.Wrapf(err, "postgres: query %s", table)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key, scamTypes string
			count          int
			rec            model.ReportRecord
		)
		if err := rows.Scan(&key, &count, &rec.FirstSeen, &rec.LastSeen, &scamTypes); err != nil {
			return eris.Wrapf(err, "postgres: scan %s", table)
		}
		rec.Count = count
		if err := json.Unmarshal([]byte(scamTypes), &rec.ScamTypes); err != nil {
			return eris.Wrapf(err, "postgres: decode scam_types in %s", table)
		}
		dst[key] = &rec
	}
	return eris.Wrapf(rows.Err(), "postgres: iterate %s", table)
}

func (s *PostgresStore) loadLiveReports(ctx context.Context, snap *model.Snapshot) error {
	rows, err := s.pool.Query(ctx,
		`SELECT title, source, link, phones, ts FROM live_reports ORDER BY position ASC`)
	if err != nil {
		return eris.Wrap(err, "postgres: query live_reports")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item         model.RawReport
			source       string
			link, phones *string
		)
		if err := rows.Scan(&item.Title, &source, &link, &phones, &item.Timestamp); err != nil {
			return eris.Wrap(err, "postgres: scan live_reports")
		}
		item.Source = model.Source(source)
		if link != nil {
			item.Link = *link
		}
		if phones != nil && *phones != "" {
			if err := json.Unmarshal([]byte(*phones), &item.PhonesFound); err != nil {
				return eris.Wrap(err, "postgres: decode live report phones")
			}
		}
		snap.LiveReports = append(snap.LiveReports, item)
	}
	return eris.Wrap(rows.Err(), "postgres: iterate live_reports")
}

// Save replaces the full snapshot inside a single transaction.
func (s *PostgresStore) Save(ctx context.Context, snap *model.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, table := range []string{"intel_meta", "reported_numbers", "reported_upis", "live_reports"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
			return eris.Wrapf(err, "postgres: clear %s", table)
		}
	}

	keywords, err := json.Marshal(snap.ScamKeywords)
	if err != nil {
		return eris.Wrap(err, "postgres: encode scam_keywords")
	}
	sources, err := json.Marshal(snap.Sources)
	if err != nil {
		return eris.Wrap(err, "postgres: encode sources")
	}
	metaRows := [][2]string{
		{"last_updated", snap.LastUpdated.Format(time.RFC3339Nano)},
		{"total_reports", strconv.Itoa(snap.TotalReports)},
		{"scam_keywords", string(keywords)},
		{"sources", string(sources)},
	}
	for _, kv := range metaRows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO intel_meta (key, value) VALUES ($1, $2)`, kv[0], kv[1]); err != nil {
			return eris.Wrapf(err, "postgres: insert meta %s", kv[0])
		}
	}

	if err := insertRecordsPg(ctx, tx, "reported_numbers", snap.ReportedNumbers); err != nil {
		return err
	}
	if err := insertRecordsPg(ctx, tx, "reported_upis", snap.ReportedUPIs); err != nil {
		return err
	}

	for i, item := range snap.LiveReports {
		phones, err := json.Marshal(item.PhonesFound)
		if err != nil {
			return eris.Wrap(err, "postgres: encode live report phones")
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO live_reports (id, position, title, source, link, phones, ts) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(), i, item.Title, string(item.Source), item.Link, string(phones), item.Timestamp,
		); err != nil {
			return eris.Wrap(err, "postgres: insert live report")
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit")
}

func insertRecordsPg(ctx context.Context, tx pgx.Tx, table string, records map[string]*model.ReportRecord) error {
	for key, rec := range records {
		scamTypes, err := json.Marshal(rec.ScamTypes)
		if err != nil {
			return eris.Wrapf(err, "postgres: encode scam_types for %s", table)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO `+table+` (key, count, first_seen, last_seen, scam_types) VALUES ($1, $2, $3, $4, $5)`,
			key, rec.Count, rec.FirstSeen, rec.LastSeen, string(scamTypes),
		); err != nil {
			return eris.Wrapf(err, "postgres: insert into %s", table)
		}
	}
	return nil
}
