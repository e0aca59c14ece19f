package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/satark-labs/scamintel/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS intel_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reported_numbers (
	key        TEXT PRIMARY KEY,
	count      INTEGER NOT NULL,
	first_seen TEXT NOT NULL,
	last_seen  TEXT NOT NULL,
	scam_types TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reported_upis (
	key        TEXT PRIMARY KEY,
	count      INTEGER NOT NULL,
	first_seen TEXT NOT NULL,
	last_seen  TEXT NOT NULL,
	scam_types TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS live_reports (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	title    TEXT NOT NULL,
	source   TEXT NOT NULL,
	link     TEXT,
	phones   TEXT,
	ts       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_live_reports_position ON live_reports(position);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reassembles the snapshot from the relational tables. A database with
// no meta rows is treated as absent.
func (s *SQLiteStore) Load(ctx context.Context) (*model.Snapshot, error) {
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
			return nil, eris.Wrap(err, "sqlite: parse last_updated")
		}
		snap.LastUpdated = ts
	}
	if raw, ok := meta["total_reports"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: parse total_reports")
		}
		snap.TotalReports = n
	}
	if raw, ok := meta["scam_keywords"]; ok {
		if err := json.Unmarshal([]byte(raw), &snap.ScamKeywords); err != nil {
			return nil, eris.Wrap(err, "sqlite: decode scam_keywords")
		}
	}
	if raw, ok := meta["sources"]; ok {
		if err := json.Unmarshal([]byte(raw), &snap.Sources); err != nil {
			return nil, eris.Wrap(err, "sqlite: decode sources")
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
		return nil, eris.Wrap(err, "sqlite: validate snapshot")
	}
	return snap, nil
}

func (s *SQLiteStore) loadMeta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM intel_meta`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query meta")
	}
	defer rows.Close() //nolint:errcheck

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan meta")
		}
		meta[k] = v
	}
	return meta, eris.Wrap(rows.Err(), "sqlite: iterate meta")
}

func (s *SQLiteStore) loadRecords(ctx context.Context, table string, dst map[string]*model.ReportRecord) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key, count, first_seen, last_seen, scam_types FROM `+table)
	if err != nil {
		return eris.Wrapf(err, "sqlite: query %s", table)
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var (
			key, firstSeen, lastSeen, scamTypes string
			count                               int
		)
		if err := rows.Scan(&key, &count, &firstSeen, &lastSeen, &scamTypes); err != nil {
			return eris.Wrapf(err, "sqlite: scan %s", table)
		}
		rec := &model.ReportRecord{Count: count}
		if rec.FirstSeen, err = time.Parse(time.RFC3339Nano, firstSeen); err != nil {
			return eris.Wrapf(err, "sqlite: parse first_seen in %s", table)
		}
		if rec.LastSeen, err = time.Parse(time.RFC3339Nano, lastSeen); err != nil {
			return eris.Wrapf(err, "sqlite: parse last_seen in %s", table)
		}
		if err := json.Unmarshal([]byte(scamTypes), &rec.ScamTypes); err != nil {
			return eris.Wrapf(err, "sqlite: decode scam_types in %s", table)
		}
		dst[key] = rec
	}
	return eris.Wrapf(rows.Err(), "sqlite: iterate %s", table)
}

func (s *SQLiteStore) loadLiveReports(ctx context.Context, snap *model.Snapshot) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, source, link, phones, ts FROM live_reports ORDER BY position ASC`)
	if err != nil {
		return eris.Wrap(err, "sqlite: query live_reports")
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var (
			title, source, ts string
			link, phones      sql.NullString
		)
		if err := rows.Scan(&title, &source, &link, &phones, &ts); err != nil {
			return eris.Wrap(err, "sqlite: scan live_reports")
		}
		item := model.RawReport{
			Title:  title,
			Source: model.Source(source),
			Link:   link.String,
		}
		if item.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return eris.Wrap(err, "sqlite: parse live report timestamp")
		}
		if phones.Valid && phones.String != "" {
			if err := json.Unmarshal([]byte(phones.String), &item.PhonesFound); err != nil {
				return eris.Wrap(err, "sqlite: decode live report phones")
			}
		}
		snap.LiveReports = append(snap.LiveReports, item)
	}
	return eris.Wrap(rows.Err(), "sqlite: iterate live_reports")
}

// Save replaces the full snapshot inside a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap *model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"intel_meta", "reported_numbers", "reported_upis", "live_reports"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return eris.Wrapf(err, "sqlite: clear %s", table)
		}
	}

	keywords, err := json.Marshal(snap.ScamKeywords)
	if err != nil {
		return eris.Wrap(err, "sqlite: encode scam_keywords")
	}
	sources, err := json.Marshal(snap.Sources)
	if err != nil {
		return eris.Wrap(err, "sqlite: encode sources")
	}
	for k, v := range map[string]string{
		"last_updated":  snap.LastUpdated.Format(time.RFC3339Nano),
		"total_reports": strconv.Itoa(snap.TotalReports),
		"scam_keywords": string(keywords),
		"sources":       string(sources),
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO intel_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return eris.Wrapf(err, "sqlite: insert meta %s", k)
		}
	}

	if err := insertRecords(ctx, tx, "reported_numbers", snap.ReportedNumbers); err != nil {
		return err
	}
	if err := insertRecords(ctx, tx, "reported_upis", snap.ReportedUPIs); err != nil {
		return err
	}

	for i, item := range snap.LiveReports {
		phones, err := json.Marshal(item.PhonesFound)
		if err != nil {
			return eris.Wrap(err, "sqlite: encode live report phones")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO live_reports (id, position, title, source, link, phones, ts) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), i, item.Title, string(item.Source), item.Link, string(phones),
			item.Timestamp.Format(time.RFC3339Nano),
		); err != nil {
			return eris.Wrap(err, "sqlite: insert live report")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func insertRecords(ctx context.Context, tx *sql.Tx, table string, records map[string]*model.ReportRecord) error {
	for key, rec := range records {
		scamTypes, err := json.Marshal(rec.ScamTypes)
		if err != nil {
			return eris.Wrapf(err, "sqlite: encode scam_types for %s", table)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (key, count, first_seen, last_seen, scam_types) VALUES (?, ?, ?, ?, ?)`,
			key, rec.Count,
			rec.FirstSeen.Format(time.RFC3339Nano),
			rec.LastSeen.Format(time.RFC3339Nano),
			string(scamTypes),
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert into %s", table)
		}
	}
	return nil
}
