// Package intel holds the stateful core of the scam-intelligence cache:
// the keyed report mappings, the merge policy, the refresh loop over the
// four sources, and the freshness-gated snapshot lifecycle.
package intel

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satark-labs/scamintel/internal/config"
	"github.com/satark-labs/scamintel/internal/model"
	"github.com/satark-labs/scamintel/internal/normalize"
	"github.com/satark-labs/scamintel/internal/source"
	"github.com/satark-labs/scamintel/internal/store"
)

// Database is the aggregator over the scam-report snapshot. It is
// constructed once at startup and injected into callers; the mutex makes
// it safe to share between the serve facade's request handlers.
type Database struct {
	mu        sync.Mutex
	snap      *model.Snapshot
	store     store.Store
	fetchers  []source.Fetcher
	ttl       time.Duration
	retention int
	now       func() time.Time
}

// Open loads the persisted snapshot through the freshness gate. A missing,
// unreadable, or stale snapshot is discarded in favor of a fresh empty one;
// the cache is an accelerator, not a system of record.
func Open(ctx context.Context, st store.Store, fetchers []source.Fetcher, cfg config.CacheConfig) *Database {
	db := &Database{
		store:     st,
		fetchers:  fetchers,
		ttl:       cfg.TTL(),
		retention: cfg.RetentionSize,
		now:       time.Now,
	}
	if db.ttl <= 0 {
		db.ttl = time.Hour
	}
	if db.retention <= 0 {
		db.retention = model.RetentionCap
	}

	now := db.now()
	snap, err := st.Load(ctx)
	switch {
	case err != nil:
		zap.L().Warn("intel: discarding unreadable snapshot", zap.Error(err))
		db.snap = model.NewSnapshot(now)
	case snap == nil:
		db.snap = model.NewSnapshot(now)
	case !snap.Fresh(now, db.ttl):
		zap.L().Info("intel: discarding stale snapshot",
			zap.Time("last_updated", snap.LastUpdated),
			zap.Duration("ttl", db.ttl),
		)
		db.snap = model.NewSnapshot(now)
	default:
		db.snap = snap
	}

	return db
}

// WithNow sets a fixed clock for testing.
func (db *Database) WithNow(now func() time.Time) *Database {
	db.now = now
	return db
}

// Close flushes the snapshot one last time and releases the store.
func (db *Database) Close(ctx context.Context) error {
	db.mu.Lock()
	db.saveLocked(ctx)
	db.mu.Unlock()
	return db.store.Close()
}

// AddReport records a scam report against a phone number, a UPI handle, or
// both. Each identifier is normalized and either creates a new record or
// merges into the existing one. The global report counter advances exactly
// once per call no matter how many identifiers were present.
func (db *Database) AddReport(ctx context.Context, phone, upi, scamType string) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.addLocked(phone, upi, scamType)
	db.saveLocked(ctx)
}

func (db *Database) addLocked(phone, upi, scamType string) {
	now := db.now()

	if phone != "" {
		db.mergeLocked(db.snap.ReportedNumbers, normalize.Phone(phone), scamType, now)
	}
	if upi != "" {
		db.mergeLocked(db.snap.ReportedUPIs, normalize.UPI(upi), scamType, now)
	}

	db.snap.TotalReports++
}

func (db *Database) mergeLocked(records map[string]*model.ReportRecord, key, scamType string, now time.Time) {
	if rec, ok := records[key]; ok {
		rec.Count++
		rec.LastSeen = now
		if !rec.HasScamType(scamType) {
			rec.ScamTypes = append(rec.ScamTypes, scamType)
		}
		return
	}
	records[key] = &model.ReportRecord{
		Count:     1,
		FirstSeen: now,
		LastSeen:  now,
		ScamTypes: []string{scamType},
	}
}

// saveLocked flushes the snapshot. Persistence is best-effort: a write
// failure costs at most one update cycle and is logged, never raised.
func (db *Database) saveLocked(ctx context.Context) {
	if err := db.store.Save(ctx, db.snap); err != nil {
		zap.L().Warn("intel: snapshot save failed", zap.Error(err))
	}
}

// CheckPhone looks up a phone number by its normalized key. Read-only,
// O(1), never touches the network.
func (db *Database) CheckPhone(phone string) model.CheckResult {
	db.mu.Lock()
	defer db.mu.Unlock()
	return checkResult(db.snap.ReportedNumbers[normalize.Phone(phone)])
}

// CheckUPI looks up a UPI handle by its normalized key.
func (db *Database) CheckUPI(upi string) model.CheckResult {
	db.mu.Lock()
	defer db.mu.Unlock()
	return checkResult(db.snap.ReportedUPIs[normalize.UPI(upi)])
}

func checkResult(rec *model.ReportRecord) model.CheckResult {
	if rec == nil {
		return model.CheckResult{Found: false}
	}
	firstSeen, lastSeen := rec.FirstSeen, rec.LastSeen
	scamTypes := make([]string, len(rec.ScamTypes))
	copy(scamTypes, rec.ScamTypes)
	return model.CheckResult{
		Found:     true,
		Reports:   rec.Count,
		FirstSeen: &firstSeen,
		LastSeen:  &lastSeen,
		ScamTypes: scamTypes,
	}
}

// Update refreshes the database from all sources in a fixed order. A
// source failure is recorded and treated as zero items; it never aborts
// the remaining sources and never raises to the caller. Even a fully
// failed refresh advances the freshness timestamp, trading observability
// for protection against refresh storms; SourceErrors in the summary is
// how callers tell the difference.
func (db *Database) Update(ctx context.Context) model.UpdateSummary {
	start := db.now()

	// Network happens outside the lock; queries stay serviceable while
	// the sources crawl.
	var allItems []model.RawReport
	sourceErrors := make(map[model.Source]string)
	breakdown := make(map[model.Source]int)
	for _, src := range model.AllSources() {
		breakdown[src] = 0
	}

	for _, f := range db.fetchers {
		items, err := f.Fetch(ctx)
		if err != nil {
			sourceErrors[f.Source()] = err.Error()
			zap.L().Warn("intel: source failed, continuing",
				zap.String("source", f.Name()),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("intel: source fetched",
			zap.String("source", f.Name()),
			zap.Int("items", len(items)),
		)
		breakdown[f.Source()] += len(items)
		allItems = append(allItems, items...)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	newNumbers := 0
	for _, item := range allItems {
		phones := item.PhonesFound
		if len(phones) == 0 {
			phones = normalize.ExtractPhones(item.Title)
		}
		scamType := item.Source.ScamType()
		for _, raw := range phones {
			if _, ok := db.snap.ReportedNumbers[normalize.Phone(raw)]; !ok {
				newNumbers++
			}
			db.addLocked(raw, "", scamType)
		}
	}

	// Rolling window: newest items first, bounded by the retention cap.
	db.snap.LiveReports = append(allItems, db.snap.LiveReports...)
	if len(db.snap.LiveReports) > db.retention {
		db.snap.LiveReports = db.snap.LiveReports[:db.retention]
	}
	db.snap.Sources = breakdown
	db.snap.LastUpdated = db.now()

	db.saveLocked(ctx)

	summary := model.UpdateSummary{
		Success:             true,
		TotalReportsFetched: len(allItems),
		NewNumbers:          newNumbers,
		TotalNumbers:        len(db.snap.ReportedNumbers),
		TotalUPIs:           len(db.snap.ReportedUPIs),
		UpdateTimeMs:        db.now().Sub(start).Milliseconds(),
		LastUpdated:         db.snap.LastUpdated,
		Sources:             breakdown,
	}
	if len(sourceErrors) > 0 {
		summary.SourceErrors = sourceErrors
	}
	return summary
}

// Stats returns the read-only database summary.
func (db *Database) Stats() model.Stats {
	db.mu.Lock()
	defer db.mu.Unlock()

	elapsed := db.now().Sub(db.snap.LastUpdated)
	hours := math.Round(elapsed.Hours()*10) / 10

	return model.Stats{
		TotalReports:     db.snap.TotalReports,
		ReportedNumbers:  len(db.snap.ReportedNumbers),
		ReportedUPIs:     len(db.snap.ReportedUPIs),
		LastUpdated:      db.snap.LastUpdated,
		HoursSinceUpdate: hours,
		CacheValid:       elapsed < db.ttl,
		RecentNews:       len(db.snap.LiveReports),
	}
}

// RecentReports returns the most recent raw reports, newest first, at most
// limit entries.
func (db *Database) RecentReports(limit int) []model.RawReport {
	db.mu.Lock()
	defer db.mu.Unlock()

	if limit <= 0 || limit > len(db.snap.LiveReports) {
		limit = len(db.snap.LiveReports)
	}
	out := make([]model.RawReport, limit)
	copy(out, db.snap.LiveReports[:limit])
	return out
}
