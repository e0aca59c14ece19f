package model

import "time"

// Source identifies which external feed a raw report came from.
type Source string

const (
	SourceNews       Source = "google_news"
	SourceComplaints Source = "consumer_complaints"
	SourceAdvisory   Source = "govt_advisory"
	SourceSocial     Source = "social_media"
)

// AllSources returns the sources in refresh order.
func AllSources() []Source {
	return []Source{SourceNews, SourceComplaints, SourceAdvisory, SourceSocial}
}

// ScamType returns the report label attached to identifiers found in
// items from this source.
func (s Source) ScamType() string {
	switch s {
	case SourceNews:
		return "News Report"
	case SourceComplaints:
		return "Consumer Complaint"
	case SourceAdvisory:
		return "Govt Advisory"
	case SourceSocial:
		return "Social Media Report"
	default:
		return "Unknown"
	}
}

// ReportRecord is the canonical merged record for one normalized key
// (phone number or UPI handle).
type ReportRecord struct {
	// Count is the number of independent reports merged into this key.
	Count int `json:"count"`
	// FirstSeen is set at creation and never changes.
	FirstSeen time.Time `json:"first_seen"`
	// LastSeen reflects the most recent merge.
	LastSeen time.Time `json:"last_seen"`
	// ScamTypes is an append-only, deduplicated list of report labels.
	ScamTypes []string `json:"scam_types"`
}

// HasScamType reports whether the record already carries the given label.
func (r *ReportRecord) HasScamType(scamType string) bool {
	for _, t := range r.ScamTypes {
		if t == scamType {
			return true
		}
	}
	return false
}

// RawReport is one unmerged fetch result. Raw reports are not deduplicated;
// they are kept only as a bounded most-recent-first window for display and
// audit. Phone numbers embedded in the title feed the keyed mappings through
// the normalizer, nothing else does.
type RawReport struct {
	Title       string    `json:"title"`
	Source      Source    `json:"source"`
	Link        string    `json:"link,omitempty"`
	PhonesFound []string  `json:"phones_found,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// UpdateSummary describes one refresh pass over all sources.
type UpdateSummary struct {
	Success             bool           `json:"success"`
	TotalReportsFetched int            `json:"total_reports_fetched"`
	NewNumbers          int            `json:"new_numbers"`
	TotalNumbers        int            `json:"total_numbers"`
	TotalUPIs           int            `json:"total_upis"`
	UpdateTimeMs        int64          `json:"update_time_ms"`
	LastUpdated         time.Time      `json:"last_updated"`
	Sources             map[Source]int `json:"sources"`
	// SourceErrors maps sources that failed this refresh to the error text.
	// A refresh with all four sources failing still succeeds with zero new
	// data; callers use this field to tell degraded from merely fruitless.
	SourceErrors map[Source]string `json:"source_errors,omitempty"`
}

// Stats is the read-only database summary.
type Stats struct {
	TotalReports     int       `json:"total_reports"`
	ReportedNumbers  int       `json:"reported_numbers"`
	ReportedUPIs     int       `json:"reported_upis"`
	LastUpdated      time.Time `json:"last_updated"`
	HoursSinceUpdate float64   `json:"hours_since_update"`
	CacheValid       bool      `json:"cache_valid"`
	RecentNews       int       `json:"recent_news"`
}

// CheckResult is the outcome of a phone or UPI lookup. On a miss only
// Found is populated.
type CheckResult struct {
	Found     bool       `json:"found"`
	Reports   int        `json:"reports,omitempty"`
	FirstSeen *time.Time `json:"first_seen,omitempty"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	ScamTypes []string   `json:"scam_types,omitempty"`
}
