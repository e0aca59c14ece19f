package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// RetentionCap bounds the raw-report rolling window.
const RetentionCap = 15

// DefaultScamKeywords seeds a fresh snapshot with known scam phrasings.
func DefaultScamKeywords() []string {
	return []string{
		"digital arrest", "cyber cell arrest", "rbi approved loan",
		"lottery winner", "pay now or jail", "court summons",
		"suspended account", "verify otp", "customs seized",
		"income tax notice", "legal action", "warrant issued",
	}
}

// Snapshot is the full persisted database state. One snapshot per process,
// mutated in place and flushed after every mutating operation.
type Snapshot struct {
	LastUpdated     time.Time                `json:"last_updated"`
	ReportedNumbers map[string]*ReportRecord `json:"reported_numbers"`
	ReportedUPIs    map[string]*ReportRecord `json:"reported_upis"`
	ScamKeywords    []string                 `json:"scam_keywords"`
	LiveReports     []RawReport              `json:"live_reports"`
	TotalReports    int                      `json:"total_reports"`
	Sources         map[Source]int           `json:"sources,omitempty"`
}

// NewSnapshot returns an empty snapshot stamped at the given time.
func NewSnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		LastUpdated:     now,
		ReportedNumbers: make(map[string]*ReportRecord),
		ReportedUPIs:    make(map[string]*ReportRecord),
		ScamKeywords:    DefaultScamKeywords(),
		LiveReports:     []RawReport{},
	}
}

// Validate rejects structurally broken documents at the deserialization
// boundary. Snapshots that fail validation are discarded, not defaulted.
func (s *Snapshot) Validate() error {
	if s.LastUpdated.IsZero() {
		return eris.New("snapshot: missing last_updated")
	}
	if s.ReportedNumbers == nil || s.ReportedUPIs == nil {
		return eris.New("snapshot: missing key mappings")
	}
	if s.TotalReports < 0 {
		return eris.Errorf("snapshot: negative total_reports %d", s.TotalReports)
	}
	for key, rec := range s.ReportedNumbers {
		if rec == nil || rec.Count < 1 {
			return eris.Errorf("snapshot: invalid record for number %q", key)
		}
	}
	for key, rec := range s.ReportedUPIs {
		if rec == nil || rec.Count < 1 {
			return eris.Errorf("snapshot: invalid record for upi %q", key)
		}
	}
	return nil
}

// Fresh reports whether the snapshot is within the freshness window at now.
func (s *Snapshot) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastUpdated) < ttl
}
