package domain

// SyncFailure records one product that could not be embedded or stored
// during a full sync. The rest of the run is unaffected.
type SyncFailure struct {
	ProductID int64  `json:"product_id"`
	Reason    string `json:"reason"`
}

// SyncReport summarizes one syncAll run. Upserts counted in Embedded are
// committed even when Failures is non-empty.
type SyncReport struct {
	Total    int           `json:"total"`
	Embedded int           `json:"embedded"`
	Skipped  int           `json:"skipped"`
	Deleted  int           `json:"deleted"`
	Failures []SyncFailure `json:"failures,omitempty"`
}

// Failed reports whether any product failed during the run.
func (r SyncReport) Failed() bool { return len(r.Failures) > 0 }
