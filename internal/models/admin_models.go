package models

import (
	"encoding/json"
	"time"
)

// ExportRowLimit caps the rows returned per table by the data export.
const ExportRowLimit = 2000

// ExportTables are dumped by the owner export, newest rows first.
var ExportTables = []string{"gaming_sessions", "sales", "expenses", "clients", "products", "services_catalog"}

// CleanupTables may be purged by age. Open sessions and shifts are kept whatever their age.
var CleanupTables = []string{"gaming_sessions", "sales", "expenses", "staff_shifts"}

// DefaultCleanupTables are purged when the request names none.
var DefaultCleanupTables = []string{"gaming_sessions", "sales", "expenses"}

// DataExport is a snapshot of the business tables. A table that failed to
// load carries an "error" entry in Errors instead of rows.
type DataExport struct {
	Timestamp time.Time                  `json:"timestamp"`
	Data      map[string]json.RawMessage `json:"data"`
	Errors    map[string]string          `json:"errors,omitempty"`
}

// CleanupResult reports what a purge removed per table.
type CleanupResult struct {
	Status     string                  `json:"status"`
	CutoffDate time.Time               `json:"cutoff_date"`
	Details    map[string]CleanupTable `json:"details"`
}

type CleanupTable struct {
	Deleted int64  `json:"deleted"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

func IsCleanupTable(name string) bool {
	for _, t := range CleanupTables {
		if t == name {
			return true
		}
	}
	return false
}
