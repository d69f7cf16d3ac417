// Package metrics registers the portal's prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckIns counts appended check-in records by kind
	// (member, non_member, guest, new_student).
	CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_checkins_total",
		Help: "Check-in records appended, by kind.",
	}, []string{"kind"})

	// ImportedRows counts roster rows created through CSV import.
	ImportedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_roster_imported_rows_total",
		Help: "Roster rows created through CSV import.",
	})

	// Logins counts login attempts by outcome (success, failure).
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	// ReportExports counts generated check-in report PDFs.
	ReportExports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_report_exports_total",
		Help: "Check-in report PDFs generated.",
	})
)
