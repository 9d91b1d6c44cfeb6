// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Report is the accumulated output of one run, handed to every report
// writer once the last pair has been processed.
type Report struct {
	// Mailto is the contact address the run identified itself with.
	Mailto     string    `json:"mailto" yaml:"mailto"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// Summary has one row per pair, in pair list order.
	Summary []SummaryRow `json:"summary" yaml:"summary"`

	// Works holds the detail rows in fetch order, pairs in list order.
	Works []SearchResultRow `json:"works" yaml:"works"`
}
