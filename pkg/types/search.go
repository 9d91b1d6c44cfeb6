// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the co-occurrence run:
// formula pairs, the rows written to the two reports, and configuration.
package types

// SearchResultRow is one work returned for a formula pair, flattened for the
// detail report. Every field is a string; Year is empty when the source
// record has no publication year.
type SearchResultRow struct {
	PairLeft  string `json:"pair_left" yaml:"pair_left"`
	PairRight string `json:"pair_right" yaml:"pair_right"`
	WorkID    string `json:"work_id" yaml:"work_id"`
	Title     string `json:"title" yaml:"title"`
	Year      string `json:"year" yaml:"year"`
	DOI       string `json:"doi" yaml:"doi"`
	Venue     string `json:"venue" yaml:"venue"`
}

// Record returns the row's fields in detail report column order.
func (r SearchResultRow) Record() []string {
	return []string{r.PairLeft, r.PairRight, r.WorkID, r.Title, r.Year, r.DOI, r.Venue}
}

// SummaryRow carries the co-occurrence count reported by the search service
// for one formula pair. The count is the service total and may exceed the
// number of detail rows actually retrieved for the pair.
type SummaryRow struct {
	PairLeft          string `json:"pair_left" yaml:"pair_left"`
	PairRight         string `json:"pair_right" yaml:"pair_right"`
	CooccurrenceCount string `json:"cooccurrence_count" yaml:"cooccurrence_count"`
}

// Record returns the row's fields in summary report column order.
func (r SummaryRow) Record() []string {
	return []string{r.PairLeft, r.PairRight, r.CooccurrenceCount}
}

// SummaryColumns is the header of the summary report.
var SummaryColumns = []string{"pair_left", "pair_right", "cooccurrence_count"}

// WorkColumns is the header of the detail report.
var WorkColumns = []string{"pair_left", "pair_right", "work_id", "title", "year", "doi", "venue"}
