// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strconv"

	"github.com/pdiddy/formula-cooccurrence/pkg/types"
)

// ExtractRow flattens a work into a detail row tagged with the pair that
// found it. Missing or null fields become empty strings, including every
// level of the primary_location.source.display_name path.
func ExtractRow(pair types.FormulaPair, w Work) types.SearchResultRow {
	row := types.SearchResultRow{
		PairLeft:  pair.Left,
		PairRight: pair.Right,
		WorkID:    deref(w.ID),
		Title:     deref(w.DisplayName),
		DOI:       deref(w.DOI),
	}
	if w.PublicationYear != nil {
		row.Year = strconv.Itoa(*w.PublicationYear)
	}
	if loc := w.PrimaryLocation; loc != nil && loc.Source != nil {
		row.Venue = deref(loc.Source.DisplayName)
	}
	return row
}

// ExtractRows applies ExtractRow to works in order.
func ExtractRows(pair types.FormulaPair, works []Work) []types.SearchResultRow {
	rows := make([]types.SearchResultRow, 0, len(works))
	for _, w := range works {
		rows = append(rows, ExtractRow(pair, w))
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
