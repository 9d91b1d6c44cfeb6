// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search builds OpenAlex full-text queries for formula pairs, pages
// through the works endpoint, and flattens the returned works into rows.
package search

// BuildFulltextQuery returns a boolean expression matching documents that
// contain both phrases. Each phrase is quoted so its words must appear
// together; the service matches case-insensitively.
func BuildFulltextQuery(left, right string) string {
	return `"` + left + `" AND "` + right + `"`
}

// FulltextFilter wraps a query expression as the value of the filter
// parameter for a full-text search.
func FulltextFilter(query string) string {
	return "fulltext.search:" + query
}
