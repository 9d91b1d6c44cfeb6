// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/formula-cooccurrence/internal/httputil"
	"github.com/pdiddy/formula-cooccurrence/internal/metrics"
)

// openAlexWorksBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

const (
	// DefaultPerPage is the largest page size the API accepts with cursors.
	DefaultPerPage = 200

	startCursor  = "*"
	selectFields = "id,doi,display_name,publication_year,primary_location"
)

// FetchResult is everything retrieved for one query.
type FetchResult struct {
	// Count is meta.count from the first page: the service's total number
	// of matching works, which may exceed len(Works).
	Count int
	Works []Work
}

// OpenAlexFetcher retrieves all works matching a full-text query by following
// the cursor the API returns until it is exhausted.
type OpenAlexFetcher struct {
	Client *http.Client
	// BaseURL overrides the works endpoint (default https://api.openalex.org/works).
	BaseURL string
	// Email is sent as the mailto parameter for polite pool access.
	Email     string
	UserAgent string
	PerPage   int
	Retry     httputil.RetryPolicy
	Log       zerolog.Logger
	Metrics   *metrics.Metrics
}

// FetchAll pages through every work matching query. Each page request is
// retried under f.Retry; if a page still fails, FetchAll returns the
// *httputil.FetchError and no partial result.
func (f *OpenAlexFetcher) FetchAll(ctx context.Context, query string) (FetchResult, error) {
	var res FetchResult
	cursor := startCursor

	for page := 1; cursor != ""; page++ {
		reqURL := f.pageURL(query, cursor)

		start := time.Now()
		resp, err := httputil.GetJSON[openAlexPage](ctx, f.Client, reqURL, f.UserAgent, f.policy(reqURL))
		if err != nil {
			return FetchResult{}, err
		}
		if f.Metrics != nil {
			f.Metrics.RequestsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
			f.Metrics.PagesTotal.Inc()
		}

		if page == 1 {
			res.Count = resp.Meta.Count
		}
		res.Works = append(res.Works, resp.Results...)

		f.Log.Debug().
			Int("page", page).
			Int("results", len(resp.Results)).
			Int("count", resp.Meta.Count).
			Dur("elapsed", time.Since(start)).
			Msg("fetched page")

		if len(resp.Results) == 0 {
			break
		}
		cursor = resp.Meta.NextCursor
	}
	return res, nil
}

func (f *OpenAlexFetcher) pageURL(query, cursor string) string {
	perPage := f.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	params := url.Values{
		"filter":   {FulltextFilter(query)},
		"per-page": {strconv.Itoa(perPage)},
		"cursor":   {cursor},
		"mailto":   {f.Email},
		"select":   {selectFields},
	}
	base := f.BaseURL
	if base == "" {
		base = openAlexWorksBase
	}
	return base + "?" + params.Encode()
}

// policy decorates f.Retry so every failed attempt is logged and counted.
func (f *OpenAlexFetcher) policy(reqURL string) httputil.RetryPolicy {
	p := f.Retry
	inner := p.OnFailure
	p.OnFailure = func(attempt int, next time.Duration, err error) {
		if f.Metrics != nil {
			f.Metrics.RequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			if next > 0 {
				f.Metrics.RetriesTotal.Inc()
			}
		}
		ev := f.Log.Warn().Err(err).Int("attempt", attempt).Str("url", reqURL)
		if next > 0 {
			ev = ev.Dur("retry_in", next)
		}
		ev.Msg("request failed")
		if inner != nil {
			inner(attempt, next, err)
		}
	}
	return p
}

// OpenAlex API JSON structures, limited to the selected fields.
type openAlexPage struct {
	Meta    openAlexMeta `json:"meta"`
	Results []Work       `json:"results"`
}

type openAlexMeta struct {
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor"`
}

// Work is a raw OpenAlex work record. Every field may be missing or null.
type Work struct {
	ID              *string   `json:"id"`
	DOI             *string   `json:"doi"`
	DisplayName     *string   `json:"display_name"`
	PublicationYear *int      `json:"publication_year"`
	PrimaryLocation *Location `json:"primary_location"`
}

// Location is where a work is hosted.
type Location struct {
	Source *Source `json:"source"`
}

// Source is the venue that hosts a location.
type Source struct {
	DisplayName *string `json:"display_name"`
}
