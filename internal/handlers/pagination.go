// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"yamdb/internal/store"
)

// Pager reads ?page= and ?page_size= and builds paginated responses.
type Pager struct {
	DefaultSize int
	MaxSize     int
}

// pageRequest is a parsed page selection.
type pageRequest struct {
	Number int
	Size   int
}

func (p pageRequest) window() store.Page {
	return store.Page{Limit: p.Size, Offset: (p.Number - 1) * p.Size}
}

// Page is the body of every list response.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

var errInvalidPage = &APIError{Status: http.StatusNotFound, Detail: "Invalid page."}

// parse reads the page selection. A page_size above the maximum is
// clamped. A page that is non-numeric, non-positive or too large for its
// offset to fit an int is a 404.
func (pg Pager) parse(r *http.Request) (pageRequest, error) {
	q := r.URL.Query()
	req := pageRequest{Number: 1, Size: pg.DefaultSize}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > math.MaxInt/max(pg.MaxSize, pg.DefaultSize, 1) {
			return req, errInvalidPage
		}
		req.Number = n
	}
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			req.Size = min(n, pg.MaxSize)
		}
	}
	return req, nil
}

// respond builds the list body. Requesting a page past the end is a 404,
// except page 1 of an empty list.
func respond[T any](r *http.Request, req pageRequest, total int, items []T) (*Page[T], error) {
	if req.Number > 1 && (req.Number-1)*req.Size >= total {
		return nil, errInvalidPage
	}
	if items == nil {
		items = []T{}
	}

	body := &Page[T]{Count: total, Results: items}
	if req.Number*req.Size < total {
		body.Next = pageLink(r, req.Number+1)
	}
	if req.Number > 1 {
		body.Previous = pageLink(r, req.Number-1)
	}
	return body, nil
}

// pageLink returns the absolute URL of the request with page replaced.
func pageLink(r *http.Request, page int) *string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}

	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}
