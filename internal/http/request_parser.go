// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for parsing and validating request
// data: month query parameters and JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tally/internal/core"
)

// maxBodySize caps request bodies; the largest legitimate payload is a
// full snapshot import.
const maxBodySize = 4 << 20

// ParseMonthParam extracts the month from the query string, defaulting
// to the current month when absent.
func ParseMonthParam(query url.Values) (core.MonthKey, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return core.MonthKeyOf(time.Now()), nil
	}
	month, err := core.ParseMonthKey("month", v)
	if err != nil {
		return "", err
	}
	return month, nil
}

// DecodeBody reads and decodes a JSON request body into dst. The body
// must be a single JSON document.
func DecodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodySize {
		return errors.New("request body too large")
	}
	if len(body) == 0 {
		return errors.New("empty request body")
	}

	dec := json.NewDecoder(strings.NewReader(string(body)))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if dec.More() {
		return errors.New("trailing data after JSON document")
	}
	return nil
}

// ReadBody reads the raw request body, honoring the same size cap.
func ReadBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, errors.New("request body too large")
	}
	return body, nil
}
