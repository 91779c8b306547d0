// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP handlers of the public news API and
// the author API. Responses are JSON except the article body, which is an
// HTML fragment.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"mediaservice/internal/feed"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// apiError is one entry of the {"errors": [...]} envelope.
type apiError struct {
	Code    string `json:"code"`
	Title   string `json:"title"`
	Details string `json:"details"`
}

type errorEnvelope struct {
	Errors []apiError `json:"errors"`
}

// dataEnvelope wraps list responses; Meta is omitted when nil.
type dataEnvelope struct {
	Data any       `json:"data"`
	Meta *feedMeta `json:"meta,omitempty"`
}

type feedMeta struct {
	TotalCount int `json:"totalCount"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, body)
}

// writeRaw writes an already encoded JSON body.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// writeErrors writes the error envelope.
func writeErrors(w http.ResponseWriter, status int, errs ...apiError) {
	writeJSON(w, status, errorEnvelope{Errors: errs})
}

func writeNotFound(w http.ResponseWriter, details string) {
	writeErrors(w, http.StatusNotFound, apiError{
		Code:    "not_found",
		Title:   "Object not found",
		Details: details,
	})
}

func writeBadRequest(w http.ResponseWriter, details string) {
	writeErrors(w, http.StatusBadRequest, apiError{
		Code:    "invalid",
		Title:   "Invalid request",
		Details: details,
	})
}

// writeValidation maps a feed.ValidationError to a 400 response. Other
// errors become a 500.
func writeValidation(w http.ResponseWriter, r *http.Request, err error) {
	var verr *feed.ValidationError
	if errors.As(err, &verr) {
		writeErrors(w, http.StatusBadRequest, apiError{
			Code:    "invalid_" + verr.Field,
			Title:   "Invalid parameter",
			Details: verr.Error(),
		})
		return
	}
	writeInternal(w, r, "request failed", err)
}

func writeInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.ErrorContext(r.Context(), msg, "error", err, "path", r.URL.Path)
	writeErrors(w, http.StatusInternalServerError, apiError{
		Code:    "internal",
		Title:   "Internal server error",
		Details: "The request could not be completed.",
	})
}

// decodeJSON reads a JSON request body into v. An empty body leaves v
// untouched.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("request body too large")
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
