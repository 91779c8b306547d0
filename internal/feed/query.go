// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package feed

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPageSize   = 20
	DefaultPageNumber = 1
	MaxPageSize       = 100
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their wire name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// ValidationError describes the first invalid input field.
type ValidationError struct {
	Field string
	Rule  string
	Value string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("field %q fails rule %q (got %q)", e.Field, e.Rule, e.Value)
	}
	return fmt.Sprintf("field %q fails rule %q", e.Field, e.Rule)
}

// validateStruct runs the struct tags of v and converts the first failure
// into a *ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		first := vErrs[0]
		rule := first.Tag()
		if first.Param() != "" {
			rule += "=" + first.Param()
		}
		return &ValidationError{Field: first.Field(), Rule: rule, Value: fmt.Sprint(first.Value())}
	}
	return err
}

// Query selects a page of the published feed.
type Query struct {
	PageSize   int    `json:"pageSize" validate:"min=1,max=100"`
	PageNumber int    `json:"pageNumber" validate:"min=1"`
	CategoryID *int64 `json:"categoryId"`
	AllNews    bool   `json:"allNews"`
}

// ApplyDefaults fills fields left at their zero value.
func (q *Query) ApplyDefaults() {
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageNumber == 0 {
		q.PageNumber = DefaultPageNumber
	}
}

// Validate checks the page bounds.
func (q Query) Validate() error {
	return validateStruct(q)
}

// Offset is the number of items skipped before the page starts. It
// saturates at math.MaxInt instead of overflowing, so a huge page number
// still lands beyond the end of the feed.
func (q Query) Offset() int {
	if q.PageNumber <= 1 || q.PageSize <= 0 {
		return 0
	}
	if q.PageNumber-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.PageNumber - 1) * q.PageSize
}

// ParseQuery reads a Query from URL parameters. Absent parameters take
// their defaults; present ones must parse and pass validation, so
// "pageSize=0" is rejected rather than defaulted.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{PageSize: DefaultPageSize, PageNumber: DefaultPageNumber}

	if raw := values.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, &ValidationError{Field: "pageSize", Rule: "integer", Value: raw}
		}
		q.PageSize = n
	}
	if raw := values.Get("pageNumber"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, &ValidationError{Field: "pageNumber", Rule: "integer", Value: raw}
		}
		q.PageNumber = n
	}
	if raw := values.Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, &ValidationError{Field: "categoryId", Rule: "integer", Value: raw}
		}
		q.CategoryID = &id
	}
	if raw := values.Get("allNews"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return q, &ValidationError{Field: "allNews", Rule: "boolean", Value: raw}
		}
		q.AllNews = b
	}

	return q, q.Validate()
}

// ExcludeQuery selects the whole published feed minus the given ids.
type ExcludeQuery struct {
	Excluded []int64 `json:"excluded" validate:"dive,min=1"`
}

// Validate checks that every excluded id is positive.
func (q ExcludeQuery) Validate() error {
	return validateStruct(q)
}
