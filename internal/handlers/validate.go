package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"mediaservice/internal/models"
)

// Validation limits for author input.
const (
	maxSlugLen = 300
	maxBodyLen = 200_000
	maxLeadLen = 2_000
	maxNameLen = 100
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// firstViolation validates v and returns a readable message for the first
// failing field, or "" when v is valid.
func firstViolation(v any) string {
	err := validate.Struct(v)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Sprintf("%s fails %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s fails %s", fe.Field(), fe.Tag())
	}
	return err.Error()
}

// validateContent checks content inputs that struct tags cannot express
// and returns the first error found. Videos may arrive without a title
// since it can be fetched from the provider.
func validateContent(contentType models.ContentType, title, slug, body string) string {
	title = strings.TrimSpace(title)
	if title == "" && contentType == models.ContentTypeArticle {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLen {
		return fmt.Sprintf("Title is too long (max %d characters).", models.MaxTitleLen)
	}
	if utf8.RuneCountInString(slug) > maxSlugLen {
		return fmt.Sprintf("Slug is too long (max %d characters).", maxSlugLen)
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 200,000 characters)."
	}
	return ""
}

// parseTime parses an RFC 3339 timestamp from a request field.
func parseTime(field, value string) (time.Time, string) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Sprintf("%s must be an RFC 3339 timestamp.", field)
	}
	return t, ""
}
