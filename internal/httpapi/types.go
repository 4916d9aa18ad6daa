// Package httpapi serves POST /api/filter-posts from a local post store. It
// stands in for the real filtering service during development and in
// integration tests.
package httpapi

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tickerfeed/internal/filterapi"
	"tickerfeed/internal/store"
)

// maxBodyBytes caps a request body.
const maxBodyBytes = 1 << 20

// errorResponse is the body of every failed call.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "-" || tag == "" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		return tag
	})
	return v
}

// validationMessage flattens validator errors into one line, e.g.
// "limit must be at most 200".
func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "min":
			parts = append(parts, fe.Field()+" must be at least "+fe.Param())
		case "max":
			parts = append(parts, fe.Field()+" must be at most "+fe.Param())
		case "oneof":
			parts = append(parts, fe.Field()+" must be one of "+fe.Param())
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

// toQuery maps a wire request onto a store query. Ticker symbols are
// upper-cased and blank set members dropped.
func toQuery(req filterapi.Request) store.PostQuery {
	q := store.PostQuery{
		Keyword:     strings.TrimSpace(req.Keyword),
		Accounts:    compact(req.Accounts, false),
		MinLikes:    req.Likes,
		MinRetweets: req.RTs,
		Tickers:     compact(req.Ticker, true),
		Sectors:     compact(req.Sector, false),
		SubSectors:  compact(req.SubSector, false),
		Sentiment:   req.Sentiment,
		Limit:       req.Limit,
	}
	if req.Cursor != nil {
		q.Cursor = *req.Cursor
	}
	return q
}

func compact(in []string, upper bool) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if upper {
			s = strings.ToUpper(s)
		}
		out = append(out, s)
	}
	return out
}
