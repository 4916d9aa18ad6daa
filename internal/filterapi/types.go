// Package filterapi is the client for the post filtering service and the
// wire types of its single call, POST /api/filter-posts.
package filterapi

import (
	"tickerfeed/internal/domain"
	"tickerfeed/internal/filter"
)

// Path is the route of the filter call.
const Path = "/api/filter-posts"

// StatusSuccess is the only response status that carries a usable page.
const StatusSuccess = "success"

// Request is the body of a filter call. Full and paginated queries share the
// same shape; Cursor is null on a full query.
type Request struct {
	Keyword   string   `json:"keyword"`
	Accounts  []string `json:"accounts"`
	Likes     *int     `json:"likes" validate:"omitempty,min=0"`
	RTs       *int     `json:"rts" validate:"omitempty,min=0"`
	Ticker    []string `json:"ticker"`
	Sector    []string `json:"sector"`
	SubSector []string `json:"sub_sector"`
	Sentiment string   `json:"sentiment" validate:"omitempty,oneof=Positive Negative Neutral any"`
	Limit     int      `json:"limit" validate:"min=1,max=200"`
	Cursor    *string  `json:"cursor"`
}

// Response is the body the service answers with.
type Response struct {
	Status     string        `json:"status"`
	Posts      []domain.Post `json:"posts"`
	NextCursor *string       `json:"next_cursor"`
	Message    string        `json:"message,omitempty"`
}

// NewRequest serializes criteria plus pagination into a Request. Empty sets
// are sent as [] and a missing cursor as null.
func NewRequest(c filter.Criteria, cursor domain.Cursor, limit int) Request {
	req := Request{
		Keyword:   c.Keyword,
		Accounts:  orEmpty(c.Accounts),
		Likes:     c.MinLikes,
		RTs:       c.MinRetweets,
		Ticker:    orEmpty(c.Tickers),
		Sector:    orEmpty(c.Sectors),
		SubSector: orEmpty(c.SubSectors),
		Sentiment: string(c.Sentiment),
		Limit:     limit,
	}
	if !cursor.Done() {
		s := string(cursor)
		req.Cursor = &s
	}
	return req
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
