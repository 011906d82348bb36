package catalog

import (
	"context"
	"iter"
	"maps"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/xeptore/toptracks/config"
	"github.com/xeptore/toptracks/ptr"
	"github.com/xeptore/toptracks/spotify"
)

// Page is a single listing page together with the window used to fetch it.
type Page[T any] struct {
	Items  []T
	Next   *string
	Offset int
	Limit  int
}

func (p Page[T]) HasNext() bool {
	return nil != p.Next
}

// Paginate lazily walks a listing endpoint that uses limit/offset paging.
//
// Every range over the returned sequence starts a fresh crawl from offset
// zero. A failed page is yielded once as an error, after which the sequence
// ends. The offset always advances by pageSize, whatever number of items the
// page held, and the crawl stops at the first page without a next link.
func Paginate[T any](ctx context.Context, c *Client, token, endpoint string, params url.Values, pageSize int) iter.Seq2[T, error] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return func(yield func(T, error) bool) {
		var zero T
		for offset := 0; ; offset += pageSize {
			page, err := fetchPage[T](ctx, c, token, endpoint, params, offset, pageSize)
			if nil != err {
				yield(zero, err)
				return
			}

			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}

			if !page.HasNext() {
				return
			}
		}
	}
}

func fetchPage[T any](ctx context.Context, c *Client, token, endpoint string, params url.Values, offset, limit int) (*Page[T], error) {
	reqParams := make(url.Values, len(params)+2)
	maps.Copy(reqParams, params)
	reqParams.Set("limit", strconv.Itoa(limit))
	reqParams.Set("offset", strconv.Itoa(offset))

	respBytes, status, err := c.get(ctx, token, endpoint, reqParams, config.PageRequestTimeout)
	if nil != err {
		return nil, err
	}

	var respBody struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(respBytes, &respBody); nil != err {
		return nil, &spotify.FetchError{Endpoint: endpoint, Status: status, Err: decodeFlaw(err, respBytes, "page")}
	}

	page := Page[T]{
		Items:  respBody.Items,
		Next:   nil,
		Offset: offset,
		Limit:  limit,
	}
	if next := gjson.GetBytes(respBytes, "next"); next.Exists() && next.Type != gjson.Null {
		page.Next = ptr.Of(next.String())
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("offset", offset).
		Int("limit", limit).
		Int("items", len(page.Items)).
		Bool("has_next", page.HasNext()).
		Msg("Fetched page")

	return &page, nil
}
