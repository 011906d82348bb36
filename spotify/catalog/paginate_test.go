package catalog_test

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/toptracks/mathutil"
	"github.com/xeptore/toptracks/spotify"
	"github.com/xeptore/toptracks/spotify/catalog"
)

type item struct {
	ID string `json:"id"`
}

func collect(t *testing.T, seq iter.Seq2[item, error]) ([]string, error) {
	t.Helper()
	ids := []string{}
	for it, err := range seq {
		if nil != err {
			return ids, err
		}
		ids = append(ids, it.ID)
	}
	return ids, nil
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name     string
		items    int
		pageSize int
		limit    string
	}{
		{name: "multiple_pages", items: 120, pageSize: 50, limit: "50"},
		{name: "exact_pages", items: 100, pageSize: 50, limit: "50"},
		{name: "single_page", items: 7, pageSize: 50, limit: "50"},
		{name: "empty", items: 0, pageSize: 50, limit: "50"},
		{name: "small_pages", items: 11, pageSize: 3, limit: "3"},
		{name: "default_page_size", items: 51, pageSize: 0, limit: "50"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			api := &fakeAPI{albums: seqIDs("a", tc.items)}
			srv := newFakeAPI(t, api)
			client := catalog.New(srv.URL, zerolog.Nop())

			ids, err := collect(t, catalog.Paginate[item](t.Context(), client, testToken, "/artists/x/albums", nil, tc.pageSize))
			require.NoError(t, err)
			assert.Equal(t, api.albums, ids)

			pageSize := tc.pageSize
			if pageSize <= 0 {
				pageSize = catalog.DefaultPageSize
			}
			// An empty listing still takes the one request that reports it empty.
			expectedPages := max(1, mathutil.CeilInts(tc.items, pageSize))
			requests := api.requestsTo("/artists/x/albums")
			require.Len(t, requests, expectedPages)
			for i, u := range requests {
				assert.Equal(t, tc.limit, u.Query().Get("limit"))
				assert.Equal(t, strconv.Itoa(i*pageSize), u.Query().Get("offset"))
			}
		})
	}
}

func TestPaginateRestartsOnEveryRange(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{albums: seqIDs("a", 60)}
	srv := newFakeAPI(t, api)
	seq := catalog.Paginate[item](t.Context(), catalog.New(srv.URL, zerolog.Nop()), testToken, "/artists/x/albums", nil, 50)

	first, err := collect(t, seq)
	require.NoError(t, err)
	second, err := collect(t, seq)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, api.requestsTo("/artists/x/albums"), 4)
}

func TestPaginateStopsWhenConsumerBreaks(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{albums: seqIDs("a", 200)}
	srv := newFakeAPI(t, api)

	for it, err := range catalog.Paginate[item](t.Context(), catalog.New(srv.URL, zerolog.Nop()), testToken, "/artists/x/albums", nil, 50) {
		require.NoError(t, err)
		assert.Equal(t, "a0", it.ID)
		break
	}
	assert.Equal(t, 1, api.requestCount())
}

func TestPaginateBaseParams(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{albums: seqIDs("a", 3)}
	srv := newFakeAPI(t, api)

	params := url.Values{}
	params.Set("market", "SE")
	params.Set("limit", "999")
	params.Set("offset", "999")

	ids, err := collect(t, catalog.Paginate[item](t.Context(), catalog.New(srv.URL, zerolog.Nop()), testToken, "/artists/x/albums", params, 50))
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	requests := api.requestsTo("/artists/x/albums")
	require.Len(t, requests, 1)
	assert.Equal(t, "SE", requests[0].Query().Get("market"))
	assert.Equal(t, "50", requests[0].Query().Get("limit"))
	assert.Equal(t, "0", requests[0].Query().Get("offset"))
	assert.Equal(t, "999", params.Get("limit"), "base params must not be mutated")
}

func TestPaginateShortPageWithNextAdvancesByPageSize(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		offsets []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		mu.Lock()
		offsets = append(offsets, offset)
		mu.Unlock()
		switch offset {
		case "0":
			writeJSON(w, map[string]any{"items": []any{map[string]any{"id": "1"}, map[string]any{"id": "2"}, map[string]any{"id": "3"}}, "next": "more"})
		default:
			writeJSON(w, map[string]any{"items": []any{map[string]any{"id": "51"}}, "next": nil})
		}
	}))
	t.Cleanup(srv.Close)

	ids, err := collect(t, catalog.Paginate[item](t.Context(), catalog.New(srv.URL, zerolog.Nop()), testToken, "/list", nil, 50))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "51"}, ids)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"0", "50"}, offsets)
}

func TestPaginateMissingNextTerminates(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, map[string]any{"items": []any{map[string]any{"id": "1"}}})
	}))
	t.Cleanup(srv.Close)

	ids, err := collect(t, catalog.Paginate[item](t.Context(), catalog.New(srv.URL, zerolog.Nop()), testToken, "/list", nil, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)
	assert.EqualValues(t, 1, calls.Load())
}

func TestPaginateFailures(t *testing.T) {
	t.Parallel()

	t.Run("server_error_after_first_page", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("offset") == "0" {
				writeJSON(w, map[string]any{"items": []any{map[string]any{"id": "1"}}, "next": "more"})
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		ids, err := collect(t, catalog.Paginate[item](t.Context(), catalog.New(srv.URL, zerolog.Nop()), testToken, "/list", nil, 1))
		assert.Equal(t, []string{"1"}, ids)
		var fetchErr *spotify.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusInternalServerError, fetchErr.Status)
		assert.Equal(t, "/list", fetchErr.Endpoint)
	})

	t.Run("unauthorized", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{albums: seqIDs("a", 3)}
		srv := newFakeAPI(t, api)

		_, err := collect(t, catalog.Paginate[item](t.Context(), catalog.New(srv.URL, zerolog.Nop()), "bad-token", "/artists/x/albums", nil, 50))
		var fetchErr *spotify.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusUnauthorized, fetchErr.Status)
	})

	t.Run("malformed_payload", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"items": "nope"`))
		}))
		t.Cleanup(srv.Close)

		_, err := collect(t, catalog.Paginate[item](t.Context(), catalog.New(srv.URL, zerolog.Nop()), testToken, "/list", nil, 50))
		var fetchErr *spotify.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusOK, fetchErr.Status)
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()

		_, err := collect(t, catalog.Paginate[item](t.Context(), catalog.New(srv.URL, zerolog.Nop()), testToken, "/list", nil, 50))
		var fetchErr *spotify.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Zero(t, fetchErr.Status)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{albums: seqIDs("a", 3)}
		srv := newFakeAPI(t, api)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := collect(t, catalog.Paginate[item](ctx, catalog.New(srv.URL, zerolog.Nop()), testToken, "/artists/x/albums", nil, 50))
		require.ErrorIs(t, err, context.Canceled)
		var fetchErr *spotify.FetchError
		assert.False(t, errors.As(err, &fetchErr))
	})
}
