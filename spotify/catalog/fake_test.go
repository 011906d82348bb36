package catalog_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

const testToken = "test-token"

type fakeTrack struct {
	ID         string
	Popularity int
}

// fakeAPI serves the subset of the Web API the catalog client uses. Listings
// honor limit and offset, and set next while more items remain.
type fakeAPI struct {
	albums      []string
	albumTracks map[string][]string
	tracks      map[string]fakeTrack
	topTracks   []fakeTrack

	// tracksStatus, when set, is the status every bulk track request gets.
	tracksStatus int

	mu       sync.Mutex
	requests []*url.URL
}

func newFakeAPI(t *testing.T, api *fakeAPI) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /artists/{id}/albums", func(w http.ResponseWriter, r *http.Request) {
		writePage(w, r, api.albums)
	})
	mux.HandleFunc("GET /albums/{id}/tracks", func(w http.ResponseWriter, r *http.Request) {
		writePage(w, r, api.albumTracks[r.PathValue("id")])
	})
	mux.HandleFunc("GET /tracks", func(w http.ResponseWriter, r *http.Request) {
		if api.tracksStatus != 0 {
			w.WriteHeader(api.tracksStatus)
			return
		}
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		out := make([]any, 0, len(ids))
		for _, id := range ids {
			track, ok := api.tracks[id]
			if !ok {
				out = append(out, nil)
				continue
			}
			out = append(out, trackJSON(track))
		}
		writeJSON(w, map[string]any{"tracks": out})
	})
	mux.HandleFunc("GET /artists/{id}/top-tracks", func(w http.ResponseWriter, _ *http.Request) {
		out := make([]any, 0, len(api.topTracks))
		for _, track := range api.topTracks {
			out = append(out, trackJSON(track))
		}
		writeJSON(w, map[string]any{"tracks": out})
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.requests = append(api.requests, r.URL)
		api.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"status":401,"message":"Invalid access token"}}`))
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (api *fakeAPI) requestsTo(pathPrefix string) []*url.URL {
	api.mu.Lock()
	defer api.mu.Unlock()

	var out []*url.URL
	for _, u := range api.requests {
		if strings.HasPrefix(u.Path, pathPrefix) {
			out = append(out, u)
		}
	}
	return out
}

func (api *fakeAPI) requestCount() int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return len(api.requests)
}

func writePage(w http.ResponseWriter, r *http.Request, ids []string) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	start := min(offset, len(ids))
	end := min(offset+limit, len(ids))
	items := make([]any, 0, end-start)
	for _, id := range ids[start:end] {
		items = append(items, map[string]any{"id": id})
	}

	var next any
	if end < len(ids) {
		next = fmt.Sprintf("http://%s%s?offset=%d&limit=%d", r.Host, r.URL.Path, end, limit)
	}
	writeJSON(w, map[string]any{"items": items, "next": next, "offset": offset, "limit": limit, "total": len(ids)})
}

func trackJSON(track fakeTrack) map[string]any {
	return map[string]any{
		"id":            track.ID,
		"name":          "Track " + track.ID,
		"popularity":    track.Popularity,
		"external_urls": map[string]any{"spotify": "https://open.spotify.com/track/" + track.ID},
		"album": map[string]any{
			"id":   "album-of-" + track.ID,
			"name": "Album of " + track.ID,
			"images": []any{
				map[string]any{"url": "https://i.scdn.co/image/large", "width": 640, "height": 640},
				map[string]any{"url": "https://i.scdn.co/image/small", "width": 64, "height": 64},
			},
		},
		"artists": []any{map[string]any{"name": "Artist"}},
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func seqIDs(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + strconv.Itoa(i)
	}
	return out
}
