package catalog

import (
	"context"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/xeptore/toptracks/config"
	"github.com/xeptore/toptracks/mathutil"
	"github.com/xeptore/toptracks/spotify"
)

const tracksEndpoint = "/tracks"

// orderedSet keeps ids in first-seen order, each at most once.
type orderedSet struct {
	seen map[string]struct{}
	ids  []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), ids: nil}
}

// add reports whether id was not seen before. Empty ids are never added.
func (s *orderedSet) add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

func (s *orderedSet) len() int {
	return len(s.ids)
}

// CollectAllTracks crawls every release of the artist in the given groups,
// gathers the distinct track ids across all of them, and resolves those ids to
// full tracks in batches. The result is ordered by popularity, highest first.
// An empty includeGroups selects DefaultIncludeGroups.
func (c *Client) CollectAllTracks(ctx context.Context, token, artistID, market, includeGroups string) ([]spotify.Track, error) {
	if includeGroups = strings.TrimSpace(includeGroups); includeGroups == "" {
		includeGroups = DefaultIncludeGroups
	}
	logger := c.logger.With().Str("artist_id", artistID).Str("market", market).Logger()

	albumParams := make(url.Values, 2)
	albumParams.Set("include_groups", includeGroups)
	albumParams.Set("market", market)

	albums := newOrderedSet()
	for album, err := range Paginate[idItem](ctx, c, token, "/artists/"+url.PathEscape(artistID)+"/albums", albumParams, DefaultPageSize) {
		if nil != err {
			return nil, err
		}
		albums.add(album.ID)
	}
	logger.Debug().Int("albums", albums.len()).Msg("Collected artist albums")

	trackParams := make(url.Values, 1)
	trackParams.Set("market", market)

	trackIDs := newOrderedSet()
	for _, albumID := range albums.ids {
		for track, err := range Paginate[idItem](ctx, c, token, "/albums/"+url.PathEscape(albumID)+"/tracks", trackParams, DefaultPageSize) {
			if nil != err {
				return nil, err
			}
			trackIDs.add(track.ID)
		}
	}
	logger.Debug().Int("track_ids", trackIDs.len()).Msg("Collected album track ids")

	if trackIDs.len() == 0 {
		return []spotify.Track{}, nil
	}

	numBatches := mathutil.CeilInts(trackIDs.len(), MaxTracksPerRequest)
	logger.Debug().Int("batches", numBatches).Msg("Resolving tracks")

	tracks := make([]spotify.Track, 0, trackIDs.len())
	for i, batch := range lo.Chunk(trackIDs.ids, MaxTracksPerRequest) {
		batchTracks, err := c.tracksBatch(ctx, token, batch, market)
		if nil != err {
			return nil, err
		}
		tracks = append(tracks, batchTracks...)
		logger.Debug().Int("batch", i+1).Int("of", numBatches).Int("resolved", len(batchTracks)).Msg("Resolved tracks batch")
	}

	SortByPopularity(tracks)
	logger.Debug().Int("tracks", len(tracks)).Msg("Collected all tracks")
	return tracks, nil
}

func (c *Client) tracksBatch(ctx context.Context, token string, ids []string, market string) ([]spotify.Track, error) {
	reqParams := make(url.Values, 2)
	reqParams.Set("ids", strings.Join(ids, ","))
	reqParams.Set("market", market)

	respBytes, status, err := c.get(ctx, token, tracksEndpoint, reqParams, config.TracksBatchRequestTimeout)
	if nil != err {
		return nil, err
	}

	var respBody struct {
		Tracks []*trackPayload `json:"tracks"`
	}
	if err := json.Unmarshal(respBytes, &respBody); nil != err {
		return nil, &spotify.FetchError{Endpoint: tracksEndpoint, Status: status, Err: decodeFlaw(err, respBytes, "tracks batch")}
	}
	return toTracks(respBody.Tracks), nil
}
