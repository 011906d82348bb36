package catalog

import (
	"context"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/xeptore/toptracks/config"
	"github.com/xeptore/toptracks/spotify"
)

// TopTracks returns the artist's top tracks in market, most popular first.
func (c *Client) TopTracks(ctx context.Context, token, artistID, market string) ([]spotify.Track, error) {
	endpoint := "/artists/" + url.PathEscape(artistID) + "/top-tracks"
	reqParams := make(url.Values, 1)
	reqParams.Set("market", market)

	respBytes, status, err := c.get(ctx, token, endpoint, reqParams, config.TopTracksRequestTimeout)
	if nil != err {
		return nil, err
	}

	var respBody struct {
		Tracks []*trackPayload `json:"tracks"`
	}
	if err := json.Unmarshal(respBytes, &respBody); nil != err {
		return nil, &spotify.FetchError{Endpoint: endpoint, Status: status, Err: decodeFlaw(err, respBytes, "top tracks")}
	}

	tracks := toTracks(respBody.Tracks)
	SortByPopularity(tracks)
	c.logger.Debug().Str("artist_id", artistID).Int("tracks", len(tracks)).Msg("Fetched top tracks")
	return tracks, nil
}
