package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/toptracks/cache"
	"github.com/xeptore/toptracks/config"
	"github.com/xeptore/toptracks/errutil"
	"github.com/xeptore/toptracks/httputil"
	"github.com/xeptore/toptracks/log"
	"github.com/xeptore/toptracks/must"
	"github.com/xeptore/toptracks/spotify"
)

const PlaceholderSize = 72

var placeholderColor = color.RGBA{R: 0xd3, G: 0xd3, B: 0xd3, A: 0xff}

// Placeholder returns a PNG encoded light-gray square used in place of
// missing or unreachable album art.
var Placeholder = sync.OnceValue(func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, PlaceholderSize, PlaceholderSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: placeholderColor}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); nil != err {
		panic(fmt.Sprintf("failed to encode placeholder thumbnail: %v", err))
	}
	return buf.Bytes()
})

type Fetcher struct {
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewFetcher(c *cache.Cache, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		cache:  c,
		logger: logger.With().Str("module", "thumbnail").Logger(),
	}
}

// Fetch returns the image at imageURL. It never fails: an empty URL or a
// failed download yields Placeholder.
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) []byte {
	if imageURL == "" {
		return Placeholder()
	}

	item, err := f.cache.Thumbnails.Fetch(
		imageURL,
		cache.DefaultThumbnailTTL,
		func() ([]byte, error) { return download(ctx, imageURL) },
	)
	if nil != err {
		if errutil.IsContext(ctx) {
			f.logger.Warn().Err(ctx.Err()).Str("url", imageURL).Msg("Thumbnail download was cancelled")
		} else {
			f.logger.Warn().Func(log.Flaw(err)).Str("url", imageURL).Msg("Failed to download thumbnail")
		}
		return Placeholder()
	}
	return item.Value()
}

// SaveAll writes the album thumbnail of every track into dir as
// <track-id>.png or <track-id>.jpg, and returns the written file paths.
func (f *Fetcher) SaveAll(ctx context.Context, dir string, tracks []spotify.Track) ([]string, error) {
	if err := os.MkdirAll(dir, 0o0755); nil != err {
		flawP := flaw.P{"dir": dir, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to create thumbnails directory: %v", err)).Append(flawP)
	}

	written := make(map[string]struct{}, len(tracks))
	paths := make([]string, 0, len(tracks))
	for _, track := range tracks {
		if track.ID == "" {
			continue
		}
		if _, ok := written[track.ID]; ok {
			continue
		}
		if errutil.IsContext(ctx) {
			return paths, ctx.Err()
		}

		b := f.Fetch(ctx, track.Album.Thumbnail())
		filePath := filepath.Join(dir, track.ID+extension(b))
		if err := os.WriteFile(filePath, b, 0o0644); nil != err {
			flawP := flaw.P{"file_path": filePath, "err_debug_tree": errutil.Tree(err).FlawP()}
			return paths, flaw.From(fmt.Errorf("failed to write thumbnail file: %v", err)).Append(flawP)
		}
		written[track.ID] = struct{}{}
		paths = append(paths, filePath)
	}

	f.logger.Debug().Str("dir", dir).Int("files", len(paths)).Msg("Saved thumbnails")
	return paths, nil
}

func extension(b []byte) string {
	if http.DetectContentType(b) == "image/png" {
		return ".png"
	}
	return ".jpg"
}

func download(ctx context.Context, imageURL string) (b []byte, err error) {
	flawP := flaw.P{"url": imageURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to create thumbnail request: %v", err)).Append(flawP)
	}

	client := http.Client{Timeout: config.CoverDownloadTimeout} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		if errutil.IsTimeout(err) {
			return nil, flaw.From(fmt.Errorf("thumbnail request timed out after %s", config.CoverDownloadTimeout)).Append(flawP)
		}
		return nil, flaw.From(fmt.Errorf("failed to send thumbnail request: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close thumbnail response body: %v", closeErr)).Append(flawP)
			switch {
			case nil == err:
				err = closeErr
			case errutil.IsContext(ctx):
				err = flaw.From(errors.New("context has ended")).Join(closeErr)
			case errors.Is(err, context.DeadlineExceeded):
				err = flaw.From(errors.New("timeout has reached")).Join(closeErr)
			case errutil.IsFlaw(err):
				err = must.BeFlaw(err).Join(closeErr)
			default:
				panic(errutil.UnknownError(err))
			}
		}
	}()
	flawP["response"] = errutil.HTTPResponseFlawPayload(resp)

	if code := resp.StatusCode; code != http.StatusOK {
		return nil, flaw.From(fmt.Errorf("unexpected status code received from thumbnail request: %d", code)).Append(flawP)
	}

	respBytes, err := httputil.ReadResponseBody(ctx, resp)
	if nil != err {
		return nil, err
	}
	return respBytes, nil
}
