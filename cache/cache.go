package cache

import (
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

var DefaultThumbnailTTL = 1 * time.Hour

const thumbnailsMaxSize = 500

type Cache struct {
	Thumbnails ThumbnailsCache
}

func New() *Cache {
	thumbnailsCache := ccache.New(
		ccache.Configure[[]byte]().
			MaxSize(thumbnailsMaxSize).
			GetsPerPromote(3).
			ItemsToPrune(1),
	)

	return &Cache{
		Thumbnails: ThumbnailsCache{
			c:   thumbnailsCache,
			mux: sync.Mutex{},
		},
	}
}

// ThumbnailsCache holds downloaded album art keyed by image URL. Fetch calls
// are serialized so concurrent misses on one key download it once.
type ThumbnailsCache struct {
	c   *ccache.Cache[[]byte]
	mux sync.Mutex
}

func (c *ThumbnailsCache) Fetch(k string, ttl time.Duration, fetch func() ([]byte, error)) (*ccache.Item[[]byte], error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.c.Fetch(k, ttl, fetch)
}

func (c *ThumbnailsCache) Len() int {
	return c.c.ItemCount()
}
