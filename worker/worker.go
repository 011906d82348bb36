package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"
	"golang.org/x/sync/errgroup"

	"github.com/xeptore/toptracks/log"
	"github.com/xeptore/toptracks/result"
	"github.com/xeptore/toptracks/spotify"
	"github.com/xeptore/toptracks/spotify/catalog"
)

// Func performs a complete fetch: credentials, token, then catalog requests.
type Func func(ctx context.Context, req catalog.Request) ([]spotify.Track, error)

type Outcome struct {
	Tracks  []spotify.Track
	Mode    catalog.Mode
	Elapsed time.Duration
}

type Job struct {
	ArtistRef string
	Mode      catalog.Mode
	CreatedAt time.Time
}

func (j *Job) flawP() flaw.P {
	return flaw.P{
		"artist_ref": j.ArtistRef,
		"mode":       j.Mode.String(),
		"created_at": j.CreatedAt,
	}
}

type JobAlreadyRunningError struct {
	ArtistRef string
}

func (e *JobAlreadyRunningError) Error() string {
	return fmt.Sprintf("fetch of %q is already running", e.ArtistRef)
}

// Worker runs at most one fetch at a time in the background.
type Worker struct {
	fetch      Func
	logger     zerolog.Logger
	mutex      sync.Mutex
	currentJob atomic.Pointer[Job]
	group      errgroup.Group
}

func New(fetch Func, logger zerolog.Logger) *Worker {
	return &Worker{ //nolint:exhaustruct
		fetch:  fetch,
		logger: logger.With().Str("module", "worker").Logger(),
	}
}

// Submit starts req in the background. The returned channel receives exactly
// one result and is then closed. While a job is in flight Submit returns
// *JobAlreadyRunningError. A started job cannot be cancelled other than
// through ctx.
func (w *Worker) Submit(ctx context.Context, req catalog.Request) (<-chan result.Of[Outcome], error) {
	if !w.mutex.TryLock() {
		if job := w.currentJob.Load(); nil != job {
			return nil, &JobAlreadyRunningError{ArtistRef: job.ArtistRef}
		}
		return nil, &JobAlreadyRunningError{ArtistRef: ""}
	}

	job := &Job{ArtistRef: req.ArtistRef, Mode: req.Mode, CreatedAt: time.Now()}
	w.currentJob.Store(job)

	out := make(chan result.Of[Outcome], 1)
	w.group.Go(func() error {
		res := w.run(ctx, job, req)
		w.currentJob.Store(nil)
		w.mutex.Unlock()
		out <- res
		close(out)
		return nil
	})
	return out, nil
}

// Wait blocks until the in-flight job, if any, has delivered its result.
func (w *Worker) Wait() {
	_ = w.group.Wait()
}

func (w *Worker) run(ctx context.Context, job *Job, req catalog.Request) (res result.Of[Outcome]) {
	logger := w.logger.With().Str("artist_ref", job.ArtistRef).Str("mode", job.Mode.String()).Logger()
	defer func() {
		if r := recover(); nil != r {
			logger.Error().Func(log.Panic(r)).Msg("Fetch job panicked")
			res = result.Err[Outcome](flaw.From(fmt.Errorf("fetch job panicked: %v", r)).Append(job.flawP()))
		}
	}()

	logger.Debug().Msg("Starting fetch job")
	tracks, err := w.fetch(ctx, req)
	if nil != err {
		logger.Debug().Err(err).Msg("Fetch job failed")
		return result.Err[Outcome](err)
	}

	outcome := Outcome{
		Tracks:  tracks,
		Mode:    req.Mode,
		Elapsed: time.Since(job.CreatedAt),
	}
	logger.Debug().Int("tracks", len(tracks)).Dur("elapsed", outcome.Elapsed).Msg("Fetch job finished")
	return result.Ok(&outcome)
}
