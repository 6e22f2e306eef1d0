package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veleda/skald/internal/atlas"
	"github.com/veleda/skald/internal/state"
)

const (
	defaultPageInterval = 2 * time.Second
	defaultPageSize     = 100

	// maxBackoff caps the delay between fetches after consecutive failures.
	maxBackoff = 30 * time.Second
)

// StartPager launches a background goroutine that pages through bulk
// metadata matching filter and appends each page to the store. It returns
// immediately. The goroutine stops when the context is cancelled, when the
// API reports no further stories, or when credentials are rejected.
func StartPager(ctx context.Context, store *state.Store, fetcher atlas.MetadataFetcher, filter atlas.MetadataQuery, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPageInterval
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}

	go func() {
		cursor := filter.MinFicID
		failures := 0
		pages := 0

		for {
			query := filter
			query.MinFicID = cursor

			page, err := fetcher.FetchBulkMetadata(ctx, query)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return
				}
				var authErr *atlas.AuthError
				if errors.As(err, &authErr) {
					store.Halt(err)
					logrus.WithError(err).Error("atlas rejected credentials, pager stopped")
					return
				}
				failures++
				store.Fail(err)
				logrus.WithError(err).Warn("page fetch failed")
			case len(page) == 0:
				store.MarkExhausted()
				logrus.WithField("pages", pages).Info("no further stories, pager stopped")
				return
			default:
				failures = 0
				pages++
				store.Append(page)
				cursor = maxStoryID(page) + 1
				logrus.WithFields(logrus.Fields{
					"stories": len(page),
					"next":    cursor,
				}).Debug("page fetched")
			}

			if !sleepCtx(ctx, calculateBackoff(failures, interval)) {
				return
			}
		}
	}()
}

// calculateBackoff returns the delay before the next fetch given the number
// of consecutive failures. The delay doubles per failure and is capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// sleepCtx waits for d or until ctx is done, reporting whether the full
// delay elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func maxStoryID(stories []atlas.StoryMetadata) int64 {
	var max int64
	for _, s := range stories {
		if s.ID > max {
			max = s.ID
		}
	}
	return max
}
