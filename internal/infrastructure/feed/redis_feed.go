package feed

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lostudea/lostudea-api/internal/domain/repository"
)

const channelPrefix = "lostudea:changes:"

// RedisFeed implements the change feed over Redis pub/sub. Every write to
// a collection publishes one message on that collection's channel; each
// subscriber turns messages into ticks that prompt a full re-read.
type RedisFeed struct {
	rdb    *redis.Client
	logger *logrus.Logger
}

func NewRedisFeed(rdb *redis.Client, logger *logrus.Logger) *RedisFeed {
	return &RedisFeed{rdb: rdb, logger: logger}
}

func (f *RedisFeed) Publish(ctx context.Context, collection string) error {
	err := f.rdb.Publish(ctx, channelPrefix+collection, "1").Err()
	if err != nil && f.logger != nil {
		f.logger.WithError(err).WithField("collection", collection).Warn("change feed publish failed")
	}
	return err
}

// Subscribe opens a pub/sub subscription for one collection. Ticks are
// dropped, not queued, when the receiver is busy: a coalesced tick still
// triggers a full snapshot re-read, so no change can be missed, only
// batched.
func (f *RedisFeed) Subscribe(ctx context.Context, collection string) (<-chan struct{}, func(), error) {
	sub := f.rdb.Subscribe(ctx, channelPrefix+collection)
	// Force the subscription to be established before returning so callers
	// cannot miss events published right after Subscribe.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	ticks := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer close(ticks)
		ch := sub.Channel()
		for {
			select {
			case <-done:
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				select {
				case ticks <- struct{}{}:
				default:
				}
			}
		}
	}()

	cancel := func() {
		close(done)
		_ = sub.Close()
	}
	return ticks, cancel, nil
}

var _ repository.ChangeFeed = (*RedisFeed)(nil)
