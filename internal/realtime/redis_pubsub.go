package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pairline/backend/internal/matchmaking"
)

const publishTimeout = 2 * time.Second

// StatsWriter is the subset of the Redis client the stats publisher uses.
type StatsWriter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// StatsPublisher mirrors lobby snapshots to Redis: the latest one is stored under
// the channel name with a TTL and published on the channel.
type StatsPublisher struct {
	client  StatsWriter
	channel string
	ttl     time.Duration
	latest  chan matchmaking.Snapshot
	logger  *zap.Logger
}

// NewStatsPublisher creates a publisher. ttl bounds how long a snapshot outlives a dead process.
func NewStatsPublisher(client StatsWriter, channel string, ttl time.Duration, logger *zap.Logger) *StatsPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsPublisher{
		client:  client,
		channel: channel,
		ttl:     ttl,
		latest:  make(chan matchmaking.Snapshot, 1),
		logger:  logger,
	}
}

// Offer hands over a snapshot without blocking, replacing one that has not been published yet.
// It matches matchmaking.SnapshotHandler.
func (p *StatsPublisher) Offer(s matchmaking.Snapshot) {
	for {
		select {
		case p.latest <- s:
			return
		default:
		}
		select {
		case <-p.latest:
		default:
		}
	}
}

// Run publishes offered snapshots until ctx is cancelled.
func (p *StatsPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-p.latest:
			if err := p.publish(ctx, s); err != nil {
				p.logger.Warn("publish lobby stats failed", zap.Error(err))
			}
		}
	}
}

func (p *StatsPublisher) publish(ctx context.Context, s matchmaking.Snapshot) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.client.Set(ctx, p.channel, body, p.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", p.channel, err)
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}
