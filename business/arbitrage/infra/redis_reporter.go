package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/fd1az/quote-engine/business/arbitrage/app"
	"github.com/fd1az/quote-engine/business/arbitrage/domain"
	"github.com/fd1az/quote-engine/internal/apperror"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/logger"
)

const defaultStream = "quote-engine:results"

// Ensure RedisReporter implements Reporter.
var _ app.Reporter = (*RedisReporter)(nil)

// RedisReporter appends every DEX result to a Redis stream.
type RedisReporter struct {
	rdb    *redis.Client
	stream string
	maxLen int64
	logger logger.LoggerInterface
}

// NewRedisReporter creates a reporter from cfg.
func NewRedisReporter(cfg config.RedisConfig, log logger.LoggerInterface) *RedisReporter {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	stream := cfg.Stream
	if stream == "" {
		stream = defaultStream
	}
	return &RedisReporter{rdb: rdb, stream: stream, maxLen: cfg.MaxLen, logger: log}
}

// Start checks the connection.
func (r *RedisReporter) Start(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return apperror.Network(apperror.CodeReporterFailed, "redis ping", err)
	}
	return nil
}

// Handle publishes DEX results and scan completion markers.
func (r *RedisReporter) Handle(ctx context.Context, ev app.Event) {
	var err error
	switch ev.Kind {
	case app.EventDEXResult:
		if ev.Result == nil {
			return
		}
		err = r.Publish(ctx, ev.ScanID, *ev.Result)
	case app.EventScanCompleted:
		err = r.add(ctx, map[string]any{
			"kind":      string(ev.Kind),
			"scan_id":   ev.ScanID,
			"evaluated": ev.Evaluated,
		})
	default:
		return
	}
	if err != nil {
		r.logger.Warn(ctx, "redis publish failed", "kind", ev.Kind, "stream", r.stream, "error", err)
	}
}

// Publish XADDs one result.
func (r *RedisReporter) Publish(ctx context.Context, scanID string, res domain.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return r.add(ctx, map[string]any{
		"kind":       string(app.EventDEXResult),
		"scan_id":    scanID,
		"id":         res.ID,
		"token":      res.Token,
		"direction":  res.Direction.Key(),
		"dex_venue":  res.DEXVenue,
		"pnl":        strconv.FormatFloat(res.PnL, 'f', -1, 64),
		"profitable": strconv.FormatBool(res.Profitable()),
		"result":     string(payload),
	})
}

func (r *RedisReporter) add(ctx context.Context, values map[string]any) error {
	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: values,
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	if err := r.rdb.XAdd(ctx, args).Err(); err != nil {
		return apperror.Network(apperror.CodeReporterFailed, "xadd "+r.stream, err)
	}
	return nil
}

// Stop closes the client.
func (r *RedisReporter) Stop() error {
	return r.rdb.Close()
}
