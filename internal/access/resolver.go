package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// AssignmentSource loads the explicit admin role stored for a user. An
// unknown user has no assignment and returns "" without error.
type AssignmentSource interface {
	AssignedRole(ctx context.Context, userID string) (string, error)
}

// ResolverConfig collects Resolver dependencies. Redis and Metrics are
// optional. LoadTimeout bounds a shared store read, which outlives any single
// caller's context.
type ResolverConfig struct {
	Source      AssignmentSource
	Redis       *redis.Client
	CacheTTL    time.Duration
	LoadTimeout time.Duration
	Logger      *slog.Logger
	Metrics     *Metrics
}

const defaultLoadTimeout = 5 * time.Second

// Resolver resolves admin roles, caching stored assignments in Redis.
type Resolver struct {
	source  AssignmentSource
	redis   *redis.Client
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger
	metrics *Metrics
	group   singleflight.Group
}

// NewResolver constructs a Resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	timeout := cfg.LoadTimeout
	if timeout <= 0 {
		timeout = defaultLoadTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		source:  cfg.Source,
		redis:   cfg.Redis,
		ttl:     ttl,
		timeout: timeout,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// Resolve returns the effective admin role for p. p.AssignedRole is ignored
// and loaded from the assignment source. Errors mean the assignment could not
// be read; callers must deny access in that case.
func (r *Resolver) Resolve(ctx context.Context, p Principal) (Resolution, error) {
	assigned, err := r.assignedRole(ctx, p.UserID)
	if err != nil {
		return Resolution{UserID: p.UserID, Source: SourceNone}, fmt.Errorf("access: load assigned role: %w", err)
	}
	p.AssignedRole = assigned
	res, anomaly := Decide(p)
	r.metrics.observe(res, anomaly)
	if anomaly != nil {
		r.logger.Warn("rejected role value, denying admin access",
			slog.String("user_id", anomaly.UserID),
			slog.String("field", anomaly.Field),
			slog.String("value", anomaly.Value),
			slog.Any("error", anomaly.Err),
		)
	}
	return res, nil
}

// Invalidate drops the cached assignment for userID and bumps its
// generation so that a load already in flight cannot write the old value
// back.
func (r *Resolver) Invalidate(ctx context.Context, userID string) error {
	if r.redis == nil {
		return nil
	}
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(userID))
		pipe.Expire(ctx, generationKey(userID), generationTTL)
		pipe.Del(ctx, cacheKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("access: invalidate: %w", err)
	}
	return nil
}

func (r *Resolver) assignedRole(ctx context.Context, userID string) (string, error) {
	if r.redis != nil {
		cached, err := r.redis.Get(ctx, cacheKey(userID)).Result()
		switch {
		case err == nil:
			return cached, nil
		case errors.Is(err, redis.Nil):
		default:
			r.logger.Warn("role cache read", slog.String("user_id", userID), slog.Any("error", err))
		}
	}
	if r.source == nil {
		return "", nil
	}
	ch := r.group.DoChan(userID, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.load(loadCtx, userID)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// load reads the store and fills the cache unless the user was invalidated
// while the read was in flight.
func (r *Resolver) load(ctx context.Context, userID string) (string, error) {
	var gen int64
	if r.redis != nil {
		var err error
		gen, err = r.generation(ctx, r.redis, userID)
		if err != nil {
			r.logger.Warn("role cache generation", slog.String("user_id", userID), slog.Any("error", err))
		}
	}
	assigned, err := r.source.AssignedRole(ctx, userID)
	if err != nil {
		return "", err
	}
	if r.redis != nil {
		if err := r.store(ctx, userID, assigned, gen); err != nil && !errors.Is(err, errStaleLoad) {
			r.logger.Warn("role cache write", slog.String("user_id", userID), slog.Any("error", err))
		}
	}
	return assigned, nil
}

var errStaleLoad = errors.New("access: assignment changed during load")

func (r *Resolver) store(ctx context.Context, userID, assigned string, gen int64) error {
	genKey := generationKey(userID)
	return r.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := r.generation(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(userID), assigned, r.ttl)
			return nil
		})
		if errors.Is(err, redis.TxFailedErr) {
			return errStaleLoad
		}
		return err
	}, genKey)
}

func (r *Resolver) generation(ctx context.Context, c stringGetter, userID string) (int64, error) {
	gen, err := c.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// generationTTL must exceed the load timeout.
const generationTTL = 24 * time.Hour

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func cacheKey(userID string) string {
	return "access:assigned:" + userID
}

func generationKey(userID string) string {
	return "access:generation:" + userID
}
