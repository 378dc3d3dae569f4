package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"assetdesk/pkg/logger"
)

// InvalidationChannel is the PostgreSQL NOTIFY channel for cache flushes.
// The payload is a namespace such as "domains" or "domains:lookup";
// an empty payload flushes everything.
const InvalidationChannel = "assetdesk_cache_invalidated"

// Notify asks every listening instance to flush namespace.
func Notify(ctx context.Context, pool *pgxpool.Pool, namespace string) error {
	if _, err := pool.Exec(ctx, "SELECT pg_notify($1, $2)", InvalidationChannel, namespace); err != nil {
		return fmt.Errorf("notify cache invalidation: %w", err)
	}
	return nil
}

// Invalidator flushes a local Store when another instance, or an operator,
// publishes on InvalidationChannel. Only process-local stores need it;
// a shared Redis store is flushed once by whoever publishes.
type Invalidator struct {
	pool  *pgxpool.Pool
	store Store
	log   *logger.Logger

	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewInvalidator creates an invalidator for store. A nil log uses the
// default logger.
func NewInvalidator(pool *pgxpool.Pool, store Store, log *logger.Logger) *Invalidator {
	if log == nil {
		log = logger.Default()
	}
	return &Invalidator{pool: pool, store: store, log: log.WithComponent("cache-invalidator")}
}

// Start begins listening in the background.
func (i *Invalidator) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	i.lifecycleMu.Lock()
	defer i.lifecycleMu.Unlock()
	if i.started {
		return
	}
	i.ctx, i.cancel = context.WithCancel(ctx)
	i.started = true

	i.wg.Add(1)
	go i.listenLoop()
	i.log.WithContext(i.ctx).Infow("cache invalidator started", "channel", InvalidationChannel)
}

// Stop stops listening and waits for the listener to exit.
func (i *Invalidator) Stop() {
	i.lifecycleMu.Lock()
	if !i.started {
		i.lifecycleMu.Unlock()
		return
	}
	cancel := i.cancel
	i.started = false
	i.cancel = nil
	i.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	i.wg.Wait()
	i.log.Infow("cache invalidator stopped")
}

// Flush removes the keys of namespace from the local store.
func (i *Invalidator) Flush(ctx context.Context, namespace string) (int, error) {
	n, err := i.store.DeletePrefix(ctx, NamespacePrefix(namespace))
	if err != nil {
		return n, fmt.Errorf("flush %q: %w", namespace, err)
	}
	i.log.WithContext(ctx).Infow("cache flushed", "namespace", namespace, "keys", n)
	return n, nil
}

func (i *Invalidator) listenLoop() {
	defer i.wg.Done()

	for {
		select {
		case <-i.ctx.Done():
			return
		default:
		}

		conn, err := i.pool.Acquire(i.ctx)
		if err != nil {
			if i.ctx.Err() != nil {
				return
			}
			i.log.WithContext(i.ctx).Errorw("failed to acquire connection for LISTEN", "error", err)
			i.sleep(time.Second)
			continue
		}

		if _, err = conn.Exec(i.ctx, "LISTEN "+InvalidationChannel); err != nil {
			i.log.WithContext(i.ctx).Errorw("failed to LISTEN", "error", err)
			conn.Release()
			i.sleep(time.Second)
			continue
		}

		i.waitForNotifications(conn)
		conn.Release()
	}
}

func (i *Invalidator) waitForNotifications(conn *pgxpool.Conn) {
	for {
		ctx, cancel := context.WithTimeout(i.ctx, 30*time.Second)
		n, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if i.ctx.Err() != nil {
				return
			}
			if ctx.Err() != nil {
				// Idle timeout; keep listening.
				continue
			}
			i.log.WithContext(i.ctx).Warnw("LISTEN connection lost", "error", err)
			return
		}

		_, _ = i.Flush(i.ctx, strings.TrimSpace(n.Payload))
	}
}

func (i *Invalidator) sleep(d time.Duration) {
	select {
	case <-i.ctx.Done():
	case <-time.After(d):
	}
}
