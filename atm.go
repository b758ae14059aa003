/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package atm

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/blnkfinance/blnk-atm/cache"
	"github.com/blnkfinance/blnk-atm/config"
	"github.com/blnkfinance/blnk-atm/database"
	redlock "github.com/blnkfinance/blnk-atm/internal/lock"
	redis_db "github.com/blnkfinance/blnk-atm/internal/redis-db"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100

	// maxWriteAttempts bounds the reload-and-retry loop on a version conflict.
	maxWriteAttempts = 3
	receiptCacheTTL  = 24 * time.Hour
)

var tracer = otel.Tracer("atm")

// ATM is the transaction engine. It holds no per-session state; every call
// names the account it acts on.
type ATM struct {
	datasource   database.IDataSource
	locker       redlock.AccountLocker
	receipts     cache.Cache
	webhooks     WebhookSender
	historyLimit int

	redis redis.UniversalClient
	queue *Queue
}

type Option func(*ATM)

// WithLocker replaces the default in-process account locker.
func WithLocker(locker redlock.AccountLocker) Option {
	return func(a *ATM) {
		a.locker = locker
	}
}

func WithReceiptCache(c cache.Cache) Option {
	return func(a *ATM) {
		a.receipts = c
	}
}

// WithWebhooks makes the engine publish an event after each applied transaction.
func WithWebhooks(sender WebhookSender) Option {
	return func(a *ATM) {
		a.webhooks = sender
	}
}

// WithHistoryLimit sets the number of entries ListHistory returns when the
// caller does not ask for a specific count.
func WithHistoryLimit(limit int) Option {
	return func(a *ATM) {
		if limit > 0 {
			a.historyLimit = min(limit, MaxHistoryLimit)
		}
	}
}

func NewATM(datasource database.IDataSource, opts ...Option) *ATM {
	a := &ATM{
		datasource:   datasource,
		locker:       redlock.NewMutexLocker(),
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewATMFromConfig wires the engine from configuration. With a Redis DSN the
// account locks are distributed, receipts are cached in Redis and webhooks go
// through the asynq queue. Without one everything stays in process.
func NewATMFromConfig(datasource database.IDataSource, conf *config.Configuration) (*ATM, error) {
	opts := []Option{WithHistoryLimit(conf.History.DefaultLimit)}

	var (
		redisClient redis.UniversalClient
		queue       *Queue
	)
	if conf.Redis.Enabled() {
		r, err := redis_db.NewRedisClient(redis_db.SplitAddresses(conf.Redis.Dns), conf.Redis.SkipTLSVerify)
		if err != nil {
			return nil, err
		}
		redisClient = r.Client()

		opts = append(opts,
			WithLocker(redlock.NewRedisLocker(redisClient, conf.Lock.TTL(), conf.Lock.WaitTimeout())),
			WithReceiptCache(cache.NewRedisCache(redisClient)),
		)

		if conf.Notification.Webhook.Url != "" {
			queue, err = NewQueue(conf)
			if err != nil {
				_ = redisClient.Close()
				return nil, err
			}
			opts = append(opts, WithWebhooks(queue))
		}
	} else {
		opts = append(opts, WithReceiptCache(cache.NewLocalCache(10000, receiptCacheTTL)))
	}

	a := NewATM(datasource, opts...)
	a.redis = redisClient
	a.queue = queue
	return a, nil
}

// Close releases the Redis connections opened by NewATMFromConfig. The
// datasource belongs to the caller and is left open.
func (a *ATM) Close() error {
	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			return err
		}
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// HistoryLimit returns the default page size used by ListHistory.
func (a *ATM) HistoryLimit() int {
	return a.historyLimit
}
