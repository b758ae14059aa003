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

package redlock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Release gives up a lock obtained from an AccountLocker. It is safe to call
// more than once.
type Release func()

// AccountLocker serializes mutations of a single account. Operations on
// different accounts never block each other.
type AccountLocker interface {
	Acquire(ctx context.Context, accountID int64) (Release, error)
}

// MutexLocker is an in-process AccountLocker. It is enough when a single ATM
// process owns the database.
type MutexLocker struct {
	mu    sync.Mutex
	locks map[int64]*accountLock
}

type accountLock struct {
	ch   chan struct{}
	refs int
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{locks: make(map[int64]*accountLock)}
}

func (m *MutexLocker) Acquire(ctx context.Context, accountID int64) (Release, error) {
	m.mu.Lock()
	l, ok := m.locks[accountID]
	if !ok {
		l = &accountLock{ch: make(chan struct{}, 1)}
		m.locks[accountID] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		m.unref(accountID, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			m.unref(accountID, l)
		})
	}, nil
}

func (m *MutexLocker) unref(accountID int64, l *accountLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, accountID)
	}
}

// held reports how many accounts currently have a waiter or holder.
func (m *MutexLocker) held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// RedisLocker is an AccountLocker shared by every ATM process pointed at the
// same Redis. Locks expire after ttl so a crashed holder cannot wedge an account.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, wait: wait}
}

func AccountLockKey(accountID int64) string {
	return fmt.Sprintf("atm:account:%d", accountID)
}

func (r *RedisLocker) Acquire(ctx context.Context, accountID int64) (Release, error) {
	locker := NewLocker(r.client, AccountLockKey(accountID), uuid.NewString())
	if err := locker.WaitLock(ctx, r.ttl, r.wait); err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled
			if err := locker.Unlock(context.Background()); err != nil {
				logrus.Errorf("failed to release account lock %d: %v", accountID, err)
			}
		})
	}, nil
}
