package redlock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutexLocker_SerializesSameAccount(t *testing.T) {
	locker := NewMutexLocker()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), 1)
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Equal(t, 0, locker.held())
}

func TestMutexLocker_IndependentAccounts(t *testing.T) {
	locker := NewMutexLocker()

	release, err := locker.Acquire(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	other, err := locker.Acquire(ctx, 2)
	require.NoError(t, err)
	other()
}

func TestMutexLocker_ContextCancelled(t *testing.T) {
	locker := NewMutexLocker()

	release, err := locker.Acquire(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()
	assert.Equal(t, 0, locker.held())
}

func TestRedisLocker_Acquire(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := NewRedisLocker(client, 30*time.Second, 200*time.Millisecond)

	release, err := locker.Acquire(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, mr.Exists(AccountLockKey(7)))
	assert.Equal(t, 30*time.Second, mr.TTL(AccountLockKey(7)))

	// A second holder times out while the first still owns the account
	_, err = locker.Acquire(context.Background(), 7)
	assert.Error(t, err)

	release()
	assert.False(t, mr.Exists(AccountLockKey(7)))

	release, err = locker.Acquire(context.Background(), 7)
	require.NoError(t, err)
	release()
}

func TestRedisLocker_ExpiredLockCanBeTaken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := NewRedisLocker(client, time.Second, 100*time.Millisecond)

	stale, err := locker.Acquire(context.Background(), 3)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	release, err := locker.Acquire(context.Background(), 3)
	require.NoError(t, err)

	// Releasing the expired lock must not drop the new holder's key
	stale()
	assert.True(t, mr.Exists(AccountLockKey(3)))
	release()
	assert.False(t, mr.Exists(AccountLockKey(3)))
}
