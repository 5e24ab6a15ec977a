package channelacl_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestora/backend/pkg/channelacl"
)

func TestInMemStore_ConcurrentSameKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := channelacl.NewInMemStore()
	tenantID := uuid.New()
	userID := uuid.New()

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				channel := fmt.Sprintf("channel-%d-%d", w, i)
				assert.NoError(t, store.Grant(ctx, tenantID, userID, channel))
			}
		}()
	}
	wg.Wait()

	channels, err := channelacl.Channels(ctx, store, tenantID, userID)
	require.NoError(t, err)
	assert.Len(t, channels, workers*perWorker, "no grant may be lost to a concurrent writer")
}

func TestInMemStore_ConcurrentGrantRevokeCheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := channelacl.NewInMemStore()
	tenantID := uuid.New()

	const workers = 8
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			userID := uuid.New()
			for i := 0; i < 100; i++ {
				channel := fmt.Sprintf("ch-%d", i%5)
				assert.NoError(t, store.Grant(ctx, tenantID, userID, channel))
				_, err := store.Check(ctx, tenantID, userID, channel)
				assert.NoError(t, err)
				if i%2 == 0 {
					assert.NoError(t, store.Revoke(ctx, tenantID, userID, channel))
				}
				if w%2 == 0 {
					_, err := store.List(ctx, tenantID)
					assert.NoError(t, err)
				}
			}
		}()
	}
	wg.Wait()
}
