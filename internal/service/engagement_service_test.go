package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edushare-my/edushare-api/pkg/jobs"
)

type countingStoreStub struct {
	mu        sync.Mutex
	views     map[string]int
	downloads map[string]int
}

func newCountingStoreStub() *countingStoreStub {
	return &countingStoreStub{views: map[string]int{}, downloads: map[string]int{}}
}

func (s *countingStoreStub) IncrementViewCount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[id]++
	return nil
}

func (s *countingStoreStub) IncrementDownloadCount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads[id]++
	return nil
}

func (s *countingStoreStub) totals(id string) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views[id], s.downloads[id]
}

func TestEngagementServiceRecordsCounters(t *testing.T) {
	store := newCountingStoreStub()
	svc := NewEngagementService(store, nil, nil, jobs.QueueConfig{Workers: 1, BufferSize: 8})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	svc.MaterialViewed("mat-1")
	svc.MaterialViewed("mat-1")
	svc.MaterialDownloaded("mat-1")

	require.Eventually(t, func() bool {
		views, downloads := store.totals("mat-1")
		return views == 2 && downloads == 1
	}, time.Second, 5*time.Millisecond)

	svc.Stop()
}

func TestEngagementServiceDropsWhenStopped(t *testing.T) {
	store := newCountingStoreStub()
	svc := NewEngagementService(store, nil, nil, jobs.QueueConfig{Workers: 1, BufferSize: 1})

	svc.MaterialViewed("mat-1")

	views, _ := store.totals("mat-1")
	require.Zero(t, views)
}
