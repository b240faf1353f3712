package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danmaku/internal/bilibili"
	"danmaku/internal/danmaku"
	"danmaku/internal/metrics"
)

type segCall struct {
	cid   int64
	index int
}

type fakePlatform struct {
	mu         sync.Mutex
	views      map[string]*bilibili.VideoView
	segments   map[int64][][]string
	failView   map[string]error
	failSeg    map[segCall]error
	pages      [][]string
	numResults int
	delay      time.Duration

	segCalls    []segCall
	searchCalls int
	viewCalls   int

	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		views:    make(map[string]*bilibili.VideoView),
		segments: make(map[int64][][]string),
		failView: make(map[string]error),
		failSeg:  make(map[segCall]error),
	}
}

func bvid(i int) string {
	return fmt.Sprintf("BV1%09d", i)
}

// addVideo registers a video whose comments are spread over the given segments.
func (f *fakePlatform) addVideo(id string, duration int, segments ...[]string) {
	cid := int64(len(f.views) + 100)
	f.views[id] = &bilibili.VideoView{
		Bvid:     id,
		Cid:      cid,
		Duration: duration,
		Pages:    []bilibili.VideoPage{{Cid: cid, Page: 1, Duration: duration}},
	}
	f.segments[cid] = segments
}

func (f *fakePlatform) VideoView(_ context.Context, id string, _ *bilibili.Credential) (*bilibili.VideoView, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		cur := f.maxInflight.Load()
		if n <= cur || f.maxInflight.CompareAndSwap(cur, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewCalls++
	if err := f.failView[id]; err != nil {
		return nil, err
	}
	view, ok := f.views[id]
	if !ok {
		return nil, bilibili.ErrVideoNotFound
	}
	return view, nil
}

func (f *fakePlatform) Segment(_ context.Context, cid int64, index int, _ *bilibili.Credential) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := segCall{cid: cid, index: index}
	f.segCalls = append(f.segCalls, call)
	if err := f.failSeg[call]; err != nil {
		return nil, err
	}
	segs := f.segments[cid]
	if index > len(segs) {
		return []string{}, nil
	}
	return segs[index-1], nil
}

func (f *fakePlatform) SearchVideos(_ context.Context, _ string, page int, _ *bilibili.Credential) (*bilibili.SearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	res := &bilibili.SearchPage{Page: page, NumResults: f.numResults}
	if page <= len(f.pages) {
		for _, id := range f.pages[page-1] {
			res.Result = append(res.Result, bilibili.SearchResult{Type: "video", Bvid: id})
		}
	}
	return res, nil
}

// searchFixture serves total videos, perPage per search page, each with one
// comment equal to its bvid.
func searchFixture(total, perPage int) *fakePlatform {
	f := newFakePlatform()
	f.numResults = total
	var page []string
	for i := 0; i < total; i++ {
		id := bvid(i)
		f.addVideo(id, 60, []string{id})
		page = append(page, id)
		if len(page) == perPage {
			f.pages = append(f.pages, page)
			page = nil
		}
	}
	if len(page) > 0 {
		f.pages = append(f.pages, page)
	}
	return f
}

func newTestIngestor(p Platform, isolate bool) *Ingestor {
	return New(p, Options{BatchSize: 3, IsolateFailures: isolate}, logrus.NewEntry(logrus.New()))
}

func TestSegmentCount(t *testing.T) {
	tests := []struct {
		duration int
		want     int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{360, 1},
		{361, 2},
		{720, 2},
		{721, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SegmentCount(tt.duration), "duration %d", tt.duration)
	}
}

func TestIngestVideo_ConcatenatesSegmentsInOrder(t *testing.T) {
	f := newFakePlatform()
	id := bvid(1)
	f.addVideo(id, 700, []string{"a", "b"}, []string{"c"})
	in := newTestIngestor(f, false)
	store := danmaku.NewStore()
	store.Set(id, []string{"stale"})
	okBefore := testutil.ToFloat64(metrics.VideosIngested.WithLabelValues("ok"))
	segBefore := testutil.ToFloat64(metrics.SegmentsFetched)

	n, err := in.IngestVideo(context.Background(), store, id, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.VideosIngested.WithLabelValues("ok")))
	assert.Equal(t, segBefore+2, testutil.ToFloat64(metrics.SegmentsFetched))

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	cid := f.views[id].Cid
	assert.Equal(t, []segCall{{cid, 1}, {cid, 2}}, f.segCalls)
}

func TestIngestVideo_ZeroDurationFetchesOneSegment(t *testing.T) {
	f := newFakePlatform()
	id := bvid(2)
	f.addVideo(id, 0)
	in := newTestIngestor(f, false)
	store := danmaku.NewStore()

	n, err := in.IngestVideo(context.Background(), store, id, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, f.segCalls, 1)
	assert.Equal(t, []string{id}, store.Bvids())
}

func TestIngestVideo_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed id", func(t *testing.T) {
		f := newFakePlatform()
		store := danmaku.NewStore()
		_, err := newTestIngestor(f, false).IngestVideo(ctx, store, "av170001", nil)
		assert.ErrorIs(t, err, bilibili.ErrInvalidVideoId)
		assert.Zero(t, f.viewCalls)
	})

	t.Run("unknown video", func(t *testing.T) {
		f := newFakePlatform()
		store := danmaku.NewStore()
		_, err := newTestIngestor(f, false).IngestVideo(ctx, store, bvid(3), nil)
		assert.ErrorIs(t, err, bilibili.ErrVideoNotFound)
		assert.Zero(t, store.Size())
	})

	t.Run("segment failure leaves the old entry", func(t *testing.T) {
		f := newFakePlatform()
		id := bvid(4)
		f.addVideo(id, 1000, []string{"a"}, []string{"b"}, []string{"c"})
		f.failSeg[segCall{f.views[id].Cid, 2}] = bilibili.ErrTransport
		store := danmaku.NewStore()
		store.Set(id, []string{"old"})

		_, err := newTestIngestor(f, false).IngestVideo(ctx, store, id, nil)
		assert.ErrorIs(t, err, bilibili.ErrTransport)
		got, _ := store.Get(id)
		assert.Equal(t, []string{"old"}, got)
	})
}

func TestIngestSearch_TakesRequestedCountInOrder(t *testing.T) {
	f := searchFixture(10, 5)
	f.delay = 30 * time.Millisecond
	store := danmaku.NewStore()

	report, err := newTestIngestor(f, false).IngestSearch(context.Background(), store, "keyword", 7, nil)
	require.NoError(t, err)

	want := []string{bvid(0), bvid(1), bvid(2), bvid(3), bvid(4), bvid(5), bvid(6)}
	assert.Equal(t, want, store.Bvids())
	assert.Equal(t, want, report.Ingested)
	assert.Equal(t, 2, f.searchCalls)
	assert.Equal(t, 7, f.viewCalls)
	assert.Equal(t, int32(3), f.maxInflight.Load())

	got, err := store.Get(bvid(6))
	require.NoError(t, err)
	assert.Equal(t, []string{bvid(6)}, got)
}

func TestNew_ClampsBatchSize(t *testing.T) {
	logger := logrus.NewEntry(logrus.New())
	assert.Equal(t, DefaultBatchSize, New(nil, Options{}, logger).batchSize)
	assert.Equal(t, 2, New(nil, Options{BatchSize: 2}, logger).batchSize)
	assert.Equal(t, MaxBatchSize, New(nil, Options{BatchSize: 10}, logger).batchSize)

	f := searchFixture(8, 8)
	f.delay = 20 * time.Millisecond
	store := danmaku.NewStore()
	_, err := New(f, Options{BatchSize: 10}, logger).IngestSearch(context.Background(), store, "keyword", 8, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, store.Size())
	assert.LessOrEqual(t, f.maxInflight.Load(), int32(MaxBatchSize))
}

func TestIngestSearch_StopsAtTotalResults(t *testing.T) {
	f := searchFixture(4, 20)
	store := danmaku.NewStore()

	report, err := newTestIngestor(f, false).IngestSearch(context.Background(), store, "keyword", 30, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, store.Size())
	assert.Equal(t, 4, report.NumResults)
	assert.Equal(t, 1, f.searchCalls)
}

func TestIngestSearch_SkipsDuplicates(t *testing.T) {
	f := newFakePlatform()
	f.numResults = 6
	for i := 0; i < 5; i++ {
		f.addVideo(bvid(i), 30, []string{"x"})
	}
	f.pages = [][]string{
		{bvid(0), bvid(1), bvid(2)},
		{bvid(2), bvid(3), bvid(4)},
	}
	store := danmaku.NewStore()

	_, err := newTestIngestor(f, false).IngestSearch(context.Background(), store, "keyword", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{bvid(0), bvid(1), bvid(2), bvid(3), bvid(4)}, store.Bvids())
	assert.Equal(t, 5, f.viewCalls)
}

func TestIngestSearch_InvalidArguments(t *testing.T) {
	f := searchFixture(3, 3)
	in := newTestIngestor(f, false)
	store := danmaku.NewStore()

	_, err := in.IngestSearch(context.Background(), store, "", 5, nil)
	assert.ErrorIs(t, err, danmaku.ErrInvalidArgument)
	_, err = in.IngestSearch(context.Background(), store, "keyword", 0, nil)
	assert.ErrorIs(t, err, danmaku.ErrInvalidArgument)
	assert.Zero(t, f.searchCalls)
	assert.Zero(t, store.Size())
}

func TestIngestSearch_StrictFailsBatchAsUnit(t *testing.T) {
	f := searchFixture(5, 5)
	f.failView[bvid(4)] = bilibili.ErrVideoNotFound
	store := danmaku.NewStore()

	report, err := newTestIngestor(f, false).IngestSearch(context.Background(), store, "keyword", 5, nil)
	assert.ErrorIs(t, err, bilibili.ErrVideoNotFound)
	// the first batch completed before the failing one started
	assert.Equal(t, []string{bvid(0), bvid(1), bvid(2)}, store.Bvids())
	assert.NotContains(t, store.Bvids(), bvid(3))
	assert.Equal(t, []string{bvid(0), bvid(1), bvid(2)}, report.Ingested)
}

func TestIngestSearch_IsolatedFailuresAreBackfilled(t *testing.T) {
	f := searchFixture(5, 5)
	failure := errors.New("boom")
	f.failView[bvid(1)] = failure
	store := danmaku.NewStore()

	report, err := newTestIngestor(f, true).IngestSearch(context.Background(), store, "keyword", 4, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{bvid(0), bvid(2), bvid(3), bvid(4)}, store.Bvids())
	require.Len(t, report.Failed, 1)
	assert.Equal(t, bvid(1), report.Failed[0].Bvid)
	assert.Equal(t, "boom", report.Failed[0].Error)
}
