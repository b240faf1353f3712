// Package ingest pulls comment streams from the platform into a danmaku.Store,
// either one video at a time or for the top results of a keyword search.
package ingest

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"danmaku/internal/bilibili"
	"danmaku/internal/danmaku"
	"danmaku/internal/metrics"
)

// DefaultBatchSize is the number of videos fetched concurrently. It is also
// the most ever allowed in flight.
const (
	DefaultBatchSize = 3
	MaxBatchSize     = 3
)

// Platform is the subset of *bilibili.Client the ingestor needs.
type Platform interface {
	VideoView(ctx context.Context, bvid string, cred *bilibili.Credential) (*bilibili.VideoView, error)
	Segment(ctx context.Context, cid int64, index int, cred *bilibili.Credential) ([]string, error)
	SearchVideos(ctx context.Context, keyword string, page int, cred *bilibili.Credential) (*bilibili.SearchPage, error)
}

type Options struct {
	BatchSize int
	// IsolateFailures keeps the successful members of a batch when one of
	// them fails instead of failing the whole search.
	IsolateFailures bool
}

type Ingestor struct {
	platform  Platform
	batchSize int
	isolate   bool
	logger    *logrus.Entry
}

func New(platform Platform, opts Options, logger *logrus.Entry) *Ingestor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	opts.BatchSize = min(opts.BatchSize, MaxBatchSize)
	return &Ingestor{
		platform:  platform,
		batchSize: opts.BatchSize,
		isolate:   opts.IsolateFailures,
		logger:    logger,
	}
}

// SegmentCount is the number of 6 minute segments covering duration seconds.
// At least one segment is always fetched.
func SegmentCount(duration int) int {
	if duration <= 0 {
		return 1
	}
	return (duration + bilibili.SegmentSeconds - 1) / bilibili.SegmentSeconds
}

// FetchVideo downloads every comment of a video without touching any store.
func (in *Ingestor) FetchVideo(ctx context.Context, bvid string, cred *bilibili.Credential) ([]string, error) {
	if !bilibili.ValidBvid(bvid) {
		return nil, fmt.Errorf("%w: %q", bilibili.ErrInvalidVideoId, bvid)
	}
	view, err := in.platform.VideoView(ctx, bvid, cred)
	if err != nil {
		return nil, err
	}

	cid := view.PrimaryCid()
	count := SegmentCount(view.PrimaryDuration())
	danmakus := make([]string, 0)
	for i := 1; i <= count; i++ {
		seg, err := in.platform.Segment(ctx, cid, i, cred)
		if err != nil {
			return nil, fmt.Errorf("fetch segment %d/%d of %s: %w", i, count, bvid, err)
		}
		metrics.SegmentsFetched.Inc()
		danmakus = append(danmakus, seg...)
	}
	return danmakus, nil
}

// IngestVideo replaces the store entry for bvid with its current comments.
// The store is untouched when any lookup or segment fetch fails.
func (in *Ingestor) IngestVideo(ctx context.Context, store *danmaku.Store, bvid string, cred *bilibili.Credential) (int, error) {
	danmakus, err := in.FetchVideo(ctx, bvid, cred)
	if err != nil {
		metrics.VideosIngested.WithLabelValues("failed").Inc()
		return 0, err
	}
	store.Set(bvid, danmakus)
	metrics.VideosIngested.WithLabelValues("ok").Inc()
	metrics.CommentsIngested.Add(float64(len(danmakus)))
	in.logger.WithField("bvid", bvid).Debugf("ingested %d danmakus", len(danmakus))
	return len(danmakus), nil
}
