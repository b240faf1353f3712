package ingest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"danmaku/internal/bilibili"
	"danmaku/internal/danmaku"
	"danmaku/internal/metrics"
)

type VideoFailure struct {
	Bvid  string `json:"bvid"`
	Error string `json:"error"`
}

// SearchReport summarises one search ingestion.
type SearchReport struct {
	Keyword    string         `json:"keyword"`
	Requested  int            `json:"requested"`
	NumResults int            `json:"numResults"`
	Pages      int            `json:"pages"`
	Ingested   []string       `json:"ingested"`
	Failed     []VideoFailure `json:"failed,omitempty"`
}

// IngestSearch ingests up to maxCount videos found for keyword, in the
// platform's ranking order. Videos are fetched in batches; a batch is
// committed to the store only after all of its members have finished.
//
// By default a failing video fails the batch and the search, leaving earlier
// batches in the store. With IsolateFailures the failure is recorded in the
// report and the search keeps going until maxCount videos succeeded or the
// results run out.
func (in *Ingestor) IngestSearch(ctx context.Context, store *danmaku.Store, keyword string, maxCount int, cred *bilibili.Credential) (*SearchReport, error) {
	if keyword == "" {
		return nil, fmt.Errorf("%w: empty keyword", danmaku.ErrInvalidArgument)
	}
	if maxCount <= 0 {
		return nil, fmt.Errorf("%w: max count must be positive, got %d", danmaku.ErrInvalidArgument, maxCount)
	}

	logger := in.logger.WithField("keyword", keyword)
	report := &SearchReport{Keyword: keyword, Requested: maxCount, Ingested: []string{}}
	seen := make(map[string]struct{})
	soFar := 0

	for page := 1; ; page++ {
		res, err := in.platform.SearchVideos(ctx, keyword, page, cred)
		if err != nil {
			return report, fmt.Errorf("search %q page %d: %w", keyword, page, err)
		}
		report.Pages = page
		report.NumResults = res.NumResults

		target := min(maxCount, res.NumResults)
		if soFar >= target || len(res.Result) == 0 {
			break
		}

		var fresh []string
		for _, r := range res.Result {
			if r.Bvid == "" {
				continue
			}
			if _, dup := seen[r.Bvid]; dup {
				continue
			}
			seen[r.Bvid] = struct{}{}
			fresh = append(fresh, r.Bvid)
		}
		logger.Debugf("page %d: %d results, %d fresh", page, len(res.Result), len(fresh))

		// Only isolated failures can leave room for more of this page.
		for len(fresh) > 0 && soFar < target {
			need := min(target, soFar+len(fresh)) - soFar
			ok, err := in.ingestBatches(ctx, store, fresh[:need], cred, report)
			if err != nil {
				return report, err
			}
			fresh = fresh[need:]
			if in.isolate {
				soFar += ok
			} else {
				soFar += need
			}
		}
		if soFar >= target || (res.NumPages > 0 && page >= res.NumPages) {
			break
		}
	}

	logger.Infof("ingested %d videos (%d failed) over %d pages", len(report.Ingested), len(report.Failed), report.Pages)
	return report, nil
}

// ingestBatches fetches bvids batchSize at a time and returns how many were
// stored.
func (in *Ingestor) ingestBatches(ctx context.Context, store *danmaku.Store, bvids []string, cred *bilibili.Credential, report *SearchReport) (int, error) {
	stored := 0
	for start := 0; start < len(bvids); start += in.batchSize {
		batch := bvids[start:min(start+in.batchSize, len(bvids))]
		results := make([][]string, len(batch))
		errs := make([]error, len(batch))

		var g errgroup.Group
		for i, bvid := range batch {
			g.Go(func() error {
				results[i], errs[i] = in.FetchVideo(ctx, bvid, cred)
				return errs[i]
			})
		}
		_ = g.Wait()

		if !in.isolate {
			for i, err := range errs {
				if err != nil {
					metrics.VideosIngested.WithLabelValues("failed").Inc()
					return stored, fmt.Errorf("ingest %s: %w", batch[i], err)
				}
			}
		}

		for i, bvid := range batch {
			if errs[i] != nil {
				in.logger.WithField("bvid", bvid).WithError(errs[i]).Warn("skipping video")
				metrics.VideosIngested.WithLabelValues("failed").Inc()
				report.Failed = append(report.Failed, VideoFailure{Bvid: bvid, Error: errs[i].Error()})
				continue
			}
			store.Set(bvid, results[i])
			metrics.VideosIngested.WithLabelValues("ok").Inc()
			metrics.CommentsIngested.Add(float64(len(results[i])))
			report.Ingested = append(report.Ingested, bvid)
			stored++
		}
	}
	return stored, nil
}
