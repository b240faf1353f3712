package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danmaku/internal/bilibili"
	"danmaku/internal/cache"
	"danmaku/internal/config"
	"danmaku/internal/dao"
	"danmaku/internal/ingest"
	"danmaku/internal/wordcloud"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakePlatform serves every video from a single search page, each video
// fitting in one segment.
type fakePlatform struct {
	order     []string
	danmakus  map[string][]string
	viewErr   map[string]error
	searchErr error
}

func (f *fakePlatform) add(bvid string, danmakus ...string) {
	f.order = append(f.order, bvid)
	f.danmakus[bvid] = danmakus
}

func (f *fakePlatform) VideoView(_ context.Context, bvid string, _ *bilibili.Credential) (*bilibili.VideoView, error) {
	if err := f.viewErr[bvid]; err != nil {
		return nil, err
	}
	for i, id := range f.order {
		if id == bvid {
			return &bilibili.VideoView{Bvid: bvid, Cid: int64(i + 1), Duration: 60}, nil
		}
	}
	return nil, bilibili.ErrVideoNotFound
}

func (f *fakePlatform) Segment(_ context.Context, cid int64, _ int, _ *bilibili.Credential) ([]string, error) {
	return f.danmakus[f.order[cid-1]], nil
}

func (f *fakePlatform) SearchVideos(_ context.Context, _ string, page int, _ *bilibili.Credential) (*bilibili.SearchPage, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	res := &bilibili.SearchPage{Page: page, NumResults: len(f.order)}
	if page == 1 {
		for _, id := range f.order {
			res.Result = append(res.Result, bilibili.SearchResult{Type: "video", Bvid: id})
		}
	}
	return res, nil
}

type spaceTokenizer struct{}

func (spaceTokenizer) Tokenize(text string) []string {
	return strings.Fields(text)
}

func newTestServer(t *testing.T) (*Server, *gin.Engine, *fakePlatform) {
	t.Helper()
	conf := config.DefaultConfig()
	conf.ExportDir = t.TempDir()
	conf.UIDir = t.TempDir()

	platform := &fakePlatform{
		danmakus: make(map[string][]string),
		viewErr:  make(map[string]error),
	}
	logger := logrus.NewEntry(logrus.New())
	ing := ingest.New(platform, ingest.Options{BatchSize: 3}, logger)
	renderer, err := wordcloud.New(wordcloud.Options{})
	require.NoError(t, err)

	s := newServer(conf, ing, spaceTokenizer{}, renderer, logger)
	return s, s.SetUpRouter(), platform
}

func get(t *testing.T, router http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func assertCode(t *testing.T, w *httptest.ResponseRecorder, status, code int) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	assert.Equal(t, code, decode[dao.Response](t, w).Code)
}

func bvid(i int) string {
	return fmt.Sprintf("BV1%09d", i)
}

func TestHealthzAndRequestId(t *testing.T) {
	_, router, _ := newTestServer(t)

	w := get(t, router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = get(t, router, "/api/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDbInfo(t *testing.T) {
	s, router, _ := newTestServer(t)

	resp := decode[dao.DbInfoResponse](t, get(t, router, "/api/db_info"))
	assert.Equal(t, 0, resp.TotalVideoCount)
	assert.Empty(t, resp.VideoBvids)

	s.store.Set("A", []string{"x", "y"})
	s.store.Set("B", []string{"z"})
	resp = decode[dao.DbInfoResponse](t, get(t, router, "/api/db_info"))
	assert.Equal(t, dao.CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.Equal(t, 2, resp.TotalVideoCount)
	assert.Equal(t, []string{"A", "B"}, resp.VideoBvids)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, resp.VideoDanmakuCount)
	assert.Equal(t, 3, resp.TotalDanmakuCount)
}

func TestTopDanmakus(t *testing.T) {
	s, router, _ := newTestServer(t)

	assertCode(t, get(t, router, "/api/top_danmakus"), http.StatusBadRequest, dao.CodeValidationFailed)
	assertCode(t, get(t, router, "/api/top_danmakus?n=abc"), http.StatusBadRequest, dao.CodeValidationFailed)
	assertCode(t, get(t, router, "/api/top_danmakus?n=0"), http.StatusForbidden, dao.CodeInvalidN)
	assertCode(t, get(t, router, "/api/top_danmakus?n=3"), http.StatusForbidden, dao.CodeEmptyDatabase)

	s.store.Set("A", []string{"hi", "yo", "hi"})
	s.store.Set("B", []string{"hi there", "yo"})

	w := get(t, router, "/api/top_danmakus?n=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"success","top_danmakus":[{"danmaku":"hi","count":2},{"danmaku":"yo","count":2}]}`, w.Body.String())

	w = get(t, router, "/api/top_danmakus?n=1&tokenize=true")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dao.TopDanmakusResponse](t, w)
	require.Len(t, resp.TopDanmakus, 1)
	assert.Equal(t, "hi", resp.TopDanmakus[0].Text)
	assert.Equal(t, 3, resp.TopDanmakus[0].Count)
}

func TestDbData(t *testing.T) {
	s, router, _ := newTestServer(t)
	var comments []string
	for i := 0; i < 25; i++ {
		comments = append(comments, fmt.Sprintf("c%d", i))
	}
	s.store.Set("A", comments)
	s.store.Set("E", nil)

	assertCode(t, get(t, router, "/api/db_data?bvid=A&size=10"), http.StatusBadRequest, dao.CodeValidationFailed)
	assertCode(t, get(t, router, "/api/db_data?bvid=Z&size=10&page=1"), http.StatusForbidden, dao.CodeBvidNotExist)
	assertCode(t, get(t, router, "/api/db_data?bvid=A&size=10&page=0"), http.StatusForbidden, dao.CodeInvalidPage)

	resp := decode[dao.DbDataResponse](t, get(t, router, "/api/db_data?bvid=A&size=10&page=2"))
	assert.Equal(t, comments[10:20], resp.Data)
	assert.Equal(t, 10, resp.PageSize)
	assert.Equal(t, 3, resp.PageCount)
	assert.Equal(t, 25, resp.TotalCount)

	resp = decode[dao.DbDataResponse](t, get(t, router, "/api/db_data?bvid=A&size=10&page=9"))
	assert.Equal(t, comments[20:], resp.Data)
	assert.Equal(t, 5, resp.PageSize)

	resp = decode[dao.DbDataResponse](t, get(t, router, "/api/db_data?bvid=A&size=0&page=1"))
	assert.Len(t, resp.Data, 25)
	assert.Equal(t, 1, resp.PageCount)

	resp = decode[dao.DbDataResponse](t, get(t, router, "/api/db_data?bvid=E&size=10&page=1"))
	assert.Equal(t, []string{}, resp.Data)
	assert.Equal(t, 0, resp.PageCount)
}

func TestFetch(t *testing.T) {
	s, router, platform := newTestServer(t)
	for i := 0; i < 5; i++ {
		platform.add(bvid(i), fmt.Sprintf("d%d", i))
	}
	s.store.Set("old", []string{"gone"})

	assertCode(t, get(t, router, "/api/fetch?n=2"), http.StatusBadRequest, dao.CodeValidationFailed)
	assertCode(t, get(t, router, "/api/fetch?keyword=k&n=0"), http.StatusForbidden, dao.CodeInvalidN)

	w := get(t, router, "/api/fetch?keyword=k&n=4")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[dao.FetchResponse](t, w)
	assert.Equal(t, []string{bvid(0), bvid(1), bvid(2), bvid(3)}, resp.Report.Ingested)

	assert.Equal(t, []string{bvid(0), bvid(1), bvid(2), bvid(3)}, s.store.Bvids())
	assert.False(t, s.store.Has("old"))
}

func TestFetch_PlatformFailureKeepsStore(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(p *fakePlatform)
		message string
	}{
		{
			name: "search transport failure",
			setup: func(p *fakePlatform) {
				p.searchErr = fmt.Errorf("%w: search: connection reset", bilibili.ErrTransport)
			},
			message: "platform transport failure",
		},
		{
			name: "searched video is gone",
			setup: func(p *fakePlatform) {
				p.viewErr[bvid(1)] = bilibili.ErrVideoNotFound
			},
			message: "video not found",
		},
		{
			name: "searched video view fails",
			setup: func(p *fakePlatform) {
				p.viewErr[bvid(2)] = fmt.Errorf("%w: view: status 502", bilibili.ErrTransport)
			},
			message: "status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, router, platform := newTestServer(t)
			for i := 0; i < 3; i++ {
				platform.add(bvid(i), fmt.Sprintf("d%d", i))
			}
			tt.setup(platform)
			s.store.Set("old", []string{"kept"})

			w := get(t, router, "/api/fetch?keyword=k&n=3")
			assert.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
			resp := decode[dao.Response](t, w)
			assert.NotEqual(t, dao.CodeBvidNotExist, resp.Code)
			assert.Contains(t, resp.Message, tt.message)

			assert.Equal(t, []string{"old"}, s.store.Bvids())
			got, err := s.store.Get("old")
			require.NoError(t, err)
			assert.Equal(t, []string{"kept"}, got)
		})
	}
}

func TestClear_PurgesViewCache(t *testing.T) {
	s, router, _ := newTestServer(t)
	vc, err := cache.NewViewCache("", time.Minute, logrus.NewEntry(logrus.New()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = vc.Close() })
	s.viewCache = vc

	vc.PutView(bvid(1), &bilibili.VideoView{Bvid: bvid(1), Cid: 1, Duration: 60})
	s.store.Set(bvid(1), []string{"a"})

	assertCode(t, get(t, router, "/api/clear"), http.StatusOK, dao.CodeSuccess)
	assert.Zero(t, s.store.Size())
	_, ok := vc.GetView(bvid(1))
	assert.False(t, ok)
}

func TestFetchVideo(t *testing.T) {
	s, router, platform := newTestServer(t)
	platform.add(bvid(7), "a", "b")

	assertCode(t, get(t, router, "/api/fetch_video?bvid=av123"), http.StatusBadRequest, dao.CodeValidationFailed)
	assertCode(t, get(t, router, "/api/fetch_video?bvid="+bvid(8)), http.StatusForbidden, dao.CodeBvidNotExist)

	w := get(t, router, "/api/fetch_video?bvid="+bvid(7))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[dao.FetchVideoResponse](t, w).DanmakuCount)
	got, err := s.store.Get(bvid(7))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestWordcloud(t *testing.T) {
	s, router, _ := newTestServer(t)

	assertCode(t, get(t, router, "/api/wordcloud"), http.StatusForbidden, dao.CodeEmptyDatabase)

	s.store.Set("A", []string{"hello world", "hello"})
	w := get(t, router, "/api/wordcloud?width=200&height=100")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "\x89PNG"))

	assertCode(t, get(t, router, "/api/wordcloud?width=-1"), http.StatusBadRequest, dao.CodeValidationFailed)
}

func TestExportImportExcel(t *testing.T) {
	s, router, _ := newTestServer(t)

	assertCode(t, get(t, router, "/api/export_excel?filename=out.xlsx"), http.StatusForbidden, dao.CodeEmptyDatabase)
	assertCode(t, get(t, router, "/api/export_excel?filename=out.csv"), http.StatusBadRequest, dao.CodeValidationFailed)
	assertCode(t, get(t, router, "/api/export_excel"), http.StatusBadRequest, dao.CodeValidationFailed)

	s.store.Set("A", []string{"x", "y"})
	s.store.Set("B", []string{"z"})
	w := get(t, router, "/api/export_excel?filename=../../out.xlsx")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[dao.ExportExcelResponse](t, w)
	assert.Equal(t, filepath.Join(s.conf.ExportDir, "out.xlsx"), resp.Path)
	_, err := os.Stat(resp.Path)
	require.NoError(t, err)

	assertCode(t, get(t, router, "/api/clear"), http.StatusOK, dao.CodeSuccess)
	assert.Zero(t, s.store.Size())

	assertCode(t, get(t, router, "/api/import_excel?filename=missing.xlsx"), http.StatusBadRequest, dao.CodeValidationFailed)
	assertCode(t, get(t, router, "/api/import_excel?filename=out.xlsx"), http.StatusOK, dao.CodeSuccess)
	assert.Equal(t, []string{"A", "B"}, s.store.Bvids())
	got, err := s.store.Get("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got)
}
