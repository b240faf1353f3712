package server

import (
	"context"
	goerrors "errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"

	_ "danmaku/docs"
	"danmaku/internal/bilibili"
	"danmaku/internal/cache"
	"danmaku/internal/config"
	"danmaku/internal/dao"
	"danmaku/internal/danmaku"
	"danmaku/internal/ingest"
	"danmaku/internal/metrics"
	"danmaku/internal/segment"
	"danmaku/internal/utils"
	"danmaku/internal/wordcloud"
	"danmaku/pkg/log"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	logger     *logrus.Entry

	ingestor  *ingest.Ingestor
	tokenizer danmaku.Tokenizer
	renderer  *wordcloud.Renderer
	viewCache *cache.ViewCache
	minioCli  *minio.Client

	// store is swapped wholesale by fetch and import, so handlers must read
	// it under mu.
	mu    sync.RWMutex
	store *danmaku.Store
}

func NewServer(ctx context.Context, conf *config.Config) (*Server, error) {
	logger := log.ComponentLogger(ctx, "server")

	opts := bilibili.Options{
		BaseURL:   conf.Bilibili.BaseURL,
		UserAgent: conf.Bilibili.UserAgent,
		Timeout:   time.Duration(conf.Bilibili.Timeout) * time.Second,
		RateLimit: conf.Bilibili.RateLimit,
		Burst:     conf.Bilibili.Burst,
		RetryMax:  conf.Bilibili.RetryMax,
	}
	var viewCache *cache.ViewCache
	if conf.Cache.Enabled {
		var err error
		viewCache, err = cache.NewViewCache(conf.Cache.Dir, time.Duration(conf.Cache.TTL)*time.Second,
			log.ComponentLogger(ctx, "cache"))
		if err != nil {
			return nil, fmt.Errorf("open view cache: %w", err)
		}
		opts.Cache = viewCache
	}
	client := bilibili.NewClient(opts)
	ingestor := ingest.New(client, ingest.Options{
		BatchSize:       conf.Search.BatchSize,
		IsolateFailures: conf.Search.IsolateFailures,
	}, log.ComponentLogger(ctx, "ingest"))

	tokenizer, err := segment.New(segment.Options{
		DictPath:       conf.Segment.DictPath,
		SlangWords:     conf.Segment.SlangWords,
		ExtraStopWords: conf.Segment.ExtraStopWords,
	})
	if err != nil {
		return nil, err
	}

	renderer, err := wordcloud.New(wordcloud.Options{
		FontPath:   conf.WordCloud.FontPath,
		MaxWords:   conf.WordCloud.MaxWords,
		Background: conf.WordCloud.Background,
		Colors:     conf.WordCloud.Colors,
	})
	if err != nil {
		return nil, err
	}

	s := newServer(conf, ingestor, tokenizer, renderer, logger)
	s.viewCache = viewCache

	if conf.S3.Enabled {
		s.minioCli, err = utils.NewMinioClient(conf.S3)
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		if err := utils.EnsureBucket(ctx, s.minioCli, conf.S3.Bucket, conf.S3.Region); err != nil {
			logger.WithError(err).Warn("export uploads may fail")
		}
	}
	return s, nil
}

func newServer(conf *config.Config, ingestor *ingest.Ingestor, tokenizer danmaku.Tokenizer,
	renderer *wordcloud.Renderer, logger *logrus.Entry) *Server {
	return &Server{
		conf:      conf,
		logger:    logger,
		ingestor:  ingestor,
		tokenizer: tokenizer,
		renderer:  renderer,
		store:     danmaku.NewStore(),
	}
}

func (s *Server) credential() *bilibili.Credential {
	cred := &s.conf.Bilibili.Credential
	if cred.IsEmpty() {
		return nil
	}
	return cred
}

func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(log.HttpXRequestId)
		if requestId == "" {
			requestId = strings.ReplaceAll(uuid.New().String(), "-", "")
		}
		c.Set(log.CtxRequestId, requestId)
		c.Header(log.HttpXRequestId, requestId)
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		status := c.Writer.Status()

		log.GetLogger(c).Info("ip: ", c.ClientIP(), " method: ", c.Request.Method, " path: ",
			c.Request.URL.Path, " status: ", status, " latency: ", latency)
	}
}

func (s *Server) Start() {
	gin.SetMode(gin.ReleaseMode)
	router := s.SetUpRouter()
	pprof.Register(router)
	s.httpServer = &http.Server{
		Addr:    s.conf.Addr,
		Handler: router,
	}

	var err error
	if s.conf.SSLCert != "" && s.conf.SSLKey != "" {
		logrus.Infof("start https server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServeTLS(s.conf.SSLCert, s.conf.SSLKey)
	} else {
		logrus.Infof("start http server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServe()
	}
	if err != nil && !goerrors.Is(err, http.ErrServerClosed) {
		logrus.Fatal(err)
	}
}

func (s *Server) Shutdown() {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			logrus.Fatalf("server forced to shutdown: %v", err)
		}
	}
	if s.viewCache != nil {
		if err := s.viewCache.Close(); err != nil {
			logrus.Warnf("close view cache: %v", err)
		}
	}
}

func (s *Server) writeError(c *gin.Context, code int, err error) {
	c.JSON(code, dao.Response{
		Code:    dao.CodeValidationFailed,
		Message: err.Error(),
	})
}

// writeBindError reports the first field that failed validation.
func (s *Server) writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if goerrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		s.writeError(c, http.StatusBadRequest, fmt.Errorf("invalid parameter %s: failed on %s", fe.Field(), fe.Tag()))
		return
	}
	s.writeError(c, http.StatusBadRequest, err)
}

func (s *Server) writeCode(c *gin.Context, code int) {
	status := http.StatusOK
	if code != dao.CodeSuccess {
		status = http.StatusForbidden
	}
	c.JSON(status, dao.NewResponse(code))
}

// writeDomainError maps store and platform errors onto API codes.
// notFoundCode is reported for a missing video and invalidCode for
// danmaku.ErrInvalidArgument; both depend on what the handler was asked for.
// A zero code falls through to a 500 carrying the error message.
func (s *Server) writeDomainError(c *gin.Context, err error, notFoundCode, invalidCode int) {
	switch {
	case goerrors.Is(err, danmaku.ErrEmptyDatabase):
		s.writeCode(c, dao.CodeEmptyDatabase)
	case notFoundCode > 0 && (goerrors.Is(err, danmaku.ErrKeyNotFound) ||
		goerrors.Is(err, bilibili.ErrVideoNotFound) ||
		goerrors.Is(err, bilibili.ErrInvalidVideoId)):
		s.writeCode(c, notFoundCode)
	case goerrors.Is(err, danmaku.ErrInvalidArgument) && invalidCode > 0:
		s.writeCode(c, invalidCode)
	default:
		log.GetLogger(c).WithError(err).Error("request failed")
		s.writeError(c, http.StatusInternalServerError, err)
	}
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		v.RegisterValidation("bvid", func(fl validator.FieldLevel) bool {
			return bilibili.ValidBvid(fl.Field().String())
		})
		v.RegisterValidation("xlsx", func(fl validator.FieldLevel) bool {
			return danmaku.ValidateExcelName(fl.Field().String()) == nil
		})
	}
}

func (s *Server) updateStoreGauge() {
	metrics.StoreVideos.Set(float64(s.store.Size()))
}
