package bilibili

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"danmaku/internal/metrics"
	"danmaku/pkg/log"
)

const (
	DefaultBaseURL   = "https://api.bilibili.com"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

	viewPath    = "/x/web-interface/view"
	segmentPath = "/x/v2/dm/web/seg.so"
	searchPath  = "/x/web-interface/search/type"
	spiPath     = "/x/frontend/finger/spi"

	referer = "https://www.bilibili.com/"
)

// ViewCache remembers video metadata between ingestions.
type ViewCache interface {
	GetView(bvid string) (*VideoView, bool)
	PutView(bvid string, view *VideoView)
}

type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RateLimit is in requests per second; zero disables pacing.
	RateLimit float64
	Burst     int
	RetryMax  int
	Cache     ViewCache
}

type Client struct {
	baseURL   string
	userAgent string
	httpCli   *http.Client
	cache     ViewCache
	logger    *logrus.Entry

	spiMu   sync.Mutex
	buvidMu sync.Mutex
	buvid3  string
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	tr := &Transport{
		Base: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		RetryMax: opts.RetryMax,
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		tr.Limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		httpCli: &http.Client{
			Timeout:   opts.Timeout,
			Transport: tr,
		},
		cache:  opts.Cache,
		logger: log.ComponentLogger(context.Background(), "bilibili"),
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) newRequest(ctx context.Context, path string, query url.Values, cred *Credential) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", referer)
	for _, cookie := range cred.Cookies() {
		req.AddCookie(cookie)
	}
	if cred == nil || cred.Buvid3 == "" {
		if buvid := c.currentBuvid3(); buvid != "" {
			req.AddCookie(&http.Cookie{Name: "buvid3", Value: buvid})
		}
	}
	return req, nil
}

// get performs a GET and returns the raw body of a 200 answer.
func (c *Client) get(ctx context.Context, path string, query url.Values, cred *Credential) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.PlatformRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	req, err := c.newRequest(ctx, path, query, cred)
	if err != nil {
		return nil, transportError(path, err)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		metrics.PlatformRequestsTotal.WithLabelValues(path, "error").Inc()
		return nil, transportError(path, err)
	}
	defer resp.Body.Close()

	metrics.PlatformRequestsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode != http.StatusOK {
		return nil, transportError(path, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(path, fmt.Errorf("read body: %w", err))
	}
	return body, nil
}

// getJSON unwraps the {code, message, data} envelope into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, cred *Credential, out any) error {
	body, err := c.get(ctx, path, query, cred)
	if err != nil {
		return err
	}
	return decodeEnvelope(path, body, out)
}

func decodeEnvelope(path string, body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return transportError(path, fmt.Errorf("decode envelope: %w", err))
	}
	if env.Code != 0 {
		return &APIError{Endpoint: path, Code: env.Code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return transportError(path, fmt.Errorf("decode data: %w", err))
	}
	return nil
}

// ensureBuvid3 obtains an anonymous buvid3 cookie once; the search endpoint
// rejects requests without one.
func (c *Client) ensureBuvid3(ctx context.Context, cred *Credential) {
	if cred != nil && cred.Buvid3 != "" {
		return
	}
	c.spiMu.Lock()
	defer c.spiMu.Unlock()
	if c.currentBuvid3() != "" {
		return
	}

	var data struct {
		B3 string `json:"b_3"`
		B4 string `json:"b_4"`
	}
	if err := c.getJSON(ctx, spiPath, nil, nil, &data); err != nil {
		c.logger.WithError(err).Warn("acquire buvid3 failed, continuing without it")
		return
	}
	c.buvidMu.Lock()
	c.buvid3 = data.B3
	c.buvidMu.Unlock()
	c.logger.Debugf("acquired buvid3 %s", data.B3)
}

func (c *Client) currentBuvid3() string {
	c.buvidMu.Lock()
	defer c.buvidMu.Unlock()
	return c.buvid3
}
