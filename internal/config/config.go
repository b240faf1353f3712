package config

import (
	"fmt"

	"danmaku/internal/bilibili"
)

type BilibiliConfig struct {
	BaseURL   string  `yaml:"baseURL"`
	UserAgent string  `yaml:"userAgent"`
	Timeout   int     `yaml:"timeout"`
	RateLimit float64 `yaml:"rateLimit"`
	Burst     int     `yaml:"burst"`
	RetryMax  int     `yaml:"retryMax"`

	Credential bilibili.Credential `yaml:"credential"`
}

type SearchConfig struct {
	BatchSize       int  `yaml:"batchSize"`
	IsolateFailures bool `yaml:"isolateFailures"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"` // empty keeps the cache in memory
	TTL     int    `yaml:"ttl"`
}

type WordCloudConfig struct {
	FontPath      string   `yaml:"fontPath"`
	DefaultWidth  int      `yaml:"defaultWidth"`
	DefaultHeight int      `yaml:"defaultHeight"`
	MaxWords      int      `yaml:"maxWords"`
	Background    string   `yaml:"background"`
	Colors        []string `yaml:"colors"`
}

type SegmentConfig struct {
	DictPath       string   `yaml:"dictPath"`
	SlangWords     []string `yaml:"slangWords"`
	ExtraStopWords []string `yaml:"extraStopWords"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Region          string `yaml:"region"`
}

func (s3 *S3Config) UrlPrefix() string {
	if s3.UseSSL {
		return fmt.Sprintf("https://%s/%s", s3.Endpoint, s3.Bucket)
	}
	return fmt.Sprintf("http://%s/%s", s3.Endpoint, s3.Bucket)
}

type Config struct {
	Addr      string          `yaml:"addr"`
	SSLCert   string          `yaml:"sslCert"`
	SSLKey    string          `yaml:"sslKey"`
	UIDir     string          `yaml:"uiDir"`
	ExportDir string          `yaml:"exportDir"`
	Bilibili  BilibiliConfig  `yaml:"bilibili"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	WordCloud WordCloudConfig `yaml:"wordcloud"`
	Segment   SegmentConfig   `yaml:"segment"`
	S3        S3Config        `yaml:"s3"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr:      "127.0.0.1:8080",
		UIDir:     "visualizer_ui/dist",
		ExportDir: "exports",
		Bilibili: BilibiliConfig{
			BaseURL:   bilibili.DefaultBaseURL,
			UserAgent: bilibili.DefaultUserAgent,
			Timeout:   15,
			RateLimit: 8,
			Burst:     4,
			RetryMax:  2,
		},
		Search: SearchConfig{
			BatchSize: 3,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     600,
		},
		WordCloud: WordCloudConfig{
			DefaultWidth:  800,
			DefaultHeight: 600,
			MaxWords:      200,
			Background:    "#ffffff",
		},
		S3: S3Config{
			Bucket:   "danmaku",
			Endpoint: "127.0.0.1:9000",
			UseSSL:   false,
			Region:   "us-east-1",
		},
	}
}
