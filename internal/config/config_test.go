package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestInitConfig_OverlaysDefaults(t *testing.T) {
	p := writeConfig(t, `
addr: 0.0.0.0:9090
bilibili:
  credential:
    sessdata: abc
search:
  isolateFailures: true
`)
	conf, err := InitConfig(p, false)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", conf.Addr)
	assert.Equal(t, "abc", conf.Bilibili.Credential.SESSDATA)
	assert.True(t, conf.Search.IsolateFailures)
	assert.Equal(t, 3, conf.Search.BatchSize)
	assert.Equal(t, 15, conf.Bilibili.Timeout)
}

func TestInitConfig_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := InitConfig(missing, false)
	assert.Error(t, err)

	conf, err := InitConfig(missing, true)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), conf)
}

func TestInitConfig_RejectsBadBatchSize(t *testing.T) {
	for _, size := range []int{0, -1, 4, 10} {
		p := writeConfig(t, fmt.Sprintf("search:\n  batchSize: %d\n", size))
		_, err := InitConfig(p, false)
		assert.Error(t, err, "batch size %d", size)
	}

	p := writeConfig(t, "search:\n  batchSize: 2\n")
	conf, err := InitConfig(p, false)
	require.NoError(t, err)
	assert.Equal(t, 2, conf.Search.BatchSize)
}

func TestS3UrlPrefix(t *testing.T) {
	s3 := S3Config{Endpoint: "minio.local:9000", Bucket: "danmaku"}
	assert.Equal(t, "http://minio.local:9000/danmaku", s3.UrlPrefix())
	s3.UseSSL = true
	assert.Equal(t, "https://minio.local:9000/danmaku", s3.UrlPrefix())
}

func TestInitConfig_SampleFile(t *testing.T) {
	conf, err := InitConfig("../../etc/config.yaml", false)
	require.NoError(t, err)
	assert.Equal(t, 3, conf.Search.BatchSize)
	assert.True(t, conf.Bilibili.Credential.IsEmpty())
	assert.False(t, conf.S3.Enabled)
	assert.Equal(t, DefaultConfig().Bilibili.BaseURL, conf.Bilibili.BaseURL)
}
