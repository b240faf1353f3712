package log

import (
	"context"
	"fmt"
	"os"
	"path"
	"runtime"

	"github.com/sirupsen/logrus"
)

const (
	HttpXRequestId = "X-Request-Id"
	CtxRequestId   = "requestId"
)

func InitLog(logLevel string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Errorf("failed to parse log level: %v, err: %v", logLevel, err)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetReportCaller(true)
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		DisableColors:   true,
		DisableQuote:    true,
		CallerPrettyfier: func(frame *runtime.Frame) (string, string) {
			return "", fmt.Sprintf("%s:%d", path.Base(frame.File), frame.Line)
		},
	})
}

// GetLogger returns an entry tagged with the request id carried by ctx, if any.
// A *gin.Context works here since gin resolves string keys through c.Keys.
func GetLogger(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return NewLogger()
	}
	if v := ctx.Value(CtxRequestId); v != nil {
		return logrus.WithField(CtxRequestId, v)
	}
	return NewLogger()
}

// ComponentLogger is GetLogger with a component field attached.
func ComponentLogger(ctx context.Context, component string) *logrus.Entry {
	return GetLogger(ctx).WithField("component", component)
}

func NewLogger() *logrus.Entry {
	return logrus.NewEntry(logrus.StandardLogger())
}
