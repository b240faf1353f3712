package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"danmaku/internal/bilibili"
	"danmaku/internal/config"
	"danmaku/internal/danmaku"
	"danmaku/internal/ingest"
	"danmaku/internal/segment"
	"danmaku/internal/wordcloud"
	"danmaku/pkg/log"
)

var (
	fetchKeyword   string
	fetchCount     int
	fetchBvids     []string
	fetchOutput    string
	fetchWordcloud string
)

var fetchCommand = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch danmaku and export them to an Excel file",
	Example: `  danmaku fetch --keyword 原神 -n 10 -o genshin.xlsx --wordcloud genshin.png
  danmaku fetch --bvid BV1xx411c7mD -o one.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (fetchKeyword == "") == (len(fetchBvids) == 0) {
			return fmt.Errorf("exactly one of --keyword or --bvid is required")
		}
		if err := danmaku.ValidateExcelName(fetchOutput); err != nil {
			return err
		}
		return runFetch()
	},
}

func init() {
	fetchCommand.Flags().StringVarP(&fetchKeyword, "keyword", "k", "", "Search keyword")
	fetchCommand.Flags().IntVarP(&fetchCount, "count", "n", 10, "Number of search results to fetch")
	fetchCommand.Flags().StringSliceVar(&fetchBvids, "bvid", nil, "Video id to fetch, repeatable")
	fetchCommand.Flags().StringVarP(&fetchOutput, "output", "o", "danmakus.xlsx", "Excel file to write")
	fetchCommand.Flags().StringVar(&fetchWordcloud, "wordcloud", "", "Also render a word cloud PNG to this path")
}

func newIngestor(ctx context.Context, conf *config.Config) *ingest.Ingestor {
	client := bilibili.NewClient(bilibili.Options{
		BaseURL:   conf.Bilibili.BaseURL,
		UserAgent: conf.Bilibili.UserAgent,
		Timeout:   time.Duration(conf.Bilibili.Timeout) * time.Second,
		RateLimit: conf.Bilibili.RateLimit,
		Burst:     conf.Bilibili.Burst,
		RetryMax:  conf.Bilibili.RetryMax,
	})
	return ingest.New(client, ingest.Options{
		BatchSize:       conf.Search.BatchSize,
		IsolateFailures: conf.Search.IsolateFailures,
	}, log.ComponentLogger(ctx, "ingest"))
}

func credentialOf(conf *config.Config) *bilibili.Credential {
	if conf.Bilibili.Credential.IsEmpty() {
		return nil
	}
	return &conf.Bilibili.Credential
}

func runFetch() error {
	conf, err := config.InitConfig(configFile, true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ingestor := newIngestor(ctx, conf)
	cred := credentialOf(conf)
	store := danmaku.NewStore()

	if fetchKeyword != "" {
		report, err := ingestor.IngestSearch(ctx, store, fetchKeyword, fetchCount, cred)
		if err != nil {
			return err
		}
		for _, f := range report.Failed {
			logrus.Warnf("skipped %s: %s", f.Bvid, f.Error)
		}
	} else {
		for _, bvid := range fetchBvids {
			n, err := ingestor.IngestVideo(ctx, store, bvid, cred)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", bvid, err)
			}
			logrus.Infof("%s: %d danmakus", bvid, n)
		}
	}

	if err := store.ExportExcel(fetchOutput); err != nil {
		return err
	}
	logrus.Infof("exported %d videos, %d danmakus to %s", store.Size(), store.Total(), fetchOutput)

	if fetchWordcloud == "" {
		return nil
	}
	return writeWordcloud(conf, store, fetchWordcloud)
}

func writeWordcloud(conf *config.Config, store *danmaku.Store, path string) error {
	tokenizer, err := segment.New(segment.Options{
		DictPath:       conf.Segment.DictPath,
		SlangWords:     conf.Segment.SlangWords,
		ExtraStopWords: conf.Segment.ExtraStopWords,
	})
	if err != nil {
		return err
	}
	table, err := store.Frequencies(tokenizer)
	if err != nil {
		return err
	}
	renderer, err := wordcloud.New(wordcloud.Options{
		FontPath:   conf.WordCloud.FontPath,
		MaxWords:   conf.WordCloud.MaxWords,
		Background: conf.WordCloud.Background,
		Colors:     conf.WordCloud.Colors,
	})
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := renderer.RenderPNG(f, table.Weights(), conf.WordCloud.DefaultWidth, conf.WordCloud.DefaultHeight); err != nil {
		return err
	}
	logrus.Infof("word cloud written to %s", path)
	return nil
}
