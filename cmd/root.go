package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"danmaku/internal/version"
	"danmaku/pkg/log"
)

var (
	logLevel   string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "danmaku",
	Short: "danmaku fetches and analyzes bilibili video comments",
	Long: `Fetch bilibili danmaku by search keyword or video id, then explore them
through frequency tables, word clouds and Excel exports.
Version: ` + version.VERSION + `/` + version.COMMIT,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.InitLog(logLevel)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "etc/config.yaml", "Path to config file")

	rootCmd.AddCommand(serveCommand)
	rootCmd.AddCommand(fetchCommand)
	rootCmd.AddCommand(topCommand)
}
