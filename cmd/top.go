package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"danmaku/internal/config"
	"danmaku/internal/danmaku"
	"danmaku/internal/segment"
)

var (
	topInput    string
	topCount    int
	topTokenize bool
)

var topCommand = &cobra.Command{
	Use:   "top",
	Short: "Print the most frequent danmakus of an exported Excel file",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := danmaku.NewStore()
		if err := store.ImportExcel(topInput); err != nil {
			return err
		}

		var tok danmaku.Tokenizer
		if topTokenize {
			conf, err := config.InitConfig(configFile, true)
			if err != nil {
				return err
			}
			seg, err := segment.New(segment.Options{
				DictPath:       conf.Segment.DictPath,
				SlangWords:     conf.Segment.SlangWords,
				ExtraStopWords: conf.Segment.ExtraStopWords,
			})
			if err != nil {
				return err
			}
			tok = seg
		}

		top, err := store.TopK(topCount, tok)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tCOUNT\tDANMAKU")
		for i, f := range top {
			fmt.Fprintf(w, "%d\t%d\t%s\n", i+1, f.Count, f.Text)
		}
		return w.Flush()
	},
}

func init() {
	topCommand.Flags().StringVarP(&topInput, "input", "i", "danmakus.xlsx", "Excel file produced by fetch or export")
	topCommand.Flags().IntVarP(&topCount, "count", "n", 10, "Number of rows")
	topCommand.Flags().BoolVar(&topTokenize, "tokenize", false, "Count segmented words instead of whole danmakus")
}
