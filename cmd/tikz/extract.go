package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tmc/tikz"
)

var (
	extractFormat string
	extractOutput string
)

var extractCmd = &cobra.Command{
	Use:   "extract <paper-id>...",
	Short: "Download a paper's source and extract its TikZ figures",
	Long: `Extract downloads the e-print source for each paper and prints the
TikZ figures it contains. Accepts bare arXiv IDs, old-style IDs, or
abs/pdf URLs. Results are cached; a second extraction of the same
paper does not touch the network.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := extractFormat
		if name == "" {
			name = viper.GetString("format")
		}
		format, err := tikz.ParseFormat(name)
		if err != nil {
			return err
		}

		log := newLogger()
		cache, err := openCache(log)
		if err != nil {
			return err
		}
		defer cache.Close()
		client := newClient(cache, log)

		out := os.Stdout
		if extractOutput != "" {
			f, err := os.Create(extractOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		var failed int
		for i, arg := range args {
			id := tikz.ExtractPaperID(arg)
			if id == "" {
				errorf("skipping %q: not an arXiv ID or URL", arg)
				failed++
				continue
			}

			statusf("extracting %s...", id)
			figures, err := client.ExtractFigures(cmd.Context(), id)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				errorf("%s: %v", id, err)
				failed++
				continue
			}

			rendered, err := tikz.FormatFigures(figures, format)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, rendered)
			statusf("%s: %d figures", id, len(figures))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d papers failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "",
		"output format: tikz, json, latex, or brief")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "",
		"write output to file instead of stdout")
}
