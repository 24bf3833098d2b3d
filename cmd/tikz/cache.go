package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached extractions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache(newLogger())
		if err != nil {
			return err
		}
		defer cache.Close()

		runs, err := cache.ListExtractions(cmd.Context(), listLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			statusf("no cached extractions")
			return nil
		}

		for _, run := range runs {
			fmt.Printf("%-20s %3d figures  %s\n",
				run.PaperID, run.FigureCount, run.CachedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the local cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache(newLogger())
		if err != nil {
			return err
		}
		defer cache.Close()

		stats, err := cache.Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Database:   %s (%.1f MB)\n", stats.DBPath, float64(stats.DBBytes)/(1<<20))
		fmt.Printf("Papers:     %d\n", stats.Papers)
		fmt.Printf("Extracted:  %d\n", stats.Extracted)
		fmt.Printf("Figures:    %d\n", stats.Figures)
		fmt.Printf("Citations:  %d\n", stats.Citations)
		fmt.Printf("References: %d\n", stats.References)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache(newLogger())
		if err != nil {
			return err
		}
		defer cache.Close()

		if err := cache.Clear(cmd.Context()); err != nil {
			return err
		}
		statusf("cache cleared")
		return nil
	},
}

var cacheExpiredCmd = &cobra.Command{
	Use:   "expired",
	Short: "Remove expired citation and reference entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache(newLogger())
		if err != nil {
			return err
		}
		defer cache.Close()

		if err := cache.ClearExpired(cmd.Context()); err != nil {
			return err
		}
		statusf("expired entries removed")
		return nil
	},
}

var cacheReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the full-text search index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache(newLogger())
		if err != nil {
			return err
		}
		defer cache.Close()

		if err := cache.RebuildFTSIndex(cmd.Context()); err != nil {
			return err
		}
		statusf("full-text index rebuilt")
		return nil
	},
}

var figuresLimit int

var cacheFiguresCmd = &cobra.Command{
	Use:   "figures <query>",
	Short: "Full-text search cached figures by caption and code",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		cache, err := openCache(log)
		if err != nil {
			return err
		}
		defer cache.Close()

		query := args[0]
		for _, extra := range args[1:] {
			query += " " + extra
		}

		figures, err := cache.SearchFigures(cmd.Context(), query, figuresLimit)
		if err != nil {
			return err
		}
		if len(figures) == 0 {
			statusf("no matches")
			if suggestions, err := cache.SuggestTerms(cmd.Context(), query); err == nil && len(suggestions) > 0 {
				statusf("did you mean: %v", suggestions)
			}
			return nil
		}

		for _, fig := range figures {
			fmt.Printf("%s [%d] %s", fig.PaperID, fig.Index, fig.Type)
			if fig.Caption != "" {
				caption := []rune(fig.Caption)
				if len(caption) > 70 {
					fmt.Printf(" - %s...", string(caption[:70]))
				} else {
					fmt.Printf(" - %s", fig.Caption)
				}
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max entries")
	cacheFiguresCmd.Flags().IntVarP(&figuresLimit, "limit", "n", 20, "max results")

	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cacheExpiredCmd,
		cacheFiguresCmd, cacheReindexCmd)
}
