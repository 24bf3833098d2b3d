package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tmc/tikz"
)

var (
	paperBibTeX bool
	paperRIS    bool
)

var paperCmd = &cobra.Command{
	Use:   "paper <paper-id>",
	Short: "Show paper metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := tikz.ExtractPaperID(args[0])
		if id == "" {
			return fmt.Errorf("%q is not an arXiv ID or URL", args[0])
		}

		log := newLogger()
		cache, err := openCache(log)
		if err != nil {
			return err
		}
		defer cache.Close()

		paper, err := newClient(cache, log).FetchPaper(cmd.Context(), id)
		if err != nil {
			return err
		}

		switch {
		case paperBibTeX:
			fmt.Print(paper.ToBibTeX())
		case paperRIS:
			fmt.Print(paper.ToRIS())
		default:
			fmt.Printf("ID:         %s\n", paper.ID)
			fmt.Printf("Title:      %s\n", paper.Title)
			fmt.Printf("Authors:    %s\n", paper.Authors)
			fmt.Printf("Categories: %s\n", paper.Categories)
			if !paper.Created.IsZero() {
				fmt.Printf("Published:  %s\n", paper.Created.Format("2006-01-02"))
			}
			if paper.DOI != "" {
				fmt.Printf("DOI:        %s\n", paper.DOI)
			}
			if paper.JournalRef != "" {
				fmt.Printf("Journal:    %s\n", paper.JournalRef)
			}
			fmt.Printf("URL:        %s\n", paper.AbstractURL())
			fmt.Printf("\nAbstract:\n%s\n", paper.Abstract)
		}
		return nil
	},
}

var (
	searchCategory string
	searchAuthor   string
	searchSort     string
	searchLimit    int
	searchPage     int
	searchFormat   string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search arXiv for papers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := tikz.ParsePaperFormat(searchFormat)
		if err != nil {
			return err
		}

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

		papers, err := newClient(cache, log).Search(cmd.Context(), tikz.SearchOptions{
			Query:    query,
			Category: searchCategory,
			Author:   searchAuthor,
			SortBy:   searchSort,
			Limit:    searchLimit,
			Page:     searchPage,
		})
		if err != nil {
			return err
		}
		if len(papers) == 0 {
			statusf("no results")
			return nil
		}

		out, err := tikz.FormatPapers(papers, format)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var citationsCmd = &cobra.Command{
	Use:   "citations <paper-id>",
	Short: "Show citation counts from Semantic Scholar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := tikz.ExtractPaperID(args[0])
		if id == "" {
			return fmt.Errorf("%q is not an arXiv ID or URL", args[0])
		}

		log := newLogger()
		cache, err := openCache(log)
		if err != nil {
			return err
		}
		defer cache.Close()

		scholar := tikz.NewScholarClient(&tikz.ScholarOptions{
			APIKey: viper.GetString("scholar_api_key"),
			Cache:  cache,
			Logger: log,
		})

		rec, err := scholar.Citations(cmd.Context(), id)
		if err != nil {
			return err
		}
		if rec == nil {
			statusf("%s: not indexed by Semantic Scholar", id)
			return nil
		}
		fmt.Printf("Citations:   %d\n", rec.CitationCount)
		fmt.Printf("Influential: %d\n", rec.InfluentialCount)
		return nil
	},
}

var referencesLimit int

var referencesCmd = &cobra.Command{
	Use:   "references <paper-id>",
	Short: "List a paper's references from Semantic Scholar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := tikz.ExtractPaperID(args[0])
		if id == "" {
			return fmt.Errorf("%q is not an arXiv ID or URL", args[0])
		}

		log := newLogger()
		cache, err := openCache(log)
		if err != nil {
			return err
		}
		defer cache.Close()

		scholar := tikz.NewScholarClient(&tikz.ScholarOptions{
			APIKey: viper.GetString("scholar_api_key"),
			Cache:  cache,
			Logger: log,
		})

		refs, err := scholar.References(cmd.Context(), id, referencesLimit)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			statusf("%s: no references found", id)
			return nil
		}

		for i, ref := range refs {
			fmt.Printf("[%d] %s", i+1, ref.RefTitle)
			if ref.RefYear > 0 {
				fmt.Printf(" (%d)", ref.RefYear)
			}
			fmt.Println()
			if ref.RefAuthors != "" {
				fmt.Printf("    %s\n", ref.RefAuthors)
			}
			if ref.RefPaperID != "" {
				fmt.Printf("    arXiv:%s\n", ref.RefPaperID)
			}
		}
		return nil
	},
}

func init() {
	paperCmd.Flags().BoolVar(&paperBibTeX, "bibtex", false, "output as BibTeX")
	paperCmd.Flags().BoolVar(&paperRIS, "ris", false, "output as RIS")

	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "filter by arXiv category (e.g., cs.LG)")
	searchCmd.Flags().StringVarP(&searchAuthor, "author", "a", "", "filter by author name")
	searchCmd.Flags().StringVar(&searchSort, "sort", "relevance", "sort order: relevance, date_desc, or date_asc")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "max results")
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 0, "result page")
	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", "brief", "output format: brief, json, csv, or markdown")

	referencesCmd.Flags().IntVarP(&referencesLimit, "limit", "n", 50, "max references")
}
