package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/listing"
	"jobboard-engine/internal/news"
)

type aggregateOutput struct {
	Listings listing.Buckets   `json:"listings"`
	News     []domain.NewsItem `json:"news"`
	Dropped  int               `json:"dropped"`
}

func newAggregateCmd() *cobra.Command {
	var jobsPath, newsPath string
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Run categorization and news dedupe over JSON files and print the result",
		Example: `  engine aggregate --jobs jobs.json
  engine aggregate --jobs jobs.json --news news.json > board.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jobsPath == "" && newsPath == "" {
				return fmt.Errorf("at least one of --jobs or --news is required")
			}
			jobs, err := readJSONFile(jobsPath, domain.DecodeJobs)
			if err != nil {
				return err
			}
			items, err := readJSONFile(newsPath, domain.DecodeNews)
			if err != nil {
				return err
			}
			return writeAggregate(cmd.OutOrStdout(), jobs, items)
		},
	}
	cmd.Flags().StringVar(&jobsPath, "jobs", "", "JSON array of job records")
	cmd.Flags().StringVar(&newsPath, "news", "", "JSON array of announcement records")
	return cmd
}

// readJSONFile returns nothing when path is empty.
func readJSONFile[T any](path string, decode func(io.Reader) ([]T, error)) ([]T, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()
	out, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

func writeAggregate(w io.Writer, jobs []domain.Job, items []domain.NewsItem) error {
	p := listing.Partition(jobs)
	out := aggregateOutput{
		Listings: listing.Dedupe(p),
		News:     news.Dedupe(items),
		Dropped:  len(p.Dropped),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
