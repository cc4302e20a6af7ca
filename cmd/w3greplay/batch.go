package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/condor/w3greplay/pkg/w3g"
)

func newBatchCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Parse every .w3g file in a directory concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			paths, err := filepath.Glob(filepath.Join(dir, "*.w3g"))
			if err != nil {
				return fmt.Errorf("glob %s: %w", dir, err)
			}
			if len(paths) == 0 {
				return fmt.Errorf("no .w3g files found in %s", dir)
			}
			sort.Strings(paths)

			runID := uuid.New()
			log.Info().Str("run_id", runID.String()).Int("files", len(paths)).Int("workers", workers).Msg("starting batch run")

			results := runBatch(paths, workers)

			if jsonOutput {
				return printJSON(map[string]interface{}{
					"run_id":  runID.String(),
					"results": results,
				})
			}

			for _, r := range results {
				if r.Err != nil {
					fmt.Printf("FAIL %s: %v\n", r.Path, r.Err)
					continue
				}
				fmt.Printf("OK   %-40s map=%-24s players=%d duration=%s\n",
					r.Path, r.Record.MapName, len(r.Record.Players), r.Record.Envelope.DurationString())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 4, "number of replay files to parse concurrently")

	return cmd
}

type batchResult struct {
	Path   string         `json:"path"`
	Record *w3g.GameRecord `json:"record,omitempty"`
	Err    error          `json:"-"`
	ErrMsg string         `json:"error,omitempty"`
}

// runBatch fans work across a fixed pool of workers and returns results in
// the same order as paths, regardless of completion order.
func runBatch(paths []string, workers int) []batchResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]batchResult, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path := paths[i]
				record, err := w3g.Parse(path)
				if err != nil {
					log.Warn().Str("path", path).Err(err).Msg("batch parse failed")
					results[i] = batchResult{Path: path, Err: err, ErrMsg: err.Error()}
					continue
				}
				results[i] = batchResult{Path: path, Record: record}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
