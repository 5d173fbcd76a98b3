package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/finchat/internal/assistant"
	"github.com/sells-group/finchat/internal/config"
	"github.com/sells-group/finchat/internal/model"
	"github.com/sells-group/finchat/internal/prompt"
)

var (
	batchInput       string
	batchOutput      string
	batchTier        string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Answer a JSON-lines file of questions",
	Long:  `Reads one {"id","question","tier","fields"} object per line and writes one answer record per line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tier, err := model.ParseTier(batchTier)
		if err != nil {
			return err
		}

		in, err := openInput(batchInput)
		if err != nil {
			return err
		}
		defer in.Close() //nolint:errcheck

		items, err := readBatch(in, tier)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if batchOutput != "" && batchOutput != "-" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrapf(err, "create %s", batchOutput)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		a, err := initAssistant(config.ModeGenerate)
		if err != nil {
			return err
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}
		return processBatch(ctx, items, concurrency, out, a.Answer)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "-", "JSON-lines input file, - for stdin")
	batchCmd.Flags().StringVar(&batchOutput, "output", "-", "JSON-lines output file, - for stdout")
	batchCmd.Flags().StringVar(&batchTier, "tier", "1", "tier for lines that do not set one")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel questions (default from config)")
	rootCmd.AddCommand(batchCmd)
}

// batchItem is one input line.
type batchItem struct {
	ID       string        `json:"id"`
	Question string        `json:"question"`
	Tier     model.Tier    `json:"tier"`
	Fields   prompt.Fields `json:"fields,omitempty"`

	// parseErr is set when the line could not be decoded; the item is
	// reported as failed without being answered.
	parseErr error
}

// batchResult is one output line. Exactly one of Answer and Error is set.
type batchResult struct {
	ID     string            `json:"id"`
	Answer *assistant.Answer `json:"answer,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	return f, nil
}

// readBatch parses JSON lines, skipping blank lines. Missing ids get a
// uuid and missing tiers get defaultTier. A line that does not decode
// becomes an item carrying its parse error, keeping its id when one can
// be read.
func readBatch(r io.Reader, defaultTier model.Tier) ([]batchItem, error) {
	var items []batchItem
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4<<20)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var it batchItem
		if err := json.Unmarshal(raw, &it); err != nil {
			var idOnly struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(raw, &idOnly)
			it = batchItem{ID: idOnly.ID, parseErr: eris.Wrapf(err, "batch: line %d", line)}
		}
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if it.Tier == 0 {
			it.Tier = defaultTier
		}
		items = append(items, it)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "batch: read input")
	}
	return items, nil
}

// answerFunc is the callback signature for answering one question.
type answerFunc func(ctx context.Context, req assistant.AnswerRequest) (*assistant.Answer, error)

// processBatch answers items concurrently and writes one result per item
// in completion order. A failed item is reported in its result line and
// does not abort the batch.
func processBatch(ctx context.Context, items []batchItem, concurrency int, w io.Writer, answer answerFunc) error {
	if len(items) == 0 {
		zap.L().Info("no questions in batch")
		return nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("questions", len(items)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var (
		mu                sync.Mutex
		enc               = json.NewEncoder(w)
		succeeded, failed atomic.Int64
	)

	for _, it := range items {
		g.Go(func() error {
			log := zap.L().With(zap.String("id", it.ID))

			res := batchResult{ID: it.ID}
			var (
				ans *assistant.Answer
				err = it.parseErr
			)
			if err == nil {
				ans, err = answer(gctx, assistant.AnswerRequest{
					Question: it.Question,
					Tier:     it.Tier,
					Fields:   it.Fields,
				})
			}
			if err != nil {
				failed.Add(1)
				log.Error("question failed", zap.Error(err))
				res.Error = err.Error()
			} else {
				succeeded.Add(1)
				log.Info("question answered", zap.String("category", string(ans.Category)))
				res.Answer = ans
			}

			mu.Lock()
			defer mu.Unlock()
			if err := enc.Encode(res); err != nil {
				return eris.Wrap(err, "batch: write result")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
