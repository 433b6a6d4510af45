package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/lanes/internal/domain/model"
	"github.com/okian/lanes/internal/importer"
	"github.com/okian/lanes/pkg/logger"
	"github.com/urfave/cli/v2"
)

const (
	urlFlag     = "url"
	workersFlag = "workers"
	timeoutFlag = "timeout"
)

// BatchIDHeader tags every request of one push run.
const BatchIDHeader = "X-Batch-ID"

// pushResult classifies one submission.
type pushResult int

const (
	pushAccepted pushResult = iota
	pushDuplicate
	pushFailed
)

// PushStats summarises a push run.
type PushStats struct {
	BatchID   string
	Submitted int64
	Accepted  int64
	Duplicate int64
	Failed    int64
	Duration  time.Duration
}

// Pusher submits records to a running service over HTTP.
type Pusher struct {
	BaseURL string
	Workers int
	client  *http.Client
}

// NewPusher creates a Pusher. workers below 1 means twice the CPU count.
func NewPusher(baseURL string, workers int, timeout time.Duration) *Pusher {
	if workers < 1 {
		workers = runtime.NumCPU() * 2
	}
	return &Pusher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Workers: workers,
		client:  &http.Client{Timeout: timeout},
	}
}

// CheckHealth verifies the service answers on /healthz.
func (p *Pusher) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// Push submits records concurrently and reports the outcome counts.
func (p *Pusher) Push(ctx context.Context, records []model.RawRecord) PushStats {
	stats := PushStats{BatchID: uuid.NewString()}
	start := time.Now()
	log := logger.Get().Named("push")
	log.Info(ctx, "submitting records",
		logger.Int("records", len(records)),
		logger.Int("workers", p.Workers),
		logger.String("batch", stats.BatchID),
	)

	var submitted, accepted, duplicate, failed atomic.Int64
	jobs := make(chan model.RawRecord, p.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < p.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				submitted.Add(1)
				switch p.submit(ctx, stats.BatchID, rec) {
				case pushAccepted:
					accepted.Add(1)
				case pushDuplicate:
					duplicate.Add(1)
				default:
					failed.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, rec := range records {
			select {
			case <-ctx.Done():
				return
			case jobs <- rec:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = submitted.Load()
	stats.Accepted = accepted.Load()
	stats.Duplicate = duplicate.Load()
	stats.Failed = failed.Load()
	stats.Duration = time.Since(start)
	log.Info(ctx, "push completed",
		logger.Int64("accepted", stats.Accepted),
		logger.Int64("duplicate", stats.Duplicate),
		logger.Int64("failed", stats.Failed),
		logger.Duration("took", stats.Duration),
	)
	return stats
}

func (p *Pusher) submit(ctx context.Context, batch string, rec model.RawRecord) pushResult {
	body, err := json.Marshal(rec)
	if err != nil {
		return pushFailed
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/times", bytes.NewReader(body))
	if err != nil {
		return pushFailed
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(BatchIDHeader, batch)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := p.client.Do(req)
	if err != nil {
		return pushFailed
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusAccepted:
		return pushAccepted
	case http.StatusOK:
		return pushDuplicate
	default:
		logger.Get().Debug(ctx, "record rejected",
			logger.Int("status", resp.StatusCode),
			logger.Int64("athlete", rec.AthleteID),
			logger.String("event", rec.Event),
		)
		return pushFailed
	}
}

func pushCommand() *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Submit YAML record files to a running service",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     recordsFlag,
				Aliases:  []string{"r"},
				Usage:    "YAML record file; repeat for more",
				Required: true,
			},
			&cli.StringFlag{Name: urlFlag, Value: "http://localhost:9080", Usage: "Base URL of the service"},
			&cli.IntFlag{Name: workersFlag, Usage: "Concurrent submitters (default twice the CPU count)"},
			&cli.DurationFlag{Name: timeoutFlag, Value: 30 * time.Second, Usage: "HTTP request timeout"},
		},
		Action: func(cCtx *cli.Context) error {
			var records []model.RawRecord
			for _, path := range cCtx.StringSlice(recordsFlag) {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open records: %w", err)
				}
				raws, err := importer.ReadYAML(f)
				_ = f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				records = append(records, raws...)
			}

			p := NewPusher(cCtx.String(urlFlag), cCtx.Int(workersFlag), cCtx.Duration(timeoutFlag))
			if err := p.CheckHealth(cCtx.Context); err != nil {
				return err
			}
			stats := p.Push(cCtx.Context, records)
			fmt.Fprintf(cCtx.App.Writer, "batch %s: %d submitted, %d accepted, %d duplicate, %d failed in %s\n",
				stats.BatchID, stats.Submitted, stats.Accepted, stats.Duplicate, stats.Failed, stats.Duration.Round(time.Millisecond))
			if stats.Failed > 0 {
				return fmt.Errorf("%d records failed", stats.Failed)
			}
			return nil
		},
	}
}
