// Package benchmark drives concurrent chat completion requests against a
// single endpoint and aggregates the outcomes into a report.
package benchmark

import (
	"errors"
	"log"
	"net"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/schollz/progressbar/v3"

	"github.com/inferbench/inferbench/internal/api"
)

// Outcome records a single completion request. It is written once by the
// worker that issued the request and read only by the aggregator.
type Outcome struct {
	Success      bool
	LatencyMS    float64
	InputTokens  int
	OutputTokens int
	TTFTMS       float64
	Err          string
}

// Runner drives N prompts against one endpoint with at most Concurrency
// requests in flight.
type Runner struct {
	Client      *openai.Client
	Model       string
	Prompts     []string
	Concurrency int
	MaxTokens   int
	NoProgress  bool
}

// Run dispatches every prompt through the worker pool and folds the
// outcomes into a Report. Per-request failures become failed outcomes;
// Run itself never aborts mid-batch.
func (r *Runner) Run(meta Meta) Report {
	total := len(r.Prompts)

	tasks := make(chan string)
	outcomes := make(chan Outcome)

	start := time.Now()

	for i := 0; i < r.Concurrency; i++ {
		go func() {
			for prompt := range tasks {
				outcomes <- r.request(prompt)
			}
		}()
	}

	go func() {
		for _, prompt := range r.Prompts {
			tasks <- prompt
		}
		close(tasks)
	}()

	// Single consumer of the outcome channel; the workers never touch
	// shared state.
	var bar *progressbar.ProgressBar
	if !r.NoProgress && total > 0 {
		bar = progressbar.Default(int64(total), "benchmarking")
	}
	collected := make([]Outcome, 0, total)
	for len(collected) < total {
		collected = append(collected, <-outcomes)
		if bar != nil {
			bar.Add(1)
		} else if len(collected)%10 == 0 {
			log.Printf("completed %d/%d requests", len(collected), total)
		}
	}
	elapsed := time.Since(start)
	if bar != nil {
		bar.Finish()
	}

	report := NewReport(collected, elapsed, meta)
	if report.FailedRequests > 0 {
		logged := 0
		for _, o := range collected {
			if o.Success {
				continue
			}
			log.Printf("request failed: %s", o.Err)
			if logged++; logged == 3 {
				break
			}
		}
		if report.FailedRequests > logged {
			log.Printf("(%d more failures omitted)", report.FailedRequests-logged)
		}
	}
	return report
}

func (r *Runner) request(prompt string) Outcome {
	start := time.Now()
	resp, err := api.Completion(r.Client, r.Model, prompt, r.MaxTokens)
	latency := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		msg := err.Error()
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			msg = "timeout: " + msg
		}
		return Outcome{LatencyMS: latency, Err: msg}
	}

	outcome := Outcome{
		Success:      true,
		LatencyMS:    latency,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	// Without token streaming the first-token time is approximated as the
	// mean inter-token time.
	outcome.TTFTMS = latency / float64(max(outcome.OutputTokens, 1))
	return outcome
}
