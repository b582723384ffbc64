package main

import (
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"

	"github.com/inferbench/inferbench/internal/benchmark"
)

func (b *Benchmark) saveReport(report benchmark.Report) error {
	var data []byte
	var err error

	switch b.Format {
	case "yaml":
		data, err = yaml.Marshal(&report)
		if err != nil {
			return fmt.Errorf("error marshalling yaml: %v", err)
		}
	default:
		data, err = json.MarshalIndent(&report, "", "    ")
		if err != nil {
			return fmt.Errorf("error marshalling JSON: %w", err)
		}
		data = append(data, '\n')
	}

	return os.WriteFile(b.OutputPath, data, 0o644)
}

func printHeader(model, baseURL string, numPrompts, concurrency, maxTokens int, latencyMS float64) {
	fmt.Println("==========================================================")
	fmt.Printf(" Model:           %s\n", model)
	fmt.Printf(" Endpoint:        %s\n", baseURL)
	fmt.Printf(" Prompts:         %d\n", numPrompts)
	fmt.Printf(" Concurrency:     %d\n", concurrency)
	fmt.Printf(" Max Tokens:      %d\n", maxTokens)
	fmt.Printf(" Ping:            %.2f ms\n", latencyMS)
	fmt.Println("==========================================================")
}

func printSummary(r benchmark.Report) {
	total := r.SuccessfulRequests + r.FailedRequests
	fmt.Println("\n==================== Benchmark Result ====================")
	fmt.Printf(" Requests:            %d/%d successful (%d failed)\n", r.SuccessfulRequests, total, r.FailedRequests)
	fmt.Printf(" Duration:            %.2f s\n", r.DurationS)
	fmt.Printf(" Latency mean/p50/p99: %.2f / %.2f / %.2f ms\n", r.MeanLatencyMS, r.P50LatencyMS, r.P99LatencyMS)
	fmt.Printf(" Mean TTFT (approx):  %.2f ms\n", r.MeanTTFTMS)
	fmt.Printf(" Output throughput:   %.2f tokens/s\n", r.OutputThroughputTPS)
	fmt.Printf(" Total throughput:    %.2f tokens/s\n", r.TotalThroughputTPS)
	fmt.Printf(" Request throughput:  %.2f req/s\n", r.RequestThroughputRPS)
	fmt.Printf(" Tokens in/out:       %d / %d\n", r.TotalInputTokens, r.TotalOutputTokens)
	fmt.Println("==========================================================")
}
