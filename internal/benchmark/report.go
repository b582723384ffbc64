package benchmark

import (
	"math"
	"sort"
	"time"
)

// Meta describes the run that produced a report.
type Meta struct {
	Platform    string
	Model       string
	Dataset     string
	Concurrency int
}

// Report aggregates every outcome of one run. Built once, never mutated.
type Report struct {
	Platform             string  `json:"platform" yaml:"platform"`
	Model                string  `json:"model" yaml:"model"`
	NumPrompts           int     `json:"num_prompts" yaml:"num-prompts"`
	Concurrency          int     `json:"concurrency" yaml:"concurrency"`
	Dataset              string  `json:"dataset" yaml:"dataset"`
	DurationS            float64 `json:"duration_s" yaml:"duration-s"`
	SuccessfulRequests   int     `json:"successful_requests" yaml:"successful-requests"`
	FailedRequests       int     `json:"failed_requests" yaml:"failed-requests"`
	OutputThroughputTPS  float64 `json:"output_throughput_tps" yaml:"output-throughput-tps"`
	TotalThroughputTPS   float64 `json:"total_throughput_tps" yaml:"total-throughput-tps"`
	RequestThroughputRPS float64 `json:"request_throughput_rps" yaml:"request-throughput-rps"`
	MeanLatencyMS        float64 `json:"mean_latency_ms" yaml:"mean-latency-ms"`
	P50LatencyMS         float64 `json:"p50_latency_ms" yaml:"p50-latency-ms"`
	P99LatencyMS         float64 `json:"p99_latency_ms" yaml:"p99-latency-ms"`
	MeanTTFTMS           float64 `json:"mean_ttft_ms" yaml:"mean-ttft-ms"`
	TotalInputTokens     int     `json:"total_input_tokens" yaml:"total-input-tokens"`
	TotalOutputTokens    int     `json:"total_output_tokens" yaml:"total-output-tokens"`
}

// NewReport folds a run's outcomes into the final aggregate. Every float
// field is rounded here, so serializing the same report twice yields
// identical bytes.
func NewReport(outcomes []Outcome, elapsed time.Duration, meta Meta) Report {
	report := Report{
		Platform:    meta.Platform,
		Model:       meta.Model,
		NumPrompts:  len(outcomes),
		Concurrency: meta.Concurrency,
		Dataset:     meta.Dataset,
		DurationS:   roundToTwoDecimals(elapsed.Seconds()),
	}

	var latencies, ttfts []float64
	for _, o := range outcomes {
		if !o.Success {
			report.FailedRequests++
			continue
		}
		report.SuccessfulRequests++
		report.TotalInputTokens += o.InputTokens
		report.TotalOutputTokens += o.OutputTokens
		latencies = append(latencies, o.LatencyMS)
		ttfts = append(ttfts, o.TTFTMS)
	}

	// Latency statistics cover successful requests only. With zero
	// successes every latency field stays 0.
	if len(latencies) > 0 {
		sort.Float64s(latencies)
		report.MeanLatencyMS = roundToTwoDecimals(mean(latencies))
		report.P50LatencyMS = roundToTwoDecimals(percentile(latencies, 0.50))
		report.P99LatencyMS = roundToTwoDecimals(percentile(latencies, 0.99))
		report.MeanTTFTMS = roundToTwoDecimals(mean(ttfts))
	}

	if seconds := elapsed.Seconds(); seconds > 0 && report.SuccessfulRequests > 0 {
		report.OutputThroughputTPS = roundToTwoDecimals(float64(report.TotalOutputTokens) / seconds)
		report.TotalThroughputTPS = roundToTwoDecimals(float64(report.TotalInputTokens+report.TotalOutputTokens) / seconds)
		report.RequestThroughputRPS = roundToTwoDecimals(float64(report.SuccessfulRequests) / seconds)
	}

	return report
}

// percentile indexes a sorted slice at floor(q*len), clamped so tiny
// samples stay in range.
func percentile(sorted []float64, q float64) float64 {
	idx := int(math.Floor(q * float64(len(sorted))))
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func roundToTwoDecimals(f float64) float64 {
	return math.Round(f*100) / 100
}
