package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	baseURL := pflag.StringP("base-url", "u", "", "Base URL of the OpenAI-compatible API (e.g. http://host:8000/v1)")
	apiKey := pflag.StringP("api-key", "k", "", "API key for authentication (falls back to INFERBENCH_API_KEY)")
	model := pflag.StringP("model", "m", "", "Model to benchmark (discovered from the server when empty)")
	numPrompts := pflag.IntP("num-prompts", "n", 100, "Number of prompts to sample from the dataset")
	concurrency := pflag.IntP("concurrency", "c", 16, "Maximum simultaneous in-flight requests")
	datasetPath := pflag.StringP("dataset", "d", "ShareGPT_V3_unfiltered_cleaned_split.json", "Path to the ShareGPT dataset (downloaded when absent)")
	maxTokens := pflag.IntP("max-tokens", "t", 128, "Maximum number of tokens to generate per request")
	outputPath := pflag.StringP("output", "o", "", "Write the report to this file (no file when empty)")
	format := pflag.String("format", "json", "Report format: json or yaml")
	single := pflag.Bool("single", false, "Single-request smoke run (forces -n 1 -c 1)")
	noProgress := pflag.Bool("no-progress", false, "Disable the progress bar and log every 10 completions instead")
	help := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *help {
		fmt.Printf("Usage of %s:\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(0)
	}

	if *baseURL == "" {
		log.Fatal("missing required flag: --base-url")
	}
	if *concurrency < 1 {
		log.Fatalf("concurrency must be at least 1, got %d", *concurrency)
	}
	if *numPrompts < 0 {
		log.Fatalf("num-prompts must not be negative, got %d", *numPrompts)
	}
	if *format != "json" && *format != "yaml" {
		log.Fatalf("unknown report format %q (want json or yaml)", *format)
	}

	// Best-effort: a .env in the working directory may carry the API key.
	_ = godotenv.Load(".env")
	if *apiKey == "" {
		*apiKey = os.Getenv("INFERBENCH_API_KEY")
	}

	benchmark := &Benchmark{
		BaseURL:     *baseURL,
		APIKey:      *apiKey,
		Model:       *model,
		DatasetPath: *datasetPath,
		NumPrompts:  *numPrompts,
		Concurrency: *concurrency,
		MaxTokens:   *maxTokens,
		OutputPath:  *outputPath,
		Format:      *format,
		NoProgress:  *noProgress,
	}
	if *single {
		benchmark.NumPrompts = 1
		benchmark.Concurrency = 1
	}

	if err := benchmark.run(); err != nil {
		log.Fatalf("benchmark failed: %v", err)
	}
}
