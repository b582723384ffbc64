package main

import (
	"fmt"
	"log"
	"time"

	"github.com/inferbench/inferbench/internal/api"
	"github.com/inferbench/inferbench/internal/benchmark"
	"github.com/inferbench/inferbench/internal/dataset"
)

const (
	platformName = "trtllm"
	datasetLabel = "sharegpt"
)

func (b *Benchmark) run() error {
	client := api.NewClient(b.BaseURL, b.APIKey)

	// The endpoint must be alive before anything is dispatched.
	latency, err := api.Ping(client, 10*time.Second)
	if err != nil {
		return err
	}

	modelName := b.Model
	if modelName == "" {
		modelName, err = api.FirstAvailableModel(client)
		if err != nil {
			return fmt.Errorf("model discovery failed: %w", err)
		}
	}

	if err := dataset.Ensure(b.DatasetPath, dataset.DefaultURL, b.NoProgress); err != nil {
		return err
	}
	prompts, err := dataset.Load(b.DatasetPath, b.NumPrompts)
	if err != nil {
		return err
	}
	if len(prompts) < b.NumPrompts {
		log.Printf("dataset yielded %d qualifying prompts, wanted %d; continuing", len(prompts), b.NumPrompts)
	}

	printHeader(modelName, b.BaseURL, len(prompts), b.Concurrency, b.MaxTokens, latency)

	runner := &benchmark.Runner{
		Client:      client,
		Model:       modelName,
		Prompts:     prompts,
		Concurrency: b.Concurrency,
		MaxTokens:   b.MaxTokens,
		NoProgress:  b.NoProgress,
	}
	report := runner.Run(benchmark.Meta{
		Platform:    platformName,
		Model:       modelName,
		Dataset:     datasetLabel,
		Concurrency: b.Concurrency,
	})

	printSummary(report)

	if b.OutputPath != "" {
		if err := b.saveReport(report); err != nil {
			return err
		}
		log.Printf("report written to %s", b.OutputPath)
	}
	return nil
}
