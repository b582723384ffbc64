package main

// Benchmark holds one run's configuration as resolved from flags.
type Benchmark struct {
	BaseURL     string
	APIKey      string
	Model       string
	DatasetPath string
	NumPrompts  int
	Concurrency int
	MaxTokens   int
	OutputPath  string
	Format      string
	NoProgress  bool
}
