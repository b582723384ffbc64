// Package dataset loads the prompt corpus for a benchmark run from a
// ShareGPT-style conversation dump.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/schollz/progressbar/v3"
)

// DefaultURL is the public ShareGPT snapshot the benchmark was calibrated
// against. It is fetched automatically when the dataset file is absent.
const DefaultURL = "https://huggingface.co/datasets/anon8231489123/ShareGPT_Vicuna_unfiltered/resolve/main/ShareGPT_V3_unfiltered_cleaned_split.json"

// Prompt length bounds in characters. Shorter samples are degenerate,
// longer ones blow past typical context windows.
const (
	minPromptChars = 50
	maxPromptChars = 2000
)

type turn struct {
	From  string `json:"from"`
	Value string `json:"value"`
}

type record struct {
	Conversations []turn `json:"conversations"`
}

// Load scans a ShareGPT-style conversation file and returns up to n prompts,
// uniformly sampled without replacement from the first 2n qualifying human
// turns. A thin corpus yields fewer than n prompts rather than an error.
func Load(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer file.Close()

	// The dump is one large JSON array; decode record by record so the scan
	// can stop as soon as enough candidates are in hand.
	dec := json.NewDecoder(bufio.NewReaderSize(file, 1<<20))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}

	candidates := make([]string, 0, 2*n)
scan:
	for dec.More() {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
		}
		for _, t := range rec.Conversations {
			if t.From != "human" {
				continue
			}
			if n := utf8.RuneCountInString(t.Value); n < minPromptChars || n >= maxPromptChars {
				continue
			}
			candidates = append(candidates, t.Value)
			if len(candidates) == 2*n {
				break scan
			}
		}
	}

	return Sample(candidates, n), nil
}

// Sample picks n elements without replacement. The order of the result
// carries no meaning.
func Sample(candidates []string, n int) []string {
	if len(candidates) <= n {
		return candidates
	}

	picked := make([]string, len(candidates))
	copy(picked, candidates)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:n]
}

// Ensure downloads the dataset to path when it is not already present.
func Ensure(path, url string, quiet bool) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("dataset download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dataset download failed: %s returned %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".dataset-*")
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}

	var src io.Reader = resp.Body
	if !quiet {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading dataset")
		src = io.TeeReader(resp.Body, bar)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("dataset download failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write dataset file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move dataset into place: %w", err)
	}
	return nil
}
