package dataset

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDataset(t *testing.T, records []record) string {
	t.Helper()
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("failed to marshal dataset: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sharegpt.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

func humanTurn(value string) record {
	return record{Conversations: []turn{{From: "human", Value: value}}}
}

func TestLoadFiltersRoleAndLength(t *testing.T) {
	ok := strings.Repeat("a", 100)
	records := []record{
		humanTurn(ok),
		{Conversations: []turn{{From: "gpt", Value: strings.Repeat("b", 100)}}},
		humanTurn(strings.Repeat("c", 49)),
		humanTurn(strings.Repeat("d", 2000)),
		humanTurn(strings.Repeat("e", 1999)),
	}

	prompts, err := Load(writeDataset(t, records), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("expected 2 qualifying prompts, got %d", len(prompts))
	}
	for _, p := range prompts {
		if p != ok && p != strings.Repeat("e", 1999) {
			t.Fatalf("unexpected prompt selected: %.20q", p)
		}
	}
}

func TestLoadBoundaryLengths(t *testing.T) {
	records := []record{
		humanTurn(strings.Repeat("a", 50)),
		humanTurn(strings.Repeat("b", 2000)),
	}

	prompts, err := Load(writeDataset(t, records), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 1 {
		t.Fatalf("expected only the 50-char prompt to qualify, got %d prompts", len(prompts))
	}
	if len(prompts[0]) != 50 {
		t.Fatalf("expected 50-char prompt, got %d chars", len(prompts[0]))
	}
}

func TestLoadCountsCharactersNotBytes(t *testing.T) {
	records := []record{
		// 49 two-byte runes: 98 bytes but below the 50-character minimum.
		humanTurn(strings.Repeat("é", 49)),
		// 700 three-byte runes: 2100 bytes but well inside the character bounds.
		humanTurn(strings.Repeat("界", 700)),
	}

	prompts, err := Load(writeDataset(t, records), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 1 {
		t.Fatalf("expected only the 700-rune prompt to qualify, got %d prompts", len(prompts))
	}
	if prompts[0] != strings.Repeat("界", 700) {
		t.Fatalf("wrong prompt selected: %.20q", prompts[0])
	}
}

func TestLoadThinCorpus(t *testing.T) {
	records := []record{
		humanTurn(strings.Repeat("a", 80)),
		humanTurn(strings.Repeat("b", 80)),
	}

	prompts, err := Load(writeDataset(t, records), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("expected best-effort 2 prompts, got %d", len(prompts))
	}
}

func TestLoadEmptyCorpus(t *testing.T) {
	prompts, err := Load(writeDataset(t, nil), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 0 {
		t.Fatalf("expected no prompts, got %d", len(prompts))
	}
}

func TestLoadZeroRequested(t *testing.T) {
	prompts, err := Load(writeDataset(t, []record{humanTurn(strings.Repeat("a", 80))}), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 0 {
		t.Fatalf("expected no prompts for n=0, got %d", len(prompts))
	}
}

func TestLoadSamplesDownToN(t *testing.T) {
	var records []record
	for i := 0; i < 40; i++ {
		records = append(records, humanTurn(strings.Repeat(string(rune('a'+i%26)), 60+i)))
	}

	prompts, err := Load(writeDataset(t, records), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 5 {
		t.Fatalf("expected exactly 5 prompts, got %d", len(prompts))
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := Load(path, 10); err == nil {
		t.Fatal("expected error for malformed dataset")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json"), 10); err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestSampleWithoutReplacement(t *testing.T) {
	candidates := make([]string, 40)
	for i := range candidates {
		candidates[i] = strings.Repeat("x", 50) + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}

	picked := Sample(candidates, 10)
	if len(picked) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(picked))
	}
	seen := make(map[string]struct{})
	for _, p := range picked {
		if _, dup := seen[p]; dup {
			t.Fatalf("duplicate sample %q", p)
		}
		seen[p] = struct{}{}
	}
}

func TestSamplePreservesSource(t *testing.T) {
	candidates := []string{"one", "two", "three"}
	original := append([]string(nil), candidates...)

	Sample(candidates, 2)

	for i := range candidates {
		if candidates[i] != original[i] {
			t.Fatal("Sample must not reorder the caller's slice")
		}
	}
}

func TestEnsureSkipsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sharegpt.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	// An unroutable URL proves no download is attempted.
	if err := Ensure(path, "http://127.0.0.1:1/never", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureDownloads(t *testing.T) {
	body := `[{"conversations":[]}]`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "sharegpt.json")
	if err := Ensure(path, ts.URL, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("dataset not written: %v", err)
	}
	if string(got) != body {
		t.Fatalf("downloaded content mismatch: %q", got)
	}
}

func TestEnsureCleansUpAfterFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Declare more bytes than are sent so the client sees a truncated
		// body mid-copy.
		w.Header().Set("Content-Length", "100")
		w.Write([]byte("short"))
	}))
	defer ts.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "sharegpt.json")
	if err := Ensure(path, ts.URL, true); err == nil {
		t.Fatal("expected error for truncated download")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	for _, e := range entries {
		t.Fatalf("failed download left %q behind", e.Name())
	}
}

func TestEnsureBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "sharegpt.json")
	if err := Ensure(path, ts.URL, true); err == nil {
		t.Fatal("expected error for 404 download")
	}
	if _, err := os.Stat(path); err == nil {
		t.Fatal("no file should be left behind after a failed download")
	}
}
