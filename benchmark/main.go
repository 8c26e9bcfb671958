// Package main provides a performance benchmarking tool for the Flowstate CLI.
// It seeds SQLite stores with synthetic activity of increasing size, then times
// each read command several times, treating the first successful run as cold
// and averaging the rest as warm, generating CSV output for performance analysis.
//
// Prerequisites:
// - flowstate binary installed and available in PATH
//
// Usage: go run benchmark/main.go [days...]
//
//	days: Sizes of the synthetic datasets in days of telemetry (default 1 7 30)
package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"time"
)

// bucketsPerDay is the number of 30 second activity states in a day.
const bucketsPerDay = 24 * 60 * 2

// BenchmarkResult holds the result of a benchmark run (import time, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset    string
	Command    string
	ImportTime string
	ColdTime   string
	WarmTime   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	Datasets []int
	Commands map[string][]string
}

func main() {
	datasets := []int{1, 7, 30}
	if len(os.Args) > 1 {
		datasets = nil
		for _, arg := range os.Args[1:] {
			days, err := strconv.Atoi(arg)
			if err != nil || days <= 0 {
				fmt.Printf("Usage: %s [days...]\n", os.Args[0])
				os.Exit(1)
			}
			datasets = append(datasets, days)
		}
	}

	workDir, err := os.MkdirTemp("", "flowstate-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	config := BenchmarkConfig{
		WorkDir:  workDir,
		Timeout:  2 * time.Minute,
		Runs:     4,
		Datasets: datasets,
		Commands: map[string][]string{
			"score":     {"score"},
			"status":    {"status"},
			"periods":   {"periods", "--since", "720 hours ago", "--top"},
			"db-status": {"db", "status"},
		},
	}

	if _, err := exec.LookPath("flowstate"); err != nil {
		fmt.Printf("Prerequisites check failed: flowstate binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results, config)
}

// runBenchmarks seeds one store per dataset and times every command against it.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d runs per command\n",
		len(config.Datasets), config.Timeout, config.Runs)

	for _, days := range config.Datasets {
		dataset := fmt.Sprintf("%dd", days)
		dbPath := filepath.Join(config.WorkDir, dataset+".db")
		fmt.Printf("Seeding %s (%d activity states)\n", dataset, days*bucketsPerDay)

		importTime := "FAILED"
		if elapsed, err := seedStore(config, dbPath, days); err != nil {
			fmt.Printf("  Warning: failed to seed %s: %v\n", dataset, err)
		} else {
			importTime = fmt.Sprintf("%.3fs", elapsed)
		}

		for _, name := range sortedKeys(config.Commands) {
			cold, warm := runPhase(config, dbPath, config.Commands[name])
			fmt.Printf("  %-10s Cold: %s, Warm average: %s\n", name, cold, warm)
			results = append(results, BenchmarkResult{
				Dataset:    dataset,
				Command:    name,
				ImportTime: importTime,
				ColdTime:   cold,
				WarmTime:   warm,
			})
		}
	}

	return results
}

// seedStore writes a synthetic activity file and imports it, returning the import time in seconds.
func seedStore(config BenchmarkConfig, dbPath string, days int) (float64, error) {
	path := filepath.Join(config.WorkDir, filepath.Base(dbPath)+".jsonl")
	if err := writeActivity(path, days); err != nil {
		return 0, err
	}

	start := time.Now()
	cmd := flowstate(dbPath, "activity", "import", path)
	if output, err := cmd.CombinedOutput(); err != nil {
		return 0, fmt.Errorf("%w: %s", err, string(output))
	}
	return time.Since(start).Seconds(), nil
}

// writeActivity writes days of 30 second buckets ending now. Every third
// quarter hour is idle so the scores vary.
func writeActivity(path string, days int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	w := bufio.NewWriter(file)
	end := time.Now().Truncate(30 * time.Second).UTC()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)
	for i := range days * bucketsPerDay {
		s := start.Add(time.Duration(i) * 30 * time.Second)
		state := "active"
		if (i/30)%3 == 2 {
			state = "inactive"
		}
		if _, err := fmt.Fprintf(w, `{"state":%q,"app_switches":%d,"start_time":%q,"end_time":%q}`+"\n",
			state, i%7, s.Format(time.RFC3339), s.Add(30*time.Second).Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return w.Flush()
}

// runPhase runs a command config.Runs times and returns the cold time and warm average.
func runPhase(config BenchmarkConfig, dbPath string, args []string) (coldTime, warmAvg string) {
	var times []float64
	for range config.Runs {
		start := time.Now()
		cmd := flowstate(dbPath, args...)

		done := make(chan error, 1)
		go func() { done <- cmd.Run() }()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) == 0 {
		return "TIMEOUT", "TIMEOUT"
	}
	coldTime = fmt.Sprintf("%.3fs", times[0])
	if len(times) == 1 {
		return coldTime, "N/A"
	}
	var sum float64
	for _, t := range times[1:] {
		sum += t
	}
	return coldTime, fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
}

// flowstate builds a flowstate command bound to the SQLite store at dbPath.
func flowstate(dbPath string, args ...string) *exec.Cmd {
	cmd := exec.Command("flowstate", args...)
	cmd.Env = append(os.Environ(), "FLOWSTATE_BACKEND=sqlite", "FLOWSTATE_DB_CONNECT="+dbPath)
	return cmd
}

func sortedKeys(m map[string][]string) []string {
	return slices.Sorted(maps.Keys(m))
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/flowstate_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "cmd", "import_time", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.ImportTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult, config BenchmarkConfig) {
	fmt.Printf("Benchmark complete\n")
	for _, name := range sortedKeys(config.Commands) {
		fmt.Printf("%s:\n", name)
		for _, result := range results {
			if result.Command == name {
				fmt.Printf("  %-6s: Import: %s, Cold: %s, Warm: %s\n", result.Dataset, result.ImportTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
