// prpass-perfcheck compares two `go test -bench` outputs and fails when a tracked
// benchmark regressed past the threshold.
//
// Usage:
//
//	go test -run '^$' -bench . -count 5 ./... > new.txt
//	prpass-perfcheck --baseline old.txt --candidate new.txt
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const defaultThreshold = 0.30

// defaultTracked lists the benchmarks and units checked when --track is not given.
var defaultTracked = []string{
	"BenchmarkDerivePasswordPBKDF2:ns/op",
	"BenchmarkDerivePasswordScrypt:ns/op",
	"BenchmarkNewProfile:allocs/op",
	"BenchmarkEncodePassword:ns/op",
	"BenchmarkEncodePassword:allocs/op",
	"BenchmarkMetricsInc:ns/op",
	"BenchmarkRender:allocs/op",
}

// sampleSet maps benchmark name to unit to samples.
type sampleSet map[string]map[string][]float64

type tracked map[string][]string

type comparison struct {
	benchmark string
	unit      string
	baseline  float64
	candidate float64
	delta     float64
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var (
		baselinePath  string
		candidatePath string
		threshold     float64
		track         []string
	)

	flagSet := pflag.NewFlagSet("prpass-perfcheck", pflag.ContinueOnError)
	flagSet.StringVar(&baselinePath, "baseline", "", "path to baseline benchmark output")
	flagSet.StringVar(&candidatePath, "candidate", "", "path to candidate benchmark output")
	flagSet.Float64Var(&threshold, "threshold", defaultThreshold, "maximum allowed regression ratio (0.30 = +30%)")
	flagSet.StringSliceVar(&track, "track", defaultTracked, "Benchmark:unit pairs to check")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if baselinePath == "" || candidatePath == "" {
		return errors.New("--baseline and --candidate are required")
	}
	if threshold < 0 {
		return errors.New("--threshold must be >= 0")
	}
	metrics, err := parseTracked(track)
	if err != nil {
		return err
	}

	baseline, err := parseBenchmarkFile(baselinePath, metrics)
	if err != nil {
		return fmt.Errorf("parse baseline: %w", err)
	}
	candidate, err := parseBenchmarkFile(candidatePath, metrics)
	if err != nil {
		return fmt.Errorf("parse candidate: %w", err)
	}

	rows, failures := compare(baseline, candidate, metrics, threshold)
	fmt.Fprintln(out, "benchmark unit baseline candidate delta")
	for _, r := range rows {
		fmt.Fprintf(out, "%s %s %.3f %.3f %+0.2f%%\n", r.benchmark, r.unit, r.baseline, r.candidate, r.delta*100)
	}

	if len(failures) > 0 {
		return fmt.Errorf("performance regression threshold exceeded:\n  - %s", strings.Join(failures, "\n  - "))
	}
	return nil
}

func parseTracked(pairs []string) (tracked, error) {
	out := tracked{}
	for _, pair := range pairs {
		name, unit, ok := strings.Cut(pair, ":")
		if !ok || !strings.HasPrefix(name, "Benchmark") || unit == "" {
			return nil, fmt.Errorf("invalid --track entry %q, want Benchmark<Name>:<unit>", pair)
		}
		out[name] = append(out[name], unit)
	}
	return out, nil
}

// compare returns rows in a stable order plus one message per regression or gap.
func compare(baseline, candidate sampleSet, metrics tracked, threshold float64) ([]comparison, []string) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		rows     []comparison
		failures []string
	)
	for _, benchmark := range names {
		for _, unit := range metrics[benchmark] {
			baseSamples := baseline[benchmark][unit]
			candidateSamples := candidate[benchmark][unit]
			if len(baseSamples) == 0 || len(candidateSamples) == 0 {
				failures = append(failures, fmt.Sprintf("missing samples for %s %s", benchmark, unit))
				continue
			}

			baseMedian := median(baseSamples)
			candidateMedian := median(candidateSamples)
			var delta float64
			switch {
			case baseMedian > 0:
				delta = (candidateMedian - baseMedian) / baseMedian
			case candidateMedian > 0:
				// 0 allocs/op growing to anything is a regression.
				delta = 1
			}

			rows = append(rows, comparison{benchmark, unit, baseMedian, candidateMedian, delta})
			if delta > threshold {
				failures = append(failures, fmt.Sprintf("%s %s regressed by %+0.2f%% (limit %+0.2f%%)", benchmark, unit, delta*100, threshold*100))
			}
		}
	}
	return rows, failures
}

func parseBenchmarkFile(path string, metrics tracked) (sampleSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseBenchmarks(file, metrics)
}

func parseBenchmarks(r io.Reader, metrics tracked) (sampleSet, error) {
	samples := sampleSet{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Benchmark") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		name := normalizeBenchmarkName(fields[0])
		if _, ok := metrics[name]; !ok {
			continue
		}

		if _, ok := samples[name]; !ok {
			samples[name] = map[string][]float64{}
		}

		for i := 2; i+1 < len(fields); i += 2 {
			value, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				continue
			}
			samples[name][fields[i+1]] = append(samples[name][fields[i+1]], value)
		}
	}
	return samples, scanner.Err()
}

// normalizeBenchmarkName strips the -GOMAXPROCS suffix.
func normalizeBenchmarkName(raw string) string {
	if idx := strings.LastIndexByte(raw, '-'); idx > 0 {
		if _, err := strconv.Atoi(raw[idx+1:]); err == nil {
			return raw[:idx]
		}
	}
	return raw
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	copied := append([]float64(nil), values...)
	sort.Float64s(copied)

	mid := len(copied) / 2
	if len(copied)%2 == 1 {
		return copied[mid]
	}
	return (copied[mid-1] + copied[mid]) / 2
}
