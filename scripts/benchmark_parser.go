// Command benchmark_parser turns `go test -bench` output from the arena
// packages into a markdown report comparing the single-threaded arena
// against the concurrent arena for the operations both implement.
//
// Usage:
//
//	go test -bench=. -benchmem ./arena/... | go run scripts/benchmark_parser.go
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// BenchmarkResult is one parsed benchmark line.
type BenchmarkResult struct {
	Name        string
	Operation   string // e.g. "AllocFree", "Get", "Parallel"
	Impl        string // "Arena" or "ConcurrentArena"
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult pairs the two arena flavors on one operation.
type ComparisonResult struct {
	Operation    string
	ArenaNs      float64
	ConcurrentNs float64
	Overhead     float64 // concurrent / single-threaded
	SingleOnly   bool
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()

	var scanner *bufio.Scanner
	var inputF *os.File
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		inputF = f
		scanner = bufio.NewScanner(f)
	} else {
		scanner = bufio.NewScanner(os.Stdin)
	}

	results := parseBenchmarks(scanner)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons := generateComparisons(results)
	report := generateMarkdownReport(comparisons, results)

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(report), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			if inputF != nil {
				inputF.Close()
			}
			os.Exit(1)
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
		}
	} else {
		fmt.Fprint(os.Stdout, report)
	}

	if inputF != nil {
		inputF.Close()
	}
}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	// Benchmark_Arena_AllocFree-8    10000    24.5 ns/op    0 B/op    0 allocs/op
	benchmarkRegex := regexp.MustCompile(
		`^(Benchmark\S+?)(?:-\d+)?\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
	)

	for scanner.Scan() {
		line := scanner.Text()

		// Accept `go test -json` lines too.
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		name := matches[1]
		iterations, _ := strconv.Atoi(matches[2])
		nsPerOp, _ := strconv.ParseFloat(matches[3], 64)

		var bytesPerOp, allocsPerOp int64
		if matches[4] != "" {
			bytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			allocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}

		// Format: Benchmark_<Impl>_<Operation>
		parts := strings.SplitN(strings.TrimPrefix(name, "Benchmark_"), "_", 2)
		if len(parts) != 2 {
			continue
		}

		results = append(results, BenchmarkResult{
			Name:        name,
			Operation:   parts[1],
			Impl:        parts[0],
			Iterations:  iterations,
			NsPerOp:     nsPerOp,
			BytesPerOp:  bytesPerOp,
			AllocsPerOp: allocsPerOp,
		})
	}

	return results
}

func generateComparisons(results []BenchmarkResult) []ComparisonResult {
	byOp := make(map[string]map[string]BenchmarkResult)
	for _, r := range results {
		if byOp[r.Operation] == nil {
			byOp[r.Operation] = make(map[string]BenchmarkResult)
		}
		byOp[r.Operation][r.Impl] = r
	}

	var comparisons []ComparisonResult
	for op, impls := range byOp {
		st, hasST := impls["Arena"]
		mt, hasMT := impls["ConcurrentArena"]

		c := ComparisonResult{Operation: op}
		switch {
		case hasST && hasMT:
			c.ArenaNs = st.NsPerOp
			c.ConcurrentNs = mt.NsPerOp
			if st.NsPerOp > 0 {
				c.Overhead = mt.NsPerOp / st.NsPerOp
			}
		case hasST:
			c.ArenaNs = st.NsPerOp
			c.SingleOnly = true
		case hasMT:
			c.ConcurrentNs = mt.NsPerOp
		}
		comparisons = append(comparisons, c)
	}

	sort.Slice(comparisons, func(i, j int) bool {
		return comparisons[i].Operation < comparisons[j].Operation
	})
	return comparisons
}

func generateMarkdownReport(comparisons []ComparisonResult, results []BenchmarkResult) string {
	var b strings.Builder

	b.WriteString("# Arena Benchmark Report\n\n")
	b.WriteString("## Single-threaded vs Concurrent\n\n")
	b.WriteString("| Operation | Arena (ns/op) | ConcurrentArena (ns/op) | Overhead |\n")
	b.WriteString("|-----------|---------------|-------------------------|----------|\n")

	for _, c := range comparisons {
		arenaCell := "-"
		if c.ArenaNs > 0 {
			arenaCell = fmt.Sprintf("%.1f", c.ArenaNs)
		}
		mtCell := "-"
		if c.ConcurrentNs > 0 {
			mtCell = fmt.Sprintf("%.1f", c.ConcurrentNs)
		}
		overheadCell := "-"
		if c.Overhead > 0 {
			overheadCell = fmt.Sprintf("%.2fx", c.Overhead)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", c.Operation, arenaCell, mtCell, overheadCell)
	}

	b.WriteString("\n## All Results\n\n")
	b.WriteString("| Benchmark | Iterations | ns/op | B/op | allocs/op |\n")
	b.WriteString("|-----------|------------|-------|------|-----------|\n")

	sorted := make([]BenchmarkResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, r := range sorted {
		fmt.Fprintf(&b, "| %s | %d | %.1f | %d | %d |\n",
			r.Name, r.Iterations, r.NsPerOp, r.BytesPerOp, r.AllocsPerOp)
	}

	return b.String()
}
