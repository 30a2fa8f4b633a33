package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"fincoach/internal/analysis"
	"fincoach/internal/core"
	"fincoach/internal/source"
	"fincoach/internal/websites"
)

// fincoach-cli runs the analysis engines over a local CSV statement without a
// server. Useful for quick checks and piping into jq.
func main() {
	var (
		filePath  = flag.String("file", "", "path to the CSV statement (required)")
		window    = flag.String("window", "all", "analysis window: all, 14d, 30d, 90d, 1y")
		exclude   = flag.String("exclude", "", "comma-separated categories to exclude from the aggregation")
		threshold = flag.Float64("threshold", 0.5, "subscription detection threshold in [0,1]")
		target    = flag.Float64("savings-target", 0, "optional savings goal amount; enables the savings report")
		months    = flag.Int("savings-months", 12, "months to reach the savings goal")
		sitesFile = flag.String("sites", "", "optional JSON file with merchant management-site overrides")
	)
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("open statement: %v", err)
	}
	defer f.Close()

	parsed, err := source.Parse(f)
	if err != nil {
		log.Fatalf("parse statement: %v", err)
	}
	if len(parsed.Transactions) == 0 {
		log.Fatalf("no usable transactions in %s (%d rows skipped)", *filePath, parsed.SkippedRows)
	}

	win, err := core.ParseWindow(*window)
	if err != nil {
		log.Fatalf("bad window: %v", err)
	}

	var excluded []string
	for _, part := range strings.Split(*exclude, ",") {
		if p := strings.TrimSpace(part); p != "" {
			excluded = append(excluded, p)
		}
	}

	sites := websites.New()
	if *sitesFile != "" {
		sites, err = websites.NewFromFile(*sitesFile)
		if err != nil {
			log.Fatalf("load site overrides: %v", err)
		}
	}

	report := map[string]any{
		"rows":          len(parsed.Transactions),
		"skipped_rows":  parsed.SkippedRows,
		"analysis":      analysis.Aggregate(parsed.Transactions, win, excluded),
		"subscriptions": analysis.DetectSubscriptions(parsed.Transactions, *threshold, sites),
		"profile":       analysis.Profile(parsed.Transactions),
	}

	if *target > 0 {
		savings, err := analysis.AnalyzeSavingsGoal(*target, *months, parsed.Transactions)
		if err != nil {
			log.Fatalf("savings analysis: %v", err)
		}
		report["savings"] = savings
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("encode report: %v", err)
	}

	fmt.Fprintf(os.Stderr, "analyzed %d transactions from %s\n", len(parsed.Transactions), *filePath)
}
