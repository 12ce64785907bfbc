// Command irr scores inter-rater agreement between two coders' rubric
// sheets and produces the supporting frequency, breakdown and MCA
// analyses.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/rater-agreement/internal/version"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "score":
		handleScore(args)
	case "frequency":
		handleFrequency(args)
	case "breakdown":
		handleBreakdown(args)
	case "mca":
		handleMCA(args)
	case "history":
		handleHistory(args)
	case "migrate":
		handleMigrate(args)
	case "version":
		fmt.Println(version.String())
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`irr - inter-rater agreement for rubric codings

Usage: irr <command> [options]

Commands:
  score      Score agreement per label (kappa, weighted kappa, ICC3, crosstabs)
  frequency  Merge both sheets and tabulate rating distributions per source
  breakdown  Element presence and goal counts per source for each rater
  mca        Multiple correspondence analysis of the merged categorical labels
  history    List stored scoring runs, or show one with -run
  migrate    Manage the run database schema (up, down, status)
  version    Show irr version
  help       Show this help message

Common Flags:
  -r1 <file>       First rater's CSV export (required)
  -r2 <file>       Second rater's CSV export (required)
  -config <file>   Analysis config (.json, .yaml or .yml)
  -out <dir>       Output directory (default: out)

Examples:
  # Score two sheets and record the run
  irr score -r1 sophie.csv -r2 cat.csv -db runs.db -html

  # Rating distributions per source
  irr frequency -r1 sophie.csv -r2 cat.csv -out out/frequency

  # Show the stored runs
  irr history -db runs.db`)
}

func fatalIf(err error) {
	if err != nil {
		log.Fatalf("irr: %v", err)
	}
}
