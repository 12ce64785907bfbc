package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/rater-agreement/internal/report"
	"github.com/banshee-data/rater-agreement/internal/store"
)

func handleHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite database written by score -db (required)")
	runID := fs.String("run", "", "Show the scores of this run")
	deleteID := fs.String("delete", "", "Delete this run")
	fs.Parse(args)

	fatalIf(runHistory(*dbPath, *runID, *deleteID, os.Stdout))
}

func runHistory(dbPath, runID, deleteID string, stdout io.Writer) error {
	if dbPath == "" {
		return errors.New("-db is required")
	}
	st, err := store.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	switch {
	case deleteID != "":
		if err := st.DeleteRun(deleteID); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Deleted run %s\n", deleteID)
		return nil
	case runID != "":
		return showRun(st, runID, stdout)
	}

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No runs recorded")
		return nil
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Run ID\tCreated\tRater 1\tRater 2\tScores")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			r.RunID, r.Created().UTC().Format(time.RFC3339), r.Rater1, r.Rater2, r.ScoreCount)
	}
	return tw.Flush()
}

func showRun(st *store.Store, runID string, stdout io.Writer) error {
	run, err := st.GetRun(runID)
	if err != nil {
		return err
	}
	scores, err := st.ScoresForRun(runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Run %s (%s)\n", run.RunID, run.Created().UTC().Format(time.RFC3339))
	fmt.Fprintf(stdout, "  %s: %s\n  %s: %s\n", run.Rater1, run.Input1, run.Rater2, run.Input2)
	return report.PrintScores(stdout, "Stored scores", scores)
}

func handleMigrate(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite database (required)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		printMigrateHelp()
		os.Exit(1)
	}
	fatalIf(runMigrate(*dbPath, fs.Arg(0), os.Stdout))
}

func printMigrateHelp() {
	fmt.Println(`Usage: irr migrate -db <file> <action>

Actions:
  up       Apply all pending migrations
  down     Roll back the most recent migration
  status   Show the current and latest schema versions`)
}

func runMigrate(dbPath, action string, stdout io.Writer) error {
	if dbPath == "" {
		return errors.New("-db is required")
	}
	st, err := store.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	switch action {
	case "up":
		if err := st.MigrateUp(); err != nil {
			return err
		}
	case "down":
		if err := st.MigrateDown(); err != nil {
			return err
		}
	case "status":
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}

	status, err := st.Status()
	if err != nil {
		return err
	}
	state := "up to date"
	switch {
	case status.Dirty:
		state = "dirty"
	case !status.UpToDate():
		state = "pending migrations"
	}
	fmt.Fprintf(stdout, "Schema version %d of %d (%s)\n", status.CurrentVersion, status.LatestVersion, state)
	return nil
}
