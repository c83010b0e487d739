// importctl validates property listing CSV files offline, without a
// server or database. It prints a per-row report and can write the
// rejected rows, with their error reasons, to a separate CSV.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/estatehub/listimport/internal/core"
	"github.com/estatehub/listimport/internal/csvio"
	"github.com/estatehub/listimport/internal/geo"
)

func main() {
	var (
		autoCorrect = flag.Bool("autocorrect", false, "auto-correct near-miss city names before validation")
		jsonOut     = flag.Bool("json", false, "print the full report as JSON instead of text")
		failedOut   = flag.String("failed", "", "write rejected rows with error reasons to this CSV file")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: importctl [flags] <file.csv>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *autoCorrect, *jsonOut, *failedOut); err != nil {
		fmt.Fprintf(os.Stderr, "importctl: %s\n", core.MapErrorWithDetail(err))
		os.Exit(1)
	}
}

func run(path string, autoCorrect, jsonOut bool, failedOut string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dir, err := geo.Load(geo.DefaultOptions())
	if err != nil {
		return err
	}

	service := core.NewService(core.DefaultRules(), dir, nil, nil)

	outcome, err := service.ValidateCSV(context.Background(), f, autoCorrect)
	if err != nil {
		return err
	}

	if failedOut != "" && outcome.Report.InvalidRows > 0 {
		if err := writeFailed(failedOut, outcome.Report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %d rejected rows to %s\n", outcome.Report.InvalidRows, failedOut)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	printReport(outcome)
	return nil
}

func printReport(outcome *core.ValidationOutcome) {
	s := outcome.Summary
	fmt.Printf("rows: %d  valid: %d  invalid: %d  (%.1f%% valid)\n",
		s.Total, s.Valid, s.Invalid, s.ValidPercentage)

	if len(outcome.UnknownColumns) > 0 {
		fmt.Printf("ignored columns: %v\n", outcome.UnknownColumns)
	}

	for _, row := range outcome.Report.Rows {
		if row.WasAutoCorrected {
			fmt.Printf("%s: city %q corrected to %q\n", row.ID, row.OriginalCity, row.City)
		}
		for _, w := range row.Warnings {
			fmt.Printf("%s: warning: %s\n", row.ID, w)
		}
		for _, e := range row.Errors {
			fmt.Printf("%s: error: %s\n", row.ID, e)
		}
	}

	if len(s.InvalidByCountry) > 0 {
		fmt.Println("invalid rows by country:")
		for country, n := range s.InvalidByCountry {
			fmt.Printf("  %s: %d\n", country, n)
		}
	}
}

func writeFailed(path string, report core.BatchReport) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := csvio.Write(out, core.FailedRecords(report)); err != nil {
		return fmt.Errorf("write failed rows: %w", err)
	}
	return nil
}
