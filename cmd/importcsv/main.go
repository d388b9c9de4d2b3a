// Command importcsv converts an uploaded CSV or Excel balance sheet into the
// normalized records JSON the server seeds from.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"bizpulse/internal/dataprocessing"
)

func main() {
	input := flag.String("in", "", "CSV or XLSX file to convert")
	output := flag.String("out", "data/records.json", "destination JSON file")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: importcsv -in balances.csv [-out data/records.json]")
		os.Exit(2)
	}

	records, err := dataprocessing.ParseFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", *input, err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode records: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", *output, err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d records to %s\n", len(records), *output)
}
