package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/sharecart/pkg/cart"
	"github.com/ssargent/sharecart/pkg/journal"
)

// outputRecord writes a record as YAML, or JSON when asJSON is set
func outputRecord(w io.Writer, record cart.Record, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(record); err != nil {
		return err
	}
	return enc.Close()
}

// outputEntries displays journal entries in table format
func outputEntries(out io.Writer, entries []journal.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No snapshots found")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tTIME\tMAP\tPLAYER")
	for _, entry := range entries {
		name := entry.Record.PlayerName
		if runes := []rune(name); len(runes) > 40 {
			name = string(runes[:37]) + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%d,%d\t%s\n",
			entry.ID,
			entry.Time.Local().Format(time.RFC3339),
			entry.Record.MapX,
			entry.Record.MapY,
			name,
		)
	}

	return w.Flush()
}

// readRecord parses a YAML (or JSON, which YAML accepts) record
func readRecord(r io.Reader) (cart.Record, error) {
	var record cart.Record
	data, err := io.ReadAll(r)
	if err != nil {
		return cart.Record{}, fmt.Errorf("failed to read record: %w", err)
	}
	if err := yaml.Unmarshal(data, &record); err != nil {
		return cart.Record{}, fmt.Errorf("failed to parse record: %w", err)
	}
	return record, nil
}
