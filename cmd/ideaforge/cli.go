package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hyperengineering/ideaforge/internal/config"
	"github.com/hyperengineering/ideaforge/internal/store"
)

// Flags shared by the offline subcommands.
var (
	dbPathOverride string
	jsonOutput     bool
)

// resolveDBPath returns --db when set, otherwise the configured database path.
func resolveDBPath() (string, error) {
	if dbPathOverride != "" {
		return dbPathOverride, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.Database.Path, nil
}

// openStore opens (and migrates) the database for an offline command.
func openStore() (*store.SQLiteStore, string, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, "", err
	}
	db, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, "", err
	}
	return db, path, nil
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
