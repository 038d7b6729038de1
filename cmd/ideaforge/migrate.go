package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long:  "Opens the database, applies any pending schema migrations and prints the resulting version.",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&dbPathOverride, "db", "",
		"Database path (overrides config and IDEAFORGE_DB_PATH)")
	migrateCmd.Flags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, path, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := db.SchemaVersion(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"path":    path,
			"version": version,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Database %s at schema version %d\n", path, version)
	return nil
}
