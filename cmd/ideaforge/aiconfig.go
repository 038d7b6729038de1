package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/ideaforge/internal/prompt"
	"github.com/hyperengineering/ideaforge/internal/store"
	"github.com/hyperengineering/ideaforge/internal/types"
)

var aiconfigModel string

var aiconfigCmd = &cobra.Command{
	Use:   "aiconfig",
	Short: "Inspect per-stage AI configuration",
	Long:  "Shows stored AI configuration overrides and the effective configuration the server resolves from them.",
}

var aiconfigListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every task stage with its effective model",
	Args:  cobra.NoArgs,
	RunE:  runAIConfigList,
}

var aiconfigShowCmd = &cobra.Command{
	Use:   "show <stage>",
	Short: "Show the stored and effective configuration for one stage",
	Args:  cobra.ExactArgs(1),
	RunE:  runAIConfigShow,
}

func init() {
	aiconfigCmd.PersistentFlags().StringVar(&dbPathOverride, "db", "",
		"Database path (overrides config and IDEAFORGE_DB_PATH)")
	aiconfigCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")
	aiconfigCmd.PersistentFlags().StringVar(&aiconfigModel, "model", "",
		"Server model used when no stored override names one")

	aiconfigCmd.AddCommand(aiconfigListCmd)
	aiconfigCmd.AddCommand(aiconfigShowCmd)
}

type stageConfig struct {
	Stored    *types.AIConfig `json:"stored"`
	Effective prompt.Config   `json:"effective"`
}

func loadStageConfig(cmd *cobra.Command, s store.SettingsStore, stage types.TaskStage) (stageConfig, error) {
	stored, err := s.GetAIConfig(cmd.Context(), stage)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return stageConfig{}, fmt.Errorf("get ai config %s: %w", stage, err)
	}
	defaults := prompt.DefaultConfigs().WithModel(aiconfigModel)
	return stageConfig{
		Stored:    stored,
		Effective: prompt.Resolve(stage, stored, defaults),
	}, nil
}

func runAIConfigList(cmd *cobra.Command, args []string) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	configs := make([]stageConfig, 0, len(types.TaskStages))
	for _, stage := range types.TaskStages {
		sc, err := loadStageConfig(cmd, db, stage)
		if err != nil {
			return err
		}
		configs = append(configs, sc)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"stages": configs})
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "STAGE\tMODEL\tOVERRIDE\tUPDATED")
	for _, sc := range configs {
		override, updated := "no", "-"
		if sc.Stored != nil {
			override = "yes"
			updated = sc.Stored.UpdatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sc.Effective.Stage, sc.Effective.Model, override, updated)
	}
	return w.Flush()
}

func runAIConfigShow(cmd *cobra.Command, args []string) error {
	if !types.ValidTaskStage(args[0]) {
		return fmt.Errorf("unknown stage %q", args[0])
	}
	stage := types.TaskStage(args[0])

	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	sc, err := loadStageConfig(cmd, db, stage)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), sc)
	}

	out := cmd.OutOrStdout()
	source := "built-in defaults"
	if sc.Stored != nil {
		source = "stored override"
	}
	fmt.Fprintf(out, "Stage:   %s\n", sc.Effective.Stage)
	fmt.Fprintf(out, "Source:  %s\n", source)
	fmt.Fprintf(out, "Model:   %s\n", sc.Effective.Model)
	fmt.Fprintf(out, "\nSystem prompt:\n%s\n", indent(sc.Effective.SystemPrompt))
	fmt.Fprintf(out, "\nUser prompt:\n%s\n", indent(sc.Effective.UserPrompt))
	if sc.Effective.SystemPromptVibeCoder != "" || sc.Effective.UserPromptVibeCoder != "" {
		fmt.Fprintf(out, "\nSystem prompt (vibe coder):\n%s\n", indent(sc.Effective.SystemPromptVibeCoder))
		fmt.Fprintf(out, "\nUser prompt (vibe coder):\n%s\n", indent(sc.Effective.UserPromptVibeCoder))
	}
	return nil
}

func indent(s string) string {
	if s == "" {
		return "  (empty)"
	}
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
