package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Digital-Shane/season-tidy/internal/config"
	"github.com/Digital-Shane/season-tidy/internal/tui"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration a run would use after merging defaults, the YAML
config file, .env, environment variables and flags.`,
		Args: cobra.NoArgs,
		RunE: a.runConfig,
	}
}

func (a *app) runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if path, err = config.ConfigPath(); err != nil {
			path = "(unavailable)"
		}
	}

	fmt.Fprintln(a.out, tui.RenderKeyValues("Effective configuration", configRows(cfg, path), a.theme))
	if err := cfg.Validate(); err != nil {
		a.logger(cfg).Warn("Configuration is not ready for a run", "err", err)
	}
	return nil
}

func configRows(cfg *config.Config, path string) [][]string {
	orUnset := func(s string) string {
		if s == "" {
			return "(unset)"
		}
		return s
	}
	return [][]string{
		{"config file", path},
		{"mount_point", orUnset(cfg.MountPoint)},
		{"series_title", orUnset(cfg.SeriesTitle)},
		{"auto_run", strconv.FormatBool(cfg.AutoRun)},
		{"prompt_timeout", cfg.PromptTimeout.String()},
		{"junk_markers", strings.Join(cfg.JunkMarkers, ", ")},
		{"journal", strconv.FormatBool(cfg.Journal)},
		{"journal_dir", orUnset(cfg.JournalDir)},
		{"log_retention_days", strconv.Itoa(cfg.LogRetentionDays)},
		{"log_level", cfg.LogLevel},
	}
}
