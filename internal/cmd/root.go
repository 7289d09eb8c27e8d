package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Digital-Shane/season-tidy/internal/config"
	"github.com/Digital-Shane/season-tidy/internal/session"
	"github.com/Digital-Shane/season-tidy/internal/tui"
	"github.com/Digital-Shane/season-tidy/internal/tui/theme"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Confirmer asks bounded yes/no questions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string, timeout time.Duration) bool
}

// app holds the process level collaborators every command shares.
type app struct {
	fs      afero.Fs
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	envFile string
	args    []string
	theme   theme.Theme
	newGate func(auto bool) Confirmer
}

func defaultApp() *app {
	a := &app{
		fs:      afero.NewOsFs(),
		in:      os.Stdin,
		out:     os.Stdout,
		errOut:  os.Stderr,
		envFile: ".env",
		args:    os.Args,
		theme:   theme.Default(),
	}
	a.newGate = func(auto bool) Confirmer {
		return tui.NewGate(auto, a.in, a.out, a.theme)
	}
	return a
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	if err := newRootCmd(defaultApp()).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "season-tidy [root]",
		Short: "Normalize a TV season library into canonical names",
		Long: `season-tidy renames season folders to "<Series> SNN" and episode files to
"<Series> SNNENN.ext" under a library root. It previews every change, flags
release-group junk for optional deletion, asks before applying and offers an
immediate rollback. Every applied run is journaled so it can be undone later.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         a.runRoot,
	}
	rootCmd.SetIn(a.in)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file (default ~/.season-tidy/config.yaml)")
	flags.String("root", "", "Library root containing the season folders")
	flags.String("series", "", "Series title used for canonical names")
	flags.BoolP("auto", "y", false, "Apply without asking; follow-up prompts are declined")
	flags.String("timeout", "", "Prompt timeout in seconds or as a duration (default 15s)")
	flags.StringSlice("junk", nil, "Junk marker substrings, replaces the defaults (repeatable)")
	flags.Bool("no-journal", false, "Do not write a session journal")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(newUndoCmd(a), newConfigCmd(a))
	return rootCmd
}

// loadConfig resolves the effective configuration for cmd. A positional root
// argument overrides every other source.
func (a *app) loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Loader{
		Fs:         a.fs,
		ConfigFile: configFile,
		EnvFile:    a.envFile,
		Flags:      cmd.Flags(),
	}.Load()
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		cfg.MountPoint = args[0]
	}
	return cfg, nil
}

func (a *app) logger(cfg *config.Config) *log.Logger {
	return tui.NewLogger(a.errOut, cfg.Level(), a.theme)
}

func (a *app) journal(cfg *config.Config) *session.Journal {
	return session.New(a.fs, cfg.JournalDir, cfg.LogRetentionDays)
}

func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	r := &Runner{
		Fs:      a.fs,
		Config:  cfg,
		Logger:  a.logger(cfg),
		Confirm: a.newGate(cfg.AutoRun),
		Out:     a.out,
		Theme:   a.theme,
		Width:   terminalWidth(a.out),
		Args:    a.args,
	}
	if cfg.Journal {
		r.Journal = a.journal(cfg)
	}

	ctx, stop := withInterrupt(cmd.Context())
	defer stop()
	return r.Run(ctx)
}

// terminalWidth returns the width of w when it is a terminal, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(f.Fd())
	if err != nil {
		return 0
	}
	return width
}
