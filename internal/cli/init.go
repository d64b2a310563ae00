package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/hupe1980/assetsync/internal/config"
	"github.com/hupe1980/assetsync/internal/output"
	"github.com/hupe1980/assetsync/internal/status"
)

type initOptions struct {
	yes   bool
	force bool
}

func newInitCommand() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create " + config.FileName + " in the project directory",
		Long: `Init writes a commented ` + config.FileName + ` to the project directory.

On a terminal a short form asks for the asset directory, the output
directory, the aggregator class name and the auto-sync default. Use --yes
to accept the current values without prompting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.yes, "yes", "y", false, "write the current values without prompting")
	f.BoolVar(&opts.force, "force", false, "overwrite an existing file")

	return cmd
}

func runInit(cmd *cobra.Command, opts *initOptions) error {
	loaded := config.FromContext(cmd.Context())
	cfg := *loaded

	path := filepath.Join(cfg.ProjectDir, config.FileName)
	if _, err := os.Stat(path); err == nil && !opts.force {
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("%s already exists (use --force to overwrite)", path)}
	}

	if !opts.yes && interactive(cmd) {
		if err := askConfig(cmd, &cfg); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return &ExitError{Code: exitRuntime, Err: errors.New("aborted")}
			}

			return runtimeError(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: exitUsage, Err: err}
	}

	data, err := config.Marshal(&cfg)
	if err != nil {
		return runtimeError(fmt.Errorf("encoding config: %w", err))
	}

	if err := output.NewFileWriter(path, output.WithPermissions(0o644)).Write(data); err != nil {
		return runtimeError(err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

	return err
}

func interactive(cmd *cobra.Command) bool {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}

	out, ok := cmd.OutOrStdout().(*os.File)

	return ok && status.IsTerminal(in) && status.IsTerminal(out)
}

// askConfig edits cfg through a terminal form.
func askConfig(cmd *cobra.Command, cfg *config.Config) error {
	debounce := cfg.Debounce.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Asset directory").
				Description("Relative to the project directory.").
				Value(&cfg.AssetsDirectory).
				Validate(notEmpty),
			huh.NewInput().
				Title("Output directory").
				Description("Receives assets.dart and the generated part files.").
				Value(&cfg.OutputDirectory).
				Validate(notEmpty),
			huh.NewInput().
				Title("Class name").
				Value(&cfg.ClassName).
				Validate(notEmpty),
			huh.NewInput().
				Title("Debounce").
				Value(&debounce).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
			huh.NewConfirm().
				Title("Enable auto-sync?").
				Value(&cfg.AutoSync),
		),
	).WithInput(cmd.InOrStdin()).WithOutput(cmd.OutOrStdout())

	if err := form.RunWithContext(cmd.Context()); err != nil {
		return err
	}

	d, err := time.ParseDuration(debounce)
	if err != nil {
		return fmt.Errorf("invalid debounce %q: %w", debounce, err)
	}

	cfg.Debounce = d

	return nil
}

func notEmpty(s string) error {
	if s == "" {
		return errors.New("must not be empty")
	}

	return nil
}
