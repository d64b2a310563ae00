package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetsync/internal/config"
	"github.com/hupe1980/assetsync/internal/dartgen"
	"github.com/hupe1980/assetsync/internal/manifest"
	"github.com/hupe1980/assetsync/internal/output"
	"github.com/hupe1980/assetsync/pkg/assetsync"
)

type inspectOptions struct {
	format    string
	showFiles bool
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the classes that would be generated",
		Long: `Inspect walks the asset directory and prints the derived class tree
and the manifest entries a sync pass would require, without writing.

Use --format json or --format yaml for machine-readable output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}

	registerFormatFlag(cmd, &opts.format)
	cmd.Flags().BoolVar(&opts.showFiles, "show-files", false, "list the generated file names (table format)")

	return cmd
}

// inspectResult is the structured output of the inspect command.
type inspectResult struct {
	AssetRoot       string   `json:"assetRoot"`
	OutputDirectory string   `json:"outputDirectory"`
	ManifestEntries []string `json:"manifestEntries"`
	Assets          int      `json:"assets"`

	*dartgen.Library
}

func runInspect(cmd *cobra.Command, opts *inspectOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	var encode output.Encoder

	if opts.format != "table" {
		enc, err := output.DefaultRegistry().Encoder(opts.format)
		if err != nil {
			return &ExitError{Code: exitUsage, Err: err}
		}

		encode = enc
	}

	lib, err := assetsync.Build(ctx, passOptions(ctx)...)
	if err != nil {
		if errors.Is(err, assetsync.ErrAssetRootMissing) {
			return &ExitError{Code: exitRuntime, Err: fmt.Errorf("nothing to inspect: %w", err)}
		}

		return runtimeError(err)
	}

	result := buildInspectResult(cfg, lib)
	w := cmd.OutOrStdout()

	if encode != nil {
		return encode(w, result)
	}

	return renderTable(w, result, opts.showFiles)
}

func buildInspectResult(cfg *config.Config, lib *dartgen.Library) inspectResult {
	result := inspectResult{
		AssetRoot:       filepath.ToSlash(cfg.AssetsDirectory),
		OutputDirectory: filepath.ToSlash(cfg.OutputDir()),
		ManifestEntries: []string{},
		Assets:          len(lib.AssetPaths()),
		Library:         lib,
	}

	prefix := filepath.ToSlash(filepath.Clean(cfg.AssetsDirectory))

	for _, cat := range lib.Categories {
		for _, c := range cat.Classes {
			result.ManifestEntries = append(result.ManifestEntries, strings.TrimSpace(manifest.Entry(prefix, c.Dir)))
		}
	}

	return result
}

func renderTable(w io.Writer, result inspectResult, showFiles bool) error {
	lib := result.Library

	_, _ = fmt.Fprintf(w, "Asset root:  %s\n", result.AssetRoot)
	_, _ = fmt.Fprintf(w, "Output:      %s\n", result.OutputDirectory)
	_, _ = fmt.Fprintf(w, "Summary:     %d categories, %d classes, %d assets\n\n",
		len(lib.Categories), lib.ClassCount(), result.Assets)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CLASS\tPROPERTY\tVALUE")

	for _, cat := range lib.Categories {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s()\n", lib.ClassName, cat.Property, cat.Root)
	}

	for _, cat := range lib.Categories {
		for _, c := range cat.Classes {
			for _, p := range c.Properties {
				value := p.Value
				if p.Kind == dartgen.PropertyClass {
					value = p.Type + "()"
				}

				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, p.Name, value)
			}
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if showFiles {
		_, _ = fmt.Fprintln(w, "\nFiles:")
		_, _ = fmt.Fprintf(w, "  %s\n", dartgen.LibraryFile)

		for _, cat := range lib.Categories {
			_, _ = fmt.Fprintf(w, "  %s\n", cat.File)
		}
	}

	_, _ = fmt.Fprintln(w, "\nManifest entries:")

	for _, e := range result.ManifestEntries {
		_, _ = fmt.Fprintf(w, "  %s\n", e)
	}

	if len(lib.Collisions) > 0 {
		_, _ = fmt.Fprintln(w, "\nName collisions:")

		for _, c := range lib.Collisions {
			_, _ = fmt.Fprintf(w, "  %s\n", c.String())
		}
	}

	return nil
}
