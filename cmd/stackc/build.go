package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stackc/internal/driver"
	"stackc/internal/version"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [units...]",
	Short: "Assemble module units into artifacts",
	Long: `Assemble module units (.toml or .mp) into msgpack artifacts.
Without arguments the units listed in stackc.toml [project].units are built.`,
	RunE: buildExecution,
}

func init() {
	addBuildFlags(buildCmd)
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("out", "", "output directory (default [build].out_dir)")
	cmd.Flags().Int("jobs", 0, "units assembled in parallel (0 = GOMAXPROCS)")
	cmd.Flags().Bool("no-cache", false, "ignore and do not update the artifact cache")
	cmd.Flags().Bool("listing", false, "write a .lst listing next to each artifact")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

type buildSettings struct {
	units     []string
	opts      driver.Options
	cacheDir  string
	useCache  bool
	uiMode    uiMode
	quiet     bool
	timings   bool
	heartbeat time.Duration
}

func buildExecution(cmd *cobra.Command, args []string) error {
	manifest, _, err := loadProjectManifest(".")
	if err != nil {
		return err
	}
	settings, err := resolveBuildSettings(cmd, manifest, args)
	if err != nil {
		return err
	}
	return runBuild(cmd.Context(), cmd.OutOrStdout(), settings)
}

// resolveBuildSettings merges stackc.toml with flags; flags win when set.
func resolveBuildSettings(cmd *cobra.Command, manifest *projectManifest, args []string) (*buildSettings, error) {
	cfg := manifest.Config
	s := &buildSettings{
		cacheDir: cfg.Build.CacheDir,
		useCache: cfg.Build.Cache,
	}
	s.opts.OutDir = cfg.Build.OutDir
	s.opts.Jobs = cfg.Build.Jobs
	s.opts.Listing = cfg.Build.Listing
	s.opts.Target = cfg.target()
	s.opts.Fingerprint = version.Fingerprint()

	flags := cmd.Flags()
	if flags.Changed("out") {
		out, _ := flags.GetString("out")
		s.opts.OutDir = out
	} else if s.opts.OutDir != "" && !filepath.IsAbs(s.opts.OutDir) {
		s.opts.OutDir = filepath.Join(manifest.Root, s.opts.OutDir)
	}
	if flags.Changed("jobs") {
		s.opts.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("listing") {
		s.opts.Listing, _ = flags.GetBool("listing")
	}
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		s.useCache = false
	}
	if s.cacheDir != "" && !filepath.IsAbs(s.cacheDir) {
		s.cacheDir = filepath.Join(manifest.Root, s.cacheDir)
	}
	uiValue, _ := flags.GetString("ui")
	mode, err := readUIMode(uiValue)
	if err != nil {
		return nil, err
	}
	s.uiMode = mode
	s.quiet, _ = cmd.Root().PersistentFlags().GetBool("quiet")
	s.timings, _ = cmd.Root().PersistentFlags().GetBool("timings")
	s.heartbeat, _ = cmd.Root().PersistentFlags().GetDuration("trace-heartbeat")

	patterns := args
	base := "."
	if len(patterns) == 0 {
		patterns = cfg.Project.Units
		base = manifest.Root
	}
	if len(patterns) == 0 {
		return nil, errors.New("no units given and stackc.toml lists none\nplease name the units explicitly, e.g.:\n  stackc build units/*.toml")
	}
	units, err := driver.ExpandUnits(base, patterns)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("no units match %v", patterns)
	}
	s.units = units
	return s, nil
}

func runBuild(ctx context.Context, out io.Writer, s *buildSettings) error {
	opts := s.opts
	opts.Heartbeat = s.heartbeat
	if s.useCache {
		cache, err := driver.OpenDiskCache(s.cacheDir, "stackc")
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		opts.Cache = cache
	}

	var (
		results []driver.UnitResult
		err     error
	)
	if shouldUseTUI(s.uiMode, len(s.units)) {
		results, err = runBuildWithUI(ctx, "stackc build", s.units, opts)
	} else {
		results, err = driver.Build(ctx, s.units, opts)
		if !s.quiet {
			printResults(out, results, s.timings)
		}
	}
	if err != nil {
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		if failed == 0 {
			return err
		}
		return fmt.Errorf("%d of %d unit(s) failed:\n%w", failed, len(results), err)
	}
	return nil
}

func printResults(out io.Writer, results []driver.UnitResult, timings bool) {
	okColor := color.New(color.FgGreen, color.Bold)
	cachedColor := color.New(color.FgBlue)
	errColor := color.New(color.FgRed, color.Bold)

	var built, cached, failed int
	for _, r := range results {
		switch {
		case r.Err == nil && r.Artifact == nil:
			// Cancelled before the unit started.
			continue
		case r.Err != nil:
			failed++
			fmt.Fprintf(out, "%s %s\n", errColor.Sprint("  failed"), r.Path)
			continue
		case r.Cached:
			cached++
			fmt.Fprintf(out, "%s %s", cachedColor.Sprint("  cached"), r.Path)
		default:
			built++
			fmt.Fprintf(out, "%s %s", okColor.Sprint("   built"), r.Path)
		}
		if r.Output != "" {
			fmt.Fprintf(out, " -> %s", r.Output)
		}
		fmt.Fprintf(out, " (%d funcs, %d classes, %s)\n",
			len(r.Artifact.Functions), len(r.Artifact.Classes), r.Elapsed.Round(time.Millisecond))
		if timings {
			fmt.Fprint(out, r.Timings.Summary("      "))
		}
	}
	fmt.Fprintf(out, "%d built, %d cached, %d failed\n", built, cached, failed)
}
