package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"stubforge"
	"stubforge/internal/store"
)

var (
	flagConfig string
	flagDB     string
	flagDebug  bool
	flagMerged bool
	flagPython string
	flagTarget []string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "stubforge",
	Short:         "Serialize Python type stubs into a version-merged symbol database",
	Long:          "Stubforge builds semantic models of a Python stub corpus once per supported interpreter version, reconciles them into version-annotated module symbols, and writes the result to SQLite.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML layout file (defaults to the conventional resources/ layout)")
	rootCmd.AddCommand(serializeCmd)
}

var serializeCmd = &cobra.Command{
	Use:   "serialize",
	Short: "Build and persist module symbols for one or more targets",
	Long:  "Runs the enumerate → build → extract pipeline per target. With --merged, every supported interpreter version is built and the results are reconciled before writing; otherwise a single version (--python-version) is built and written directly.",
	RunE:  runSerialize,
}

func init() {
	serializeCmd.Flags().StringVar(&flagDB, "db", "", "database path (overrides config)")
	serializeCmd.Flags().BoolVar(&flagDebug, "debug", false, "also write per-module JSON artifacts to the debug directory")
	serializeCmd.Flags().BoolVar(&flagMerged, "merged", false, "build all supported versions and merge before writing")
	serializeCmd.Flags().StringVar(&flagPython, "python-version", "3.8", "interpreter version for direct (non-merged) runs")
	serializeCmd.Flags().StringSliceVar(&flagTarget, "target", nil, "targets to serialize: stdlib,third_party,custom,importer (default all)")
}

func runSerialize(cmd *cobra.Command, args []string) error {
	start := time.Now()
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}
	if flagDB != "" {
		cfg.Database = flagDB
	}

	targets, err := parseTargets(flagTarget)
	if err != nil {
		return err
	}
	version, err := parseVersion(flagPython)
	if err != nil {
		return err
	}

	st, err := store.NewStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("migrating store: %w", err)
	}

	opts := []stubforge.Option{
		stubforge.WithLogger(logger),
		stubforge.WithDirectVersion(version),
	}
	if flagDebug {
		opts = append(opts, stubforge.WithDebugWriter(func(target, fullname string, module any) error {
			return store.WriteDebugArtifact(cfg.DebugDir, target, fullname, module)
		}))
	}
	s := stubforge.NewSerializer(cfg.layout(), st, opts...)

	// Targets are independent: a fatal failure halts that target's output
	// but the remaining targets still run.
	ctx := cmd.Context()
	failed := 0
	for _, kind := range targets {
		var report *stubforge.RunReport
		if flagMerged {
			report, err = s.SerializeMerged(ctx, kind)
		} else {
			report, err = s.Serialize(ctx, kind)
		}
		if err != nil {
			failed++
			logger.Error("target failed", "target", kind, "state", report.State, "err", err)
			continue
		}
		if err := st.SetMetadata("last_run_"+string(kind), time.Now().UTC().Format(time.RFC3339)); err != nil {
			logger.Warn("recording run metadata", "err", err)
		}
		logger.Info("target done", "target", kind, "written", len(report.Written), "skipped", len(report.Skipped))
	}

	logger.Info("finished", "targets", len(targets), "failed", failed, "elapsed", time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		return fmt.Errorf("%d of %d target(s) failed", failed, len(targets))
	}
	return nil
}

func parseTargets(names []string) ([]stubforge.TargetKind, error) {
	if len(names) == 0 {
		return stubforge.AllTargets, nil
	}
	valid := make(map[string]stubforge.TargetKind, len(stubforge.AllTargets))
	for _, k := range stubforge.AllTargets {
		valid[string(k)] = k
	}
	var targets []stubforge.TargetKind
	for _, name := range names {
		kind, ok := valid[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("unknown target %q (valid: stdlib, third_party, custom, importer)", name)
		}
		targets = append(targets, kind)
	}
	return targets, nil
}

func parseVersion(s string) (stubforge.VersionTag, error) {
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		return stubforge.VersionTag{}, fmt.Errorf("invalid python version %q (want e.g. 3.10)", s)
	}
	maj, err1 := strconv.Atoi(major)
	mnr, err2 := strconv.Atoi(minor)
	if err1 != nil || err2 != nil {
		return stubforge.VersionTag{}, fmt.Errorf("invalid python version %q (want e.g. 3.10)", s)
	}
	v := stubforge.VersionTag{Major: maj, Minor: mnr}
	for _, supported := range stubforge.SupportedVersions {
		if v == supported {
			return v, nil
		}
	}
	return stubforge.VersionTag{}, fmt.Errorf("unsupported python version %s", v.Display())
}
