package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/Dekic648/segmentator/internal/config"
	"github.com/Dekic648/segmentator/internal/logging"
	"github.com/Dekic648/segmentator/internal/session"
	"github.com/Dekic648/segmentator/internal/store"
)

var (
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "segmentator",
	Short: "Segmentator: classify survey columns, group them and chart the results",
	Long: `Segmentator loads a survey export (CSV, TSV or XLSX), infers a semantic type for
every column, lets you correct those types, define checkbox and matrix groups,
and renders percentage and mean charts, optionally segmented by a categorical column.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.segmentator/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it themselves
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		logging.Setup("info", "text", os.Stderr)
		return
	}
	cfg = c
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logging.Setup(level, cfg.LogFormat, os.Stderr)
}

func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, c.Store, c.SessionsDir, c.DatabaseURL)
}

// withSession loads the named session, runs fn and, when fn reports a change,
// saves it back.
func withSession(ctx context.Context, name string, fn func(*session.Session) (bool, error)) error {
	if name == "" {
		return fmt.Errorf("--session is required")
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	s, err := st.Get(ctx, name)
	if err != nil {
		return err
	}
	changed, err := fn(s)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return st.Save(ctx, s)
}
