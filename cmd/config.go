package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/Dekic648/segmentator/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Segmentator configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "sessions_dir: %s\n", cfg.SessionsDir)
		fmt.Fprintf(out, "store: %s\n", cfg.Store)
		if cfg.DatabaseURL != "" {
			fmt.Fprintf(out, "database_url: %s\n", maskURL(cfg.DatabaseURL))
		}
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "server_addr: %s\n", cfg.ServerAddr)
		fmt.Fprintf(out, "cors_origins: %s\n", strings.Join(cfg.CORSOrigins, ","))
		fmt.Fprintf(out, "categorical_max_distinct: %d\n", cfg.CategoricalMaxDistinct)
		fmt.Fprintf(out, "open_ended_min_length: %g\n", cfg.OpenEndedMinLength)
		fmt.Fprintf(out, "likert_min: %g\n", cfg.LikertMin)
		fmt.Fprintf(out, "likert_max: %g\n", cfg.LikertMax)
		if len(cfg.MissingMarkers) > 0 {
			fmt.Fprintf(out, "missing_markers: %s\n", strings.Join(cfg.MissingMarkers, ","))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := cfg.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// maskURL hides the password of a connection URL.
func maskURL(s string) string {
	at := strings.LastIndex(s, "@")
	scheme := strings.Index(s, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return s
	}
	creds := s[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		return s[:scheme+3] + creds[:i] + ":****" + s[at:]
	}
	return s
}
