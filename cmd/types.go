package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dekic648/segmentator/internal/session"
	"github.com/Dekic648/segmentator/internal/survey"
)

var typesSession string

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Show the semantic type of every column in a session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), typesSession, func(s *session.Session) (bool, error) {
			printTypes(cmd.OutOrStdout(), s)
			return false, nil
		})
	},
}

var typesSetCmd = &cobra.Command{
	Use:   "set <column> <type>",
	Short: "Override the type of one column (numeric, likert, categorical, checkbox, matrix, open_ended, text)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		column := args[0]
		t, err := survey.ParseSemanticType(args[1])
		if err != nil {
			return err
		}
		var prev survey.SemanticType
		err = withSession(cmd.Context(), typesSession, func(s *session.Session) (bool, error) {
			prev = s.Types[column]
			return true, s.OverrideType(column, t)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %s -> %s\n", column, prev, t)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
	typesCmd.AddCommand(typesSetCmd)
	typesCmd.PersistentFlags().StringVarP(&typesSession, "session", "s", "", "session name (required)")
}
