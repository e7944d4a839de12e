package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dekic648/segmentator/internal/session"
	"github.com/Dekic648/segmentator/internal/utils"
)

var (
	chartSession string
	chartSegment string
	chartOutput  string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render percentage and mean charts as Markdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var md string
		err := withSession(cmd.Context(), chartSession, func(s *session.Session) (bool, error) {
			rep, err := s.Charts(chartSegment)
			if err != nil {
				return false, err
			}
			md = rep.Markdown()
			return false, nil
		})
		if err != nil {
			return err
		}
		if chartOutput == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		if err := utils.SafeWriteFile(chartOutput, []byte(md)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote charts to %s\n", chartOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chartSession, "session", "s", "", "session name (required)")
	chartCmd.Flags().StringVar(&chartSegment, "segment", "", "categorical column to segment by")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "", "write Markdown to this file instead of stdout")
}
