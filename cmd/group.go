package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dekic648/segmentator/internal/session"
	"github.com/Dekic648/segmentator/internal/survey"
)

var (
	groupSession string
	groupKind    string
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage checkbox and matrix groups",
}

func groupKindFlag() (survey.GroupKind, error) {
	return survey.ParseGroupKind(groupKind)
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups of one kind",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := groupKindFlag()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return withSession(cmd.Context(), groupSession, func(s *session.Session) (bool, error) {
			groups, err := s.ListGroups(kind)
			if err != nil {
				return false, err
			}
			if len(groups) == 0 {
				fmt.Fprintf(out, "(no %s groups)\n", kind)
				return false, nil
			}
			for _, g := range groups {
				fmt.Fprintf(out, "- %s: %s\n", g.Name, strings.Join(g.Columns, ", "))
			}
			return false, nil
		})
	},
}

var groupCandidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List the columns currently typed as the group kind",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := groupKindFlag()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return withSession(cmd.Context(), groupSession, func(s *session.Session) (bool, error) {
			cols := s.Columns(kind.Type())
			if len(cols) == 0 {
				fmt.Fprintf(out, "(no columns typed %s; use `types set` first)\n", kind)
				return false, nil
			}
			for _, c := range cols {
				fmt.Fprintf(out, "- %s\n", c)
			}
			return false, nil
		})
	},
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name> <column>...",
	Short: "Create a group from columns already typed as its kind",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := groupKindFlag()
		if err != nil {
			return err
		}
		name, cols := args[0], args[1:]
		var created survey.Group
		err = withSession(cmd.Context(), groupSession, func(s *session.Session) (bool, error) {
			if err := s.CreateGroup(kind, name, cols); err != nil {
				return false, err
			}
			created, _ = s.Groups.Get(kind, name)
			return true, nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s group %q (%d columns)\n", kind, created.Name, len(created.Columns))
		return nil
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := groupKindFlag()
		if err != nil {
			return err
		}
		err = withSession(cmd.Context(), groupSession, func(s *session.Session) (bool, error) {
			return true, s.DeleteGroup(kind, args[0])
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s group %q\n", kind, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupCmd)
	groupCmd.AddCommand(groupListCmd, groupCandidatesCmd, groupCreateCmd, groupDeleteCmd)
	groupCmd.PersistentFlags().StringVarP(&groupSession, "session", "s", "", "session name (required)")
	groupCmd.PersistentFlags().StringVarP(&groupKind, "kind", "k", string(survey.CheckboxGroup), "group kind: checkbox or matrix")
}
