package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dekic648/segmentator/internal/dataset"
	"github.com/Dekic648/segmentator/internal/session"
	"github.com/Dekic648/segmentator/internal/utils"
)

var (
	loadName       string
	loadDelimiter  string
	loadDecimal    string
	loadThousands  string
	loadSheetName  string
	loadSheetIndex int
)

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load a CSV/TSV/XLSX survey export into a new session and classify its columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opt := c.DatasetOptions()
		if err := applyParseFlags(&opt); err != nil {
			return err
		}

		ds, err := dataset.LoadFile(path, opt)
		if err != nil {
			return err
		}
		name := loadName
		if name == "" {
			name = utils.NameFromPath(path)
		}
		s := session.New(name, filepath.Base(path), ds, c.ClassifierOptions())

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Create(cmd.Context(), s); err != nil {
			return err
		}
		slog.Debug("session created", "session", name, "rows", ds.Rows(), "columns", len(ds.Columns))

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Loaded %s into session %q (%d rows, %d columns)\n", filepath.Base(path), name, ds.Rows(), len(ds.Columns))
		printTypes(out, s)
		return nil
	},
}

// applyParseFlags maps the locale and sheet flags onto opt.
func applyParseFlags(opt *dataset.Options) error {
	switch loadDelimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return fmt.Errorf("unsupported --delimiter: %s", loadDelimiter)
	}
	switch strings.ToLower(strings.TrimSpace(loadDecimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", loadDecimal)
	}
	switch strings.ToLower(strings.TrimSpace(loadThousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", loadThousands)
	}
	if loadSheetName != "" {
		opt.SheetName = loadSheetName
	}
	if loadSheetIndex > 0 {
		opt.SheetIndex = loadSheetIndex
	}
	return nil
}

func printTypes(out io.Writer, s *session.Session) {
	width := 0
	for _, c := range s.Data.Columns {
		if len(c.Name) > width {
			width = len(c.Name)
		}
	}
	for _, c := range s.Data.Columns {
		fmt.Fprintf(out, "  %-*s  %s\n", width, c.Name, s.Types[c.Name])
	}
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringVarP(&loadName, "name", "n", "", "session name (default: file name without extension)")
	loadCmd.Flags().StringVar(&loadDelimiter, "delimiter", "", "CSV delimiter: ',', ';' or 'tab' (default: by extension)")
	loadCmd.Flags().StringVar(&loadDecimal, "decimal", "", "decimal separator: '.' or 'comma'")
	loadCmd.Flags().StringVar(&loadThousands, "thousands", "", "thousands separator: ',', '.' or 'space'")
	loadCmd.Flags().StringVar(&loadSheetName, "sheet-name", "", "XLSX sheet name")
	loadCmd.Flags().IntVar(&loadSheetIndex, "sheet-index", 0, "XLSX sheet index, 1-based")
}
