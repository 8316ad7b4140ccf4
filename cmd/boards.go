/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"

	"github.com/FelipeSilva10/longboard-IDE/internal/flash"
	"github.com/FelipeSilva10/longboard-IDE/internal/tui/styles"
)

// boardsCmd represents the boards command
var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List the board names accepted by upload",
	Long: `List the board names accepted by --board and the arduino-cli FQBN each
one compiles for. Unknown names fall back to ` + flash.DefaultFQBN + `.

Extra boards come from the "boards" map in the config file or from a YAML
file named by flash.boards_file. --yaml prints the table in that format.

Examples:
  longboard boards
  longboard boards --yaml > ~/.longboard-boards.yaml`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		boards, err := boardTable()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading boards: %v\n", err)
			os.Exit(1)
		}

		asYAML, _ := cmd.Flags().GetBool("yaml")
		if asYAML {
			out, err := boards.MarshalBoardFile()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			os.Stdout.Write(out)
			return
		}

		fmt.Println(renderBoardTable(boards))
	},
}

func init() {
	rootCmd.AddCommand(boardsCmd)

	boardsCmd.Flags().Bool("yaml", false, "Print the board table as a YAML board file")
}

func renderBoardTable(boards flash.BoardTable) string {
	columns := []table.Column{
		table.NewColumn("board", "Board", 12),
		table.NewColumn("fqbn", "FQBN", 32),
	}
	rows := make([]table.Row, 0, len(boards))
	for _, name := range boards.Names() {
		rows = append(rows, table.NewRow(table.RowData{"board": name, "fqbn": boards[name]}))
	}

	return table.New(columns).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(styles.HeaderStyle).
		WithBaseStyle(lipgloss.NewStyle().Align(lipgloss.Left)).
		View()
}
