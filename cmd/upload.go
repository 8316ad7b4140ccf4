/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FelipeSilva10/longboard-IDE/internal/flash"
	"github.com/FelipeSilva10/longboard-IDE/internal/tui/styles"
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload <sketch.ino>",
	Short: "Compile a sketch and upload it to a board",
	Long: `Compile a sketch with arduino-cli and upload it to the board on --port.

The sketch is copied into a fixed working directory before compiling, so any
.ino file can be uploaded regardless of where it lives. Compiler and uploader
diagnostics are printed verbatim on failure.

Boards: uno, nano, esp32 (see 'longboard boards'). Unknown names compile for
` + flash.DefaultFQBN + `.

Examples:
  longboard upload blink.ino --port /dev/ttyACM0
  longboard upload telemetry.ino --board esp32 --port /dev/ttyUSB0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		board, _ := cmd.Flags().GetString("board")
		port, _ := cmd.Flags().GetString("port")
		if port == "" {
			fmt.Fprintln(os.Stderr, "Error: --port is required (see 'longboard ports')")
			os.Exit(1)
		}

		source, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading sketch: %v\n", err)
			os.Exit(1)
		}

		b, err := newBridge(nil, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, cancel := signalContext()
		defer cancel()

		fmt.Fprintf(os.Stderr, "Compiling %s for %s and uploading to %s...\n", args[0], board, port)
		msg, err := b.UploadCode(ctx, string(source), board, port)
		if err != nil {
			fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("Upload failed"))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			var ce *flash.CompileError
			if errors.As(err, &ce) && ce.Err != nil {
				fmt.Fprintln(os.Stderr, "Is arduino-cli installed? Set flash.cli_path to its location.")
			}
			os.Exit(1)
		}
		fmt.Println(styles.SuccessStyle.Render(msg))
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringP("board", "b", "uno", "Board name: uno, nano, esp32")
	uploadCmd.Flags().StringP("port", "p", "", "Serial port the board is connected to")
}
