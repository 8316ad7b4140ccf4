/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FelipeSilva10/longboard-IDE/internal/events"
	"github.com/FelipeSilva10/longboard-IDE/internal/logging"
	"github.com/FelipeSilva10/longboard-IDE/internal/tui/models"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <port>",
	Short: "Watch a board's serial output, and re-flash it without leaving",
	Long: `Open a live view of the text a board prints on its serial port.

Output is split into lines and shown at most 50 lines per second, so a board
printing in a tight loop cannot freeze the terminal. With --sketch, pressing
'u' stops the monitor, compiles and uploads the sketch, and reopens the port.

Keys: s stop/start, u upload, c clear, t timestamps, ↑/↓ scroll, ? help, q quit

Logs go to --log-file (or log.file) only, so they do not draw over the screen.

Examples:
  longboard monitor /dev/ttyUSB0
  longboard monitor /dev/ttyACM0 --baud 115200
  longboard monitor /dev/ttyUSB0 --sketch robot.ino --board esp32`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sketch, _ := cmd.Flags().GetString("sketch")
		board, _ := cmd.Flags().GetString("board")
		scrollback, _ := cmd.Flags().GetInt("scrollback")

		if err := runMonitorTUI(args[0], sketch, board, scrollback); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().String("sketch", "", "Sketch to upload when 'u' is pressed")
	monitorCmd.Flags().StringP("board", "b", "uno", "Board name used for uploads")
	monitorCmd.Flags().Int("scrollback", 5000, "Lines kept on screen")
}

func runMonitorTUI(portPath, sketch, board string, scrollback int) error {
	// Only log when a file was requested; stderr belongs to the alt screen
	tuiLog := logging.Nop()
	if cfg.Log.File != "" {
		tuiLog = log
	}

	bus := events.NewBus(tuiLog.Named("events"))
	sub, unsubscribe := bus.Subscribe(256)
	defer unsubscribe()

	b, err := newBridge(bus, tuiLog)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := models.MonitorOptions{
		Port:       portPath,
		Board:      board,
		BaudRate:   cfg.Serial.BaudRate,
		Context:    ctx,
		Scrollback: scrollback,
	}
	if sketch != "" {
		opts.Source = func() (string, error) {
			data, err := os.ReadFile(sketch)
			return string(data), err
		}
	}

	m := models.NewMonitorModel(b, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	// Forward monitor events into the program
	go func() {
		for e := range sub {
			p.Send(models.EventMsg(e))
		}
	}()

	_, err = p.Run()

	b.StopSerial()
	if task := b.Task(); task != nil {
		task.Wait()
		logStats(tuiLog, task.Stats().LinesEmitted, bus.Dropped())
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func logStats(logger *zap.SugaredLogger, lines int, dropped uint64) {
	logger.Infow("monitor session finished", "lines", lines, "dropped_events", dropped)
}
