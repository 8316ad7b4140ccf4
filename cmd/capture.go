/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/FelipeSilva10/longboard-IDE/internal/events"
	"github.com/FelipeSilva10/longboard-IDE/internal/monitor"
	"github.com/FelipeSilva10/longboard-IDE/internal/session"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <port> <output-file>",
	Short: "Capture a board's serial lines to a file",
	Long: `Capture the lines a board prints to a file for later parsing.

Uses the same line splitting and pacing as the monitor: one line per
serial line, trailing whitespace trimmed, overlong unterminated output
dropped. Runs until interrupted (Ctrl+C).

The output file is opened in append mode, allowing you to resume captures
without overwriting existing data.

Example usage:
  longboard capture /dev/ttyUSB0 data.log
  longboard capture /dev/ttyUSB0 data.log --baud 115200 --timestamps
  longboard capture /dev/ttyUSB0 capture.log --console`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		showConsole, _ := cmd.Flags().GetBool("console")
		timestamps, _ := cmd.Flags().GetBool("timestamps")

		if err := runCapture(args[0], args[1], showConsole, timestamps); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().BoolP("console", "c", false, "Display captured lines on console while capturing")
	captureCmd.Flags().Bool("timestamps", false, "Prefix each line with an RFC 3339 timestamp")
}

// lineWriter is a sink that appends serial-message text to a file
type lineWriter struct {
	mu         sync.Mutex
	w          *bufio.Writer
	console    bool
	timestamps bool
	lines      int
	lastErr    string
	err        error
}

func (lw *lineWriter) Emit(e events.Event) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if e.Kind == events.SerialError {
		lw.lastErr = e.Text
		return
	}

	line := e.Text
	if lw.timestamps {
		line = e.Time.Format(time.RFC3339Nano) + " " + line
	}
	if _, err := fmt.Fprintln(lw.w, line); err != nil && lw.err == nil {
		lw.err = err
	}
	if err := lw.w.Flush(); err != nil && lw.err == nil {
		lw.err = err
	}
	lw.lines++
	if lw.console {
		fmt.Println(line)
	}
}

func runCapture(portPath, outputPath string, showConsole, timestamps bool) error {
	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	sink := &lineWriter{w: bufio.NewWriter(file), console: showConsole, timestamps: timestamps}

	ctx, cancel := signalContext()
	defer cancel()

	registry := session.NewRegistry()
	task := monitor.Start(registry.Activate(portPath),
		monitor.SerialOpener(serialOptions()...),
		sink, monitorConfig(), log.Named("capture"))

	fmt.Fprintf(os.Stderr, "Capturing lines from %s to %s\n", portPath, outputPath)
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")
	startTime := time.Now()

	select {
	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, shutting down...\n")
		registry.RequestStop()
		task.Wait()
	case <-task.Done():
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.lastErr != "" {
		return errors.New(sink.lastErr)
	}
	if sink.err != nil {
		return fmt.Errorf("write error: %w", sink.err)
	}

	fmt.Fprintf(os.Stderr, "Capture complete: %d lines written in %v\n", sink.lines, time.Since(startTime).Round(time.Millisecond))
	return nil
}
