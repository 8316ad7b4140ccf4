/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	serial "github.com/FelipeSilva10/longboard-IDE"
	"github.com/FelipeSilva10/longboard-IDE/internal/bridge"
	"github.com/FelipeSilva10/longboard-IDE/internal/events"
	"github.com/FelipeSilva10/longboard-IDE/internal/flash"
	"github.com/FelipeSilva10/longboard-IDE/internal/monitor"
	"github.com/FelipeSilva10/longboard-IDE/internal/session"
)

// signalContext is cancelled on Ctrl+C or SIGTERM, which also kills a running arduino-cli
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serialOptions() []serial.Option {
	return []serial.Option{
		serial.WithBaudRate(cfg.Serial.BaudRate),
		serial.WithReadTimeout(cfg.Serial.ReadTimeout),
		serial.WithFlushOnOpen(),
	}
}

func monitorConfig() monitor.Config {
	return monitor.Config{
		LineLimit:    cfg.Monitor.LineLimit,
		EmitInterval: cfg.Monitor.EmitInterval,
		IdleInterval: cfg.Monitor.IdleInterval,
	}
}

func boardTable() (flash.BoardTable, error) {
	return cfg.BoardTable()
}

func newOrchestrator(registry *session.Registry, logger *zap.SugaredLogger) (*flash.Orchestrator, error) {
	boards, err := boardTable()
	if err != nil {
		return nil, err
	}
	return flash.New(registry, flash.NewArduinoCLI(cfg.Flash.CLIPath),
		flash.WithWorkspace(cfg.Workspace()),
		flash.WithBoards(boards),
		flash.WithHandoff(cfg.Handoff()),
		flash.WithSettleDelay(cfg.Flash.SettleDelay),
		flash.WithReleaseTimeout(cfg.Flash.ReleaseTimeout),
		flash.WithLogger(logger.Named("flash")),
	), nil
}

// newBridge wires a registry shared by the flasher and the monitor
func newBridge(sink events.Sink, logger *zap.SugaredLogger) (*bridge.Bridge, error) {
	registry := session.NewRegistry()
	orch, err := newOrchestrator(registry, logger)
	if err != nil {
		return nil, err
	}
	return bridge.New(registry, orch, sink,
		bridge.WithOpener(monitor.SerialOpener(serialOptions()...)),
		bridge.WithMonitorConfig(monitorConfig()),
		bridge.WithMonitorSettle(cfg.Monitor.SettleDelay),
		bridge.WithLogger(logger.Named("bridge")),
	), nil
}
