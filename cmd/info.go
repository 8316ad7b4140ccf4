/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	serial "github.com/FelipeSilva10/longboard-IDE"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display what the system knows about a serial port, including the USB
vendor/product IDs that identify the board's USB bridge (CH340, CP210x,
FTDI, or the native USB of an Uno R3/Leonardo).

Examples:
  longboard info /dev/ttyUSB0
  longboard info /dev/ttyACM0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info, err := serial.GetPortInfo(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting port info: %v\n", err)
			os.Exit(1)
		}
		printPortInfo(info)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printPortInfo(info *serial.PortInfo) {
	fmt.Printf("Port Information: %s\n\n", info.Path)
	fmt.Printf("  Name:        %s\n", info.Name)
	fmt.Printf("  Description: %s\n", info.Description)
	if info.Subsystem != "" {
		fmt.Printf("  Subsystem:   %s\n", info.Subsystem)
	}
	fmt.Printf("  USB:         %t\n", info.IsUSB())

	if info.VendorID == "" && info.ProductID == "" {
		return
	}

	fmt.Println("\nUSB Device Information:")
	fields := []struct {
		label string
		value string
	}{
		{"Vendor ID:   ", info.VendorID},
		{"Product ID:  ", info.ProductID},
		{"Serial:      ", info.SerialNumber},
		{"Interface:   ", info.InterfaceNumber},
		{"Bus:         ", info.BusNumber},
		{"Device:      ", info.DeviceNumber},
		{"Manufacturer:", info.Manufacturer},
		{"Product:     ", info.Product},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Printf("  %s %s\n", f.label, f.value)
		}
	}
}
