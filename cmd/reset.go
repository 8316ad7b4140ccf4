/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	serial "github.com/FelipeSilva10/longboard-IDE"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset <port>",
	Short: "Reset a board",
	Long: `Reset a board without unplugging it.

By default this performs a USB-level reset of the board's USB bridge, which
recovers a bridge that hung during an upload. The device re-enumerates
afterwards, so the port path may change; --serial finds the device by USB
serial number instead.

--dtr instead pulses the DTR line, the same auto-reset arduino-cli uses
before an upload. The microcontroller restarts; the USB device does not.

Requirements for a USB reset:
- usbreset utility must be installed (from usbutils package)
- Root/sudo permissions required for USB operations

Examples:
  longboard reset /dev/ttyUSB0 --dtr
  sudo longboard reset /dev/ttyUSB0
  sudo longboard reset --serial A50285BI`,
	Args: func(cmd *cobra.Command, args []string) error {
		serialFlag, _ := cmd.Flags().GetString("serial")
		if serialFlag == "" && len(args) != 1 {
			return errors.New("requires either a port path argument or --serial flag")
		}
		if serialFlag != "" && len(args) > 0 {
			return errors.New("cannot specify both port path and --serial flag")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		serialFlag, _ := cmd.Flags().GetString("serial")
		dtr, _ := cmd.Flags().GetBool("dtr")
		pulse, _ := cmd.Flags().GetDuration("pulse")

		if dtr {
			portPath := ""
			if len(args) == 1 {
				portPath = args[0]
			} else {
				var err error
				if portPath, err = serial.FindPortBySerial(serialFlag); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
			}
			if err := pulseDTR(portPath, pulse); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Pulsed DTR on %s, board is restarting\n", portPath)
			return
		}

		// Check if usbreset is available
		if !serial.IsUSBResetAvailable() {
			fmt.Fprintln(os.Stderr, "Error: usbreset utility not available")
			fmt.Fprintln(os.Stderr, "Install with: sudo apt-get install usbutils")
			os.Exit(1)
		}

		var err error
		if serialFlag != "" {
			fmt.Printf("Resetting USB device with serial: %s\n", serialFlag)
			err = serial.ResetUSBDeviceBySerial(serialFlag)
		} else {
			fmt.Printf("Resetting USB device: %s\n", args[0])
			err = serial.ResetUSBDevice(args[0])
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if errors.Is(err, serial.ErrUSBInfoNotAvailable) {
				fmt.Fprintln(os.Stderr, "This device does not appear to be a USB device, try --dtr")
			}
			os.Exit(1)
		}

		fmt.Println("USB device reset successfully")
		fmt.Println("Device will re-enumerate (port path may change)")
		fmt.Println("\nUse 'longboard ports' to see updated device list")
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().StringP("serial", "s", "", "Reset device by USB serial number")
	resetCmd.Flags().Bool("dtr", false, "Pulse DTR instead of resetting the USB device")
	resetCmd.Flags().Duration("pulse", 100*time.Millisecond, "How long DTR is held low")
}

// pulseDTR drops DTR for d and raises it again
func pulseDTR(portPath string, d time.Duration) error {
	port, err := serial.Open(portPath, serialOptions()...)
	if err != nil {
		return err
	}
	defer port.Close()

	if err := port.SetDTR(false); err != nil {
		return fmt.Errorf("clearing DTR: %w", err)
	}
	time.Sleep(d)
	if err := port.SetDTR(true); err != nil {
		return fmt.Errorf("setting DTR: %w", err)
	}
	return nil
}
