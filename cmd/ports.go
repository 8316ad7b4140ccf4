/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"

	serial "github.com/FelipeSilva10/longboard-IDE"
	"github.com/FelipeSilva10/longboard-IDE/internal/bridge"
	"github.com/FelipeSilva10/longboard-IDE/internal/session"
	"github.com/FelipeSilva10/longboard-IDE/internal/tui/styles"
)

// portsCmd represents the ports command
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports a board can be connected to",
	Long: `List USB serial ports (ttyUSB*, ttyACM* and anything sysfs reports as USB)
in lexicographic order. These are the ports an Arduino or ESP32 shows up on.

Use --all to include built-in UARTs such as ttyS* and ttyAMA*.

Examples:
  longboard ports
  longboard ports --table
  longboard ports --all --table`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		all, _ := cmd.Flags().GetBool("all")
		tableFormat, _ := cmd.Flags().GetBool("table")

		var ports []string
		var err error
		if all {
			ports, err = serial.ListPorts()
		} else {
			ports, err = bridge.New(session.NewRegistry(), nil, nil,
				bridge.WithLogger(log.Named("bridge"))).GetAvailablePorts()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return
		}

		if tableFormat {
			fmt.Println(renderPortTable(describePorts(ports)))
		} else {
			renderSimple(ports)
		}
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)

	portsCmd.Flags().BoolP("all", "a", false, "Include non-USB serial ports")
	portsCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

func describePorts(ports []string) []serial.PortInfo {
	infos := make([]serial.PortInfo, 0, len(ports))
	for _, p := range ports {
		info, err := serial.GetPortInfo(p)
		if err != nil {
			infos = append(infos, serial.PortInfo{Path: p, Description: fmt.Sprintf("Error: %v", err)})
			continue
		}
		infos = append(infos, *info)
	}
	return infos
}

const (
	columnKeyPort    = "port"
	columnKeyType    = "type"
	columnKeyUSBID   = "usbid"
	columnKeyProduct = "product"
	columnKeySerial  = "serial"
)

// renderPortTable renders the ports as a static table
func renderPortTable(infos []serial.PortInfo) string {
	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", 16),
		table.NewColumn(columnKeyType, "Type", 22),
		table.NewColumn(columnKeyUSBID, "VID:PID", 11),
		table.NewColumn(columnKeyProduct, "Product", 28),
		table.NewColumn(columnKeySerial, "Serial", 22),
	}

	rows := make([]table.Row, 0, len(infos))
	for _, info := range infos {
		usbID := ""
		if info.VendorID != "" {
			usbID = info.VendorID + ":" + info.ProductID
		}
		product := strings.TrimSpace(info.Manufacturer + " " + info.Product)
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort:    info.Path,
			columnKeyType:    info.Description,
			columnKeyUSBID:   usbID,
			columnKeyProduct: product,
			columnKeySerial:  info.SerialNumber,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(styles.HeaderStyle).
		WithBaseStyle(lipgloss.NewStyle().Align(lipgloss.Left))

	return fmt.Sprintf("Found %d serial port(s):\n\n%s", len(infos), t.View())
}

// renderSimple renders the port list in simple text format
func renderSimple(ports []string) {
	for _, port := range ports {
		fmt.Println(port)
	}
}
