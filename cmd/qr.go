package cmd

import (
	"fmt"
	"os"

	"visitor-registration/internal/config"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

var qrCmd = &cobra.Command{
	Use:   "qr <url> [file]",
	Short: "Generate a QR code PNG for a URL",
	Long:  `Generate a QR code image, for example for the registration kiosk poster. Writes to stdout unless a file is given.`,
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		png, err := qrcode.Encode(args[0], qrcode.Medium, config.QR_IMAGE_SIZE)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate QR code: %v\n", err)
			os.Exit(1)
		}

		if len(args) > 1 {
			if err := os.WriteFile(args[1], png, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write file: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("QR code written to %s\n", args[1])
			return
		}

		os.Stdout.Write(png)
	},
}

func init() {
	rootCmd.AddCommand(qrCmd)
}
