package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tabletcanvas/internal/capture"
	"tabletcanvas/internal/config"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture the newest screenshot into the diagrams folder",
	Long: `Capture copies the most recently modified screenshot into the diagrams
folder under a timestamped name and prints the Markdown embedding markup
to stdout, ready to paste into a notebook or document.`,
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().String("source", "", "capture source: auto, adb, screen or folder")
	viper.BindPFlag("capture_source", captureCmd.Flags().Lookup("source"))

	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg := config.FromViper(viper.GetViper())
	svc := capture.NewService(cfg)

	c, err := svc.Capture(cmd.Context())
	if errors.Is(err, capture.ErrNoScreenshot) {
		fmt.Fprintf(os.Stderr, "No screenshot found in %s.\n", cfg.ScreenshotDir)
		fmt.Fprintln(os.Stderr, "Take an OS screenshot as .png, .jpg or .jpeg, then try again.")
		return err
	}
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Saved %s (via %s)\n", c.DestPath, c.Source)
	fmt.Println(c.Markdown)
	return nil
}
