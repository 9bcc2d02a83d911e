// Package main is the entry point for the canvas CLI: a small companion
// tool that pulls tablet sketches into a project's diagrams folder and
// hands back ready-to-paste Markdown.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tabletcanvas/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the canvas CLI.
var rootCmd = &cobra.Command{
	Use:   "canvas",
	Short: "Pull tablet sketches into your project as Markdown diagrams",
	Long: `canvas copies the most recent screenshot of your tablet drawing into a
diagrams/ folder and prints ready-to-paste Markdown embedding markup.

Run "canvas serve" for the web UI (embedded tablet view plus a Capture
button and an MCP endpoint for agents), or "canvas capture" for a one-shot
capture from the terminal.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./canvas.yaml or ~/.config/canvas/canvas.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("canvas")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "canvas"))
		}
	}

	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix("CANVAS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
