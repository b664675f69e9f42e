package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time: -ldflags "-X main.Version=v1.2.3".
var Version = "dev"

const (
	envConfig     = "TORRENTBOT_CONFIG"
	defaultConfig = "./config.yaml"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: .env:", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "torrentbot",
		Short: "Render torrent status messages and manage notification preferences",
		Long: `torrentbot renders the chat messages of a Transmission bot (torrent lists,
details, completion notices, session settings) from JSON records, and reads
or writes the stored notification preferences.`,
		SilenceUsage: true,
	}
	root.Version = Version

	def := os.Getenv(envConfig)
	if def == "" {
		def = defaultConfig
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", def, "config file (json or yaml); env "+envConfig)

	root.AddCommand(newRenderCommand(&cfgPath))
	root.AddCommand(newPrefsCommand(&cfgPath))
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of torrentbot",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
