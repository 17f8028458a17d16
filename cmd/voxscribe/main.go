// Command voxscribe serves and runs speaker-attributed transcription.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/voxscribe/version"
)

type globalFlags struct {
	configFile string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Speaker-attributed audio transcription",
		Long:          "voxscribe diarizes an audio file, transcribes it, attributes every segment to a speaker and optionally summarizes the result.",
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "path to config.yml (default: ./cmd/voxscribe/config.yml)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "path to a .env file")

	root.AddCommand(newServeCmd(&flags))
	root.AddCommand(newTranscribeCmd(&flags))
	root.AddCommand(newAPIKeyCmd())
	root.AddCommand(newTokenCmd(&flags))
	return root
}
