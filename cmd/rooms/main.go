package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "rooms",
		Short:         "Live room and membership server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := newServeCmd(v)
	root.AddCommand(serve)
	root.AddCommand(newProbeCmd())

	// Running without a subcommand serves
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}
