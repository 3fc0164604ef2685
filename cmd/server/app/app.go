package app

import (
	"github.com/spf13/cobra"
)

const Name string = "device-inventory"

// NewCommand builds the root command. Running it without a subcommand serves
// the API.
func NewCommand() *cobra.Command {
	serve := NewServeCommand()
	root := &cobra.Command{
		Use:           Name,
		Short:         "REST inventory of network devices backed by MongoDB",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve)
	root.AddCommand(NewConfigCommand())
	return root
}
