// Package redtutorcmder
package redtutorcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/hongxuelab/redtutor/cmd/redtutor/ask"
	chatcmder "github.com/hongxuelab/redtutor/cmd/redtutor/chat"
	configcmder "github.com/hongxuelab/redtutor/cmd/redtutor/config"
	versioncmder "github.com/hongxuelab/redtutor/cmd/version"
)

const redtutorLongDesc string = `Redtutor is an AI reading companion for Dream of the Red Chamber.

Ask questions about the novel using:
  redtutor ask       Ask a single question and get a rendered answer
  redtutor chat      Start an interactive tutoring session`

const redtutorShortDesc string = "Redtutor - Dream of the Red Chamber reading companion"

func NewRedtutorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redtutor",
		Short: redtutorShortDesc,
		Long:  redtutorLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .redtutor/ config directory")

	// Add subcommands
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
