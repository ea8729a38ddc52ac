// Package configcmder provides the config command for managing persistent
// redtutor configuration stored in the .redtutor/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent redtutor configuration.

Configuration is stored as config.toml in the .redtutor/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  client.base_url, client.api_key, client.model,
  chat.max_tokens, chat.temperature,
  chat.show_thinking, chat.start_in_thinking

Use subcommands to get, set, or list configuration values:
  redtutor config set <key> <value>    Set a configuration value
  redtutor config get <key>            Get a configuration value
  redtutor config list                 List all configuration values

Examples:
  redtutor config set client.api_key pplx-...
  redtutor config set client.model sonar-reasoning-pro
  redtutor config get client.model
  redtutor config list`

const configShortDesc string = "Manage persistent redtutor configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
