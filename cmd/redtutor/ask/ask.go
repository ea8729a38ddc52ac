// Package askcmder provides the ask command for one-shot questions about
// the novel.
package askcmder

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hongxuelab/redtutor/pkg/cliui"
	"github.com/hongxuelab/redtutor/pkg/config"
	"github.com/hongxuelab/redtutor/pkg/logger"
	"github.com/hongxuelab/redtutor/pkg/stream"
	"github.com/hongxuelab/redtutor/pkg/tutor"
)

const askLongDesc string = `Ask a single question about Dream of the Red Chamber.

The question is sent to the configured completion API and the full answer
is rendered as markdown once the stream finishes, followed by any sources
the model cited. Reasoning is stripped from the answer; pass --show-thinking
to print it separately.

Examples:
  redtutor ask "Why does Daiyu bury the flowers?"
  redtutor ask --model sonar-pro "Who is Grannie Liu?"`

const askShortDesc string = "Ask a single question and get a rendered answer"

// askFlags is the registry of flags the ask command binds into viper.
var askFlags = config.FlagSet{
	config.FlagBaseURL:      {Name: "base-url", ViperKey: "client.base_url", Description: "Completion API base URL"},
	config.FlagAPIKey:       {Name: "api-key", ViperKey: "client.api_key", Description: "Completion API key"},
	config.FlagModel:        {Name: "model", Shorthand: "m", ViperKey: "client.model", Description: "Model to request completions from"},
	config.FlagMaxTokens:    {Name: "max-tokens", ViperKey: "chat.max_tokens", Description: "Completion token limit"},
	config.FlagShowThinking: {Name: "show-thinking", ViperKey: "chat.show_thinking", Description: "Print the model's reasoning after the answer"},
}

var askFlagKeys = []string{
	config.FlagBaseURL,
	config.FlagAPIKey,
	config.FlagModel,
	config.FlagMaxTokens,
	config.FlagShowThinking,
}

type askCommander struct {
	baseURL      string
	apiKey       string
	model        string
	maxTokens    uint
	showThinking bool
	debug        bool

	v *viper.Viper
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, askFlags, askFlagKeys)
			cmder.v = v

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, askFlags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, askFlags, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, askFlags, config.FlagModel, &cmder.model)
	config.AddUintFlag(cmd, askFlags, config.FlagMaxTokens, &cmder.maxTokens)
	config.AddBoolFlag(cmd, askFlags, config.FlagShowThinking, &cmder.showThinking)

	return cmd
}

func (c *askCommander) run(cmd *cobra.Command, question string) error {
	log := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true), logger.WithWriter(os.Stderr))

	apiKey := c.v.GetString("client.api_key")
	if apiKey == "" {
		return errors.New("no API key configured: set client.api_key or REDTUTOR_CLIENT_API_KEY")
	}

	client := stream.NewClient(stream.Config{
		BaseURL: c.v.GetString("client.base_url"),
		APIKey:  apiKey,
		Logger:  log,
	})
	adapter := stream.NewAdapter(client)

	builder := &tutor.StudyPromptBuilder{}
	messages := builder.Build(question, nil)

	opts := stream.Options{
		Model:     c.v.GetString("client.model"),
		MaxTokens: c.v.GetInt("chat.max_tokens"),
	}
	if c.v.IsSet("chat.temperature") {
		temp := c.v.GetFloat64("chat.temperature")
		opts.Temperature = &temp
	}
	if c.v.GetBool("chat.start_in_thinking") {
		opts.StartInThinking = true
	}

	var result *stream.Completion
	err := cliui.Step(os.Stderr, "Consulting the commentaries", func() error {
		result = adapter.Complete(cmd.Context(), messages, opts)
		if !result.Success {
			return errors.New(result.ErrMessage)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("completing question: %w", err)
	}

	rendered, err := cliui.RenderMarkdown(result.Answer)
	if err != nil {
		// Fall back to the raw answer when the terminal renderer fails.
		rendered = result.Answer
	}
	fmt.Println(rendered)

	if c.v.GetBool("chat.show_thinking") {
		if result.Reasoning != "" {
			fmt.Println(cliui.ThinkingStyle.Render(result.Reasoning))
			fmt.Println()
		}
	}

	if sources := cliui.RenderCitations(result.Citations); sources != "" {
		fmt.Println(sources)
	}

	fmt.Printf("%s\n", cliui.StepStyle.Render(fmt.Sprintf(
		"%d chunks in %s", result.ChunkCount, cliui.FormatDuration(result.ResponseTime),
	)))

	return nil
}
