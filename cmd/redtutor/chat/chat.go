// Package chatcmder provides the chat command for interactive tutoring
// sessions about the novel.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hongxuelab/redtutor/pkg/cliui"
	"github.com/hongxuelab/redtutor/pkg/config"
	"github.com/hongxuelab/redtutor/pkg/dotdir"
	"github.com/hongxuelab/redtutor/pkg/llm"
	"github.com/hongxuelab/redtutor/pkg/logger"
	"github.com/hongxuelab/redtutor/pkg/stream"
	"github.com/hongxuelab/redtutor/pkg/tutor"
)

// debugLogFile is written inside the resolved .redtutor/ directory when the
// session runs with --debug.
const debugLogFile = "debug.log"

var (
	userPrompt  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	tutorPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("tutor> ")
)

const chatLongDesc string = `Start an interactive tutoring session.

The chat command streams answers token by token as the model produces them.
Reasoning inside <think> blocks is hidden by default; pass --show-thinking
to print it dimmed as it streams. Conversation history is kept for the
duration of the session so follow-up questions have context.

Examples:
  redtutor chat
  redtutor chat --model sonar-pro --show-thinking`

const chatShortDesc string = "Interactive tutoring session"

// chatFlags is the registry of flags the chat command binds into viper.
var chatFlags = config.FlagSet{
	config.FlagBaseURL:      {Name: "base-url", ViperKey: "client.base_url", Description: "Completion API base URL"},
	config.FlagAPIKey:       {Name: "api-key", ViperKey: "client.api_key", Description: "Completion API key"},
	config.FlagModel:        {Name: "model", Shorthand: "m", ViperKey: "client.model", Description: "Model to request completions from"},
	config.FlagMaxTokens:    {Name: "max-tokens", ViperKey: "chat.max_tokens", Description: "Completion token limit"},
	config.FlagShowThinking: {Name: "show-thinking", ViperKey: "chat.show_thinking", Description: "Print reasoning while streaming"},
}

var chatFlagKeys = []string{
	config.FlagBaseURL,
	config.FlagAPIKey,
	config.FlagModel,
	config.FlagMaxTokens,
	config.FlagShowThinking,
}

type chatCommander struct {
	baseURL      string
	apiKey       string
	model        string
	maxTokens    uint
	showThinking bool
	debug        bool
	configDir    string

	v      *viper.Viper
	logger *slog.Logger
	client *stream.Client
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cmder.configDir = configDir

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, chatFlags, chatFlagKeys)
			cmder.v = v

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, chatFlags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, chatFlags, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, chatFlags, config.FlagModel, &cmder.model)
	config.AddUintFlag(cmd, chatFlags, config.FlagMaxTokens, &cmder.maxTokens)
	config.AddBoolFlag(cmd, chatFlags, config.FlagShowThinking, &cmder.showThinking)

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true), logger.WithWriter(os.Stderr))

	if c.debug {
		// Keep a machine-readable copy of the session's debug output next to
		// the config so it survives the scrollback.
		if f, err := c.openDebugLog(); err == nil {
			defer f.Close()
			c.logger = logger.Multi(
				c.logger,
				logger.New(logger.WithDebug(true), logger.WithJSON(true), logger.WithWriter(f)),
			)
		} else {
			c.logger.Debug("could not open debug log", slog.Any("error", err))
		}
	}

	apiKey := c.v.GetString("client.api_key")
	if apiKey == "" {
		return fmt.Errorf("no API key configured: set client.api_key or REDTUTOR_CLIENT_API_KEY")
	}

	c.client = stream.NewClient(stream.Config{
		BaseURL: c.v.GetString("client.base_url"),
		APIKey:  apiKey,
		Logger:  c.logger,
	})

	model := c.v.GetString("client.model")
	showThinking := c.v.GetBool("chat.show_thinking")

	fmt.Println()
	fmt.Printf("  %s New session\n", cliui.DimStyle.Render("●"))
	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Model:"),
		cliui.NameStyle.Render(model),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /exit or Ctrl+D to quit."))

	builder := &tutor.StudyPromptBuilder{}
	var history []llm.Message

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		answer, err := c.sendAndStream(ctx, builder.Build(input, history), showThinking)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			continue
		}

		// Keep the exchange so follow-up questions have context
		history = append(history, llm.NewUserMessage(input))
		history = append(history, llm.NewAssistantMessage(answer))

		fmt.Println()
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// openDebugLog opens (appending) the session debug log in the resolved
// .redtutor/ directory.
func (c *chatCommander) openDebugLog() (*os.File, error) {
	target, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(target, debugLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}

// sendAndStream streams one completion to stdout, printing content deltas as
// they arrive and reasoning dimmed when enabled. Returns the full answer text.
func (c *chatCommander) sendAndStream(ctx context.Context, messages []llm.Message, showThinking bool) (string, error) {
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

	adapter := stream.NewAdapter(c.client)

	fmt.Print(tutorPrompt)

	var final stream.Chunk
	thinkingSeen := 0

	for chunk := range adapter.Stream(ctx, messages, opts) {
		if chunk.IsComplete {
			final = chunk
			break
		}

		if showThinking && len(chunk.ThinkingContent) > thinkingSeen {
			fmt.Print(cliui.ThinkingStyle.Render(chunk.ThinkingContent[thinkingSeen:]))
			thinkingSeen = len(chunk.ThinkingContent)
		}

		if chunk.Content != "" {
			fmt.Print(chunk.Content)
		}
	}

	if final.Err != nil {
		return "", final.Err
	}

	if sources := cliui.RenderCitations(final.Citations); sources != "" {
		fmt.Println()
		fmt.Print(sources)
	}

	return final.FullContent, nil
}
