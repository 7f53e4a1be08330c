// Command chatprobe exercises a running chat API from the terminal, or answers
// a message offline with the same responder the server uses.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/internal/config"
	"github.com/portfolio-chat/backend/internal/model/knowledge"
	"github.com/portfolio-chat/backend/internal/model/profile"
	"github.com/portfolio-chat/backend/internal/service/ai"
	"github.com/portfolio-chat/backend/internal/service/responder"
)

type options struct {
	server  string
	origin  string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "chatprobe",
		Short:        "Probe the portfolio chat API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("CHATPROBE_SERVER", "http://localhost:3001"), "chat API base URL")
	root.PersistentFlags().StringVar(&opts.origin, "origin", "", "Origin header to send (checked against ALLOWED_ORIGINS)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")

	var conversationID string
	sendCmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send one chat message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemote(cmd, opts, func(ctx context.Context, c *apiClient) (json.RawMessage, error) {
				return c.Send(ctx, strings.Join(args, " "), conversationID)
			})
		},
	}
	sendCmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "conversation id to continue")

	root.AddCommand(
		&cobra.Command{
			Use:   "health",
			Short: "Check the health endpoint",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runRemote(cmd, opts, func(ctx context.Context, c *apiClient) (json.RawMessage, error) {
					return c.Health(ctx)
				})
			},
		},
		sendCmd,
		&cobra.Command{
			Use:   "history <conversationId>",
			Short: "Print a conversation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runRemote(cmd, opts, func(ctx context.Context, c *apiClient) (json.RawMessage, error) {
					return c.History(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "clear <conversationId>",
			Short: "Delete a conversation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runRemote(cmd, opts, func(ctx context.Context, c *apiClient) (json.RawMessage, error) {
					return c.Clear(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "story <feature>",
			Short: "Generate user stories for a feature",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runRemote(cmd, opts, func(ctx context.Context, c *apiClient) (json.RawMessage, error) {
					return c.UserStory(ctx, strings.Join(args, " "))
				})
			},
		},
		newAskCmd(),
	)

	return root
}

// newAskCmd 离线回答：读取本地配置，直接调用 Responder。
func newAskCmd() *cobra.Command {
	var useModel bool

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer a message locally without a running server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			entries := knowledge.Seed()
			if cfg.Knowledge.File != "" {
				if entries, err = knowledge.LoadFile(cfg.Knowledge.File); err != nil {
					return err
				}
			}

			logger := zap.NewNop()
			completer := ai.Completer(ai.Disabled{})
			if useModel {
				completer = ai.New(cmd.Context(), cfg.AI, logger)
			}

			r := responder.New(knowledge.NewBase(entries), profile.Seed(), completer, cfg.AI.Timeout, logger)
			fmt.Fprintln(cmd.OutOrStdout(), r.Respond(cmd.Context(), strings.Join(args, " ")))
			return nil
		},
	}
	cmd.Flags().BoolVar(&useModel, "model", false, "fall back to the configured language model")
	return cmd
}

func runRemote(cmd *cobra.Command, opts *options, call func(context.Context, *apiClient) (json.RawMessage, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	raw, err := call(ctx, newAPIClient(opts.server, opts.origin, opts.timeout))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), raw)
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = w.Write(raw)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
