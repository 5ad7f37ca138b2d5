package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/shopbot"
	"github.com/aretw0/shopbot/internal/logging"
	"github.com/aretw0/shopbot/internal/presentation/tui"
	"github.com/aretw0/shopbot/pkg/adapters/console"
	"github.com/aretw0/shopbot/pkg/adapters/memory"
	"github.com/aretw0/shopbot/pkg/ports"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Chat with the bot in the terminal",
	Long: `Runs the conversation locally without Telegram or Redis.
By default the catalog is a built-in demo; --live uses the configured commerce backend.
Type a button number to press it, any other text to send it, /quit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		live, _ := cmd.Flags().GetBool("live")
		debug, _ := cmd.Flags().GetBool("debug")

		logger := logging.NewNop()
		if debug {
			logger = logging.New(slog.LevelDebug)
		}

		commerce, tokens, err := consoleBackend(cmd, live, logger)
		if err != nil {
			return err
		}

		interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		render := tui.Plain
		if interactive {
			tui.PrintBanner(os.Stdout, shopbot.Version)
			width := 80
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
				width = w - 4
			}
			render = tui.NewRenderer(width)
		}

		c := console.New(os.Stdin, os.Stdout,
			console.WithPrompt(interactive),
			console.WithRenderer(render),
		)
		bot, err := shopbot.New(memory.NewStore(), commerce, tokens, c, shopbot.WithLogger(logger))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if interactive {
			fmt.Println("Type /start to open the shop.")
		}
		if err := c.Run(ctx, bot); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().Bool("live", false, "Use the configured commerce backend instead of the demo catalog")
	consoleCmd.Flags().Bool("debug", false, "Log engine activity to stderr")
}

func consoleBackend(cmd *cobra.Command, live bool, logger *slog.Logger) (ports.Commerce, ports.TokenSource, error) {
	if !live {
		return memory.NewCatalog(memory.DemoProducts()), memory.StaticToken("offline"), nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Commerce.ClientID == "" {
		return nil, nil, errors.New("commerce.client_id is required with --live")
	}

	client, tokens := newCommerce(cfg, logger)
	return client, tokens, nil
}
