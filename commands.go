package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/muednote/internal/client"
	"github.com/xiaot623/gogo/muednote/internal/domain"
)

const (
	defaultServerURL = "http://localhost:8787"
	defaultEventsURL = "ws://localhost:8787/v1/events"
)

func newCaptureCmd() *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:   "capture <text>",
		Short: "Capture one fragment and print the processed result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fragment := domain.Fragment{
				ID:        uuid.New().String(),
				Content:   args[0],
				Timestamp: uint64(time.Now().UnixMilli()),
			}

			if remote != "" {
				out, err := client.NewClient(remote).ProcessFragment(context.Background(), fragment)
				if err != nil {
					return err
				}
				return printJSON(cmd, out)
			}

			a, err := loadApp(context.Background())
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.svc.ProcessFragment(context.Background(), fragment)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().StringVar(&remote, "url", "", "send to a running server instead of the local store")
	return cmd
}

func newMessagesCmd() *cobra.Command {
	messages := &cobra.Command{Use: "messages", Short: "Inspect and delete captured messages"}

	messages.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the most recent messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(context.Background())
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.svc.FetchMessages(context.Background())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no messages")
				return nil
			}
			for _, m := range list {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.ID, m.CreatedAt.Format(time.RFC3339), m.Content)
			}
			return nil
		},
	})

	messages.AddCommand(&cobra.Command{
		Use:   "delete <message-id>",
		Short: "Delete a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(context.Background())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.DeleteMessage(context.Background(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	})

	return messages
}

func newListenCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print signals pushed by a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Connecting to %s...\n", url)
			return client.Listen(ctx, url, func(eventType string, _ []byte) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", time.Now().Format("15:04:05"), eventType)
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", defaultEventsURL, "event stream URL")
	return cmd
}

func newSignalCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:       "signal <toggle-console|toggle-dashboard>",
		Short:     "Fire a frontend signal, as a global hotkey does",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.SignalToggleConsole), string(domain.SignalToggleDashboard)},
		RunE: func(cmd *cobra.Command, args []string) error {
			sig := domain.Signal(args[0])
			if !sig.Valid() {
				return fmt.Errorf("%w: %q", domain.ErrUnknownSignal, args[0])
			}
			resp, err := client.NewClient(url).Signal(context.Background(), sig)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s delivered to %d frontend(s)\n", resp.Signal, resp.Delivered)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", defaultServerURL, "server base URL")
	return cmd
}
