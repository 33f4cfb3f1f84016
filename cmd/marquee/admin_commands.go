package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/api"
)

func newScoresCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scores <title>",
		Short: "Show ranked match scores for a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return ctx.withClient(func(client *api.Client) error {
				resp, err := client.Scores(cmd.Context(), title)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(resp.Results) == 0 {
					fmt.Fprintf(out, "No candidates scored above the threshold for %q.\n", resp.Title)
					return nil
				}
				fmt.Fprintln(out, renderCandidates(resp.Results))
				return nil
			})
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				resp, err := client.Status(cmd.Context())
				if err != nil {
					return err
				}
				rows := [][]string{
					{"Running", strconv.FormatBool(resp.Running)},
					{"PID", strconv.Itoa(resp.PID)},
					{"Active sessions", strconv.Itoa(resp.ActiveSessions)},
					{"Tracked users", strconv.Itoa(resp.TrackedUsers)},
				}
				if resp.LockFilePath != "" {
					rows = append(rows, []string{"Lock file", resp.LockFilePath})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Field", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				resp, err := client.TestNotification(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case resp.Sent:
					fmt.Fprintln(out, "Test notification sent")
				case resp.Error != "":
					fmt.Fprintf(out, "Notification not sent: %s\n", resp.Error)
				default:
					fmt.Fprintln(out, "Notification not sent (no ntfy topic configured?)")
				}
				return nil
			})
		},
	}
}
