package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/api"
)

func newQueryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "query <title>",
		Short: "Check whether a movie is already in the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := ctx.user()
			if err != nil {
				return err
			}
			title := strings.Join(args, " ")
			return ctx.withClient(func(client *api.Client) error {
				resp, err := client.Query(cmd.Context(), user, title)
				if err != nil {
					return err
				}
				printAction(cmd, resp)
				return nil
			})
		},
	}
}

func newRequestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "request <title>",
		Short: "Request a movie to be added",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := ctx.user()
			if err != nil {
				return err
			}
			title := strings.Join(args, " ")
			return ctx.withClient(func(client *api.Client) error {
				resp, err := client.Request(cmd.Context(), user, title)
				if err != nil {
					return err
				}
				printAction(cmd, resp)
				return nil
			})
		},
	}
}

func newSelectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select <session-id> <option>",
		Short: "Resolve an ambiguous request by picking an option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := ctx.user()
			if err != nil {
				return err
			}
			option, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("option must be a number: %q", args[1])
			}
			// Options are shown 1-based; the API is 0-based.
			return ctx.withClient(func(client *api.Client) error {
				resp, err := client.Select(cmd.Context(), user, args[0], option-1)
				if err != nil {
					return err
				}
				printAction(cmd, resp)
				return nil
			})
		},
	}
}

func printAction(cmd *cobra.Command, resp *api.ActionResponse) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, resp.Message)

	if len(resp.Candidates) > 1 {
		fmt.Fprintln(out, renderCandidates(resp.Candidates))
	}
	if resp.Session != nil {
		fmt.Fprintln(out, renderSession(resp.Session))
		fmt.Fprintf(out, "Choose with: marquee select %s <option>\n", resp.Session.ID)
	}
}

func renderCandidates(candidates []api.CandidateView) string {
	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Title,
			formatYear(c.Year),
			fmt.Sprintf("%.2f", c.Score),
		})
	}
	return renderTable(
		[]string{"#", "Title", "Year", "Score"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
	)
}

func renderSession(session *api.SessionView) string {
	rows := make([][]string, 0, len(session.Options))
	for i, option := range session.Options {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			option.Title,
			formatYear(option.Year),
		})
	}
	return renderTable(
		[]string{"#", "Title", "Year"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight},
	)
}

func formatYear(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}
