package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Save the username used for the journal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := ctx.identity()
			if err != nil {
				return err
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				fmt.Fprint(cmd.OutOrStdout(), "Username: ")
				reader := bufio.NewReader(cmd.InOrStdin())
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read username: %w", err)
				}
				name = strings.TrimSpace(line)
			}

			username, err := identity.Login(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", username)
			return nil
		},
	}
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved username",
		Long: "Forget the saved username. The local journal is kept for the next " +
			"login unless --forget is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := ctx.identity()
			if err != nil {
				return err
			}
			username, ok := identity.Username()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}

			if forget {
				s, err := ctx.openSession(cmd.Context(), true)
				if err != nil {
					return err
				}
				ferr := s.Forget()
				if cerr := s.Close(); ferr == nil {
					ferr = cerr
				}
				if ferr != nil {
					return ferr
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted the local journal for %s\n", username)
			}

			if err := identity.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
	cmd.Flags().BoolVar(&forget, "forget", false, "Also delete the local journal mirror for this user")
	return cmd
}
