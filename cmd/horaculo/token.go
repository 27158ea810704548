package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/horaculo/internal/secrets"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the analysis API token",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [token]",
		Short: "Store the API token (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("token is empty")
			}
			store, err := secrets.NewStore("")
			if err != nil {
				return err
			}
			if err := store.StoreToken(secrets.APITokenName, token); err != nil {
				return fmt.Errorf("store token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Token stored.")
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := secrets.NewStore("")
			if err != nil {
				return err
			}
			if err := store.DeleteToken(secrets.APITokenName); err != nil {
				return fmt.Errorf("clear token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
			return err
		},
	})
	return cmd
}
