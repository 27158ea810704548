package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/horaculo/internal/config"
	"github.com/jask/horaculo/internal/secrets"
)

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings in the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings, env overrides included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", config.FilePath(flags.configPath))
			for _, key := range config.Keys() {
				v, _ := config.Get(cfg, key)
				fmt.Fprintf(out, "%s = %s\n", key, v)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write one setting to the config file",
		Long:  "Keys: " + strings.Join(config.Keys(), ", ") + ".\nThe API token is managed with `horaculo token set`.",
		Example: `  horaculo config set ui.default_mode crypto
  horaculo config set api.mock false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(strings.TrimSpace(args[0]))
			cfg, err := config.Apply(flags.configPath, key, args[1])
			if err != nil {
				return err
			}
			if cfg.API.Token != "" {
				moved, err := moveTokenToStore(cfg.API.Token)
				if err != nil {
					return err
				}
				if moved {
					fmt.Fprintln(cmd.OutOrStdout(), "Moved api.token to the secrets store.")
				}
			}
			path := config.FilePath(flags.configPath)
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			v, _ := config.Get(cfg, key)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", key, v, path)
			return err
		},
	})
	return cmd
}

// moveTokenToStore keeps a plaintext config token alive before Save drops it.
// A token already in the store wins at resolution time, so it is left alone.
func moveTokenToStore(token string) (bool, error) {
	store, err := secrets.NewStore("")
	if err != nil {
		return false, err
	}
	if _, err := store.FetchToken(secrets.APITokenName); err == nil {
		return false, nil
	} else if !errors.Is(err, secrets.ErrNotFound) {
		return false, fmt.Errorf("read stored token: %w", err)
	}
	if err := store.StoreToken(secrets.APITokenName, token); err != nil {
		return false, fmt.Errorf("store token: %w", err)
	}
	return true, nil
}
