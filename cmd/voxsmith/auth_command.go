package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voxsmith/internal/secrets"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the synthesis API credential",
	}
	authCmd.AddCommand(newAuthSetCommand(ctx))
	authCmd.AddCommand(newAuthShowCommand(ctx))
	authCmd.AddCommand(newAuthClearCommand(ctx))
	return authCmd
}

func newAuthSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set [key]",
		Short: "Store the API credential",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.secretStore()
			if err != nil {
				return err
			}

			var value string
			if len(args) == 1 {
				value = args[0]
			} else {
				fmt.Fprint(cmd.OutOrStdout(), "API key: ")
				reader := bufio.NewReader(cmd.InOrStdin())
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read API key: %w", err)
				}
				value = strings.TrimSpace(line)
			}

			if err := store.Set(value); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Credential stored.")
			return nil
		},
	}
}

func newAuthShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored credential, masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.secretStore()
			if err != nil {
				return err
			}
			value := store.Get()
			if value == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No credential stored.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), secrets.Mask(value))
			return nil
		},
	}
}

func newAuthClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.secretStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Credential cleared.")
			return nil
		},
	}
}
