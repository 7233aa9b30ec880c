package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"voxsmith/internal/voices"
)

func newVoicesCommand(ctx *commandContext) *cobra.Command {
	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "Voice catalog utilities",
	}
	voicesCmd.AddCommand(newVoicesListCommand(ctx))
	voicesCmd.AddCommand(newVoicesRefreshCommand(ctx))
	return voicesCmd
}

func newVoicesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the cached voice catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := voices.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			catalog, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(catalog) == 0 {
				fmt.Fprintln(out, "Voice cache is empty; run `voxsmith voices refresh`.")
				return nil
			}

			rows := make([][]string, 0, len(catalog))
			for _, voice := range catalog {
				fetched := ""
				if !voice.FetchedAt.IsZero() {
					fetched = voice.FetchedAt.Local().Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{voice.Name, voice.ID, voice.Category, fetched})
			}
			fmt.Fprintln(out, renderTable([]string{"Name", "Voice ID", "Category", "Fetched"}, rows))
			return nil
		},
	}
}

func newVoicesRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the voice catalog from the synthesis service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.secretStore()
			if err != nil {
				return err
			}
			secret := store.Get()
			if secret == "" {
				return fmt.Errorf("no API credential configured; run `voxsmith auth set` first")
			}
			client, err := ctx.synthClient(secret)
			if err != nil {
				return err
			}
			voiceStore, err := voices.Open(cfg)
			if err != nil {
				return err
			}
			defer voiceStore.Close()

			count, err := voiceStore.Refresh(cmd.Context(), client)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cached %d voices.\n", count)
			return nil
		},
	}
}
