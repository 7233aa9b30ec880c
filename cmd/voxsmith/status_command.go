package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"voxsmith/internal/deps"
	"voxsmith/internal/secrets"
	"voxsmith/internal/voices"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, credential, and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			credential := secrets.Mask("")
			if store, err := ctx.secretStore(); err == nil {
				credential = secrets.Mask(store.Get())
			}

			voiceCount := "0"
			cacheState := "empty"
			if store, err := voices.Open(cfg); err == nil {
				if catalog, listErr := store.List(cmd.Context()); listErr == nil {
					voiceCount = strconv.Itoa(len(catalog))
				}
				maxAge := ctx.voiceCacheMaxAge()
				if stale, staleErr := store.Stale(cmd.Context(), maxAge); staleErr == nil {
					if stale {
						cacheState = fmt.Sprintf("stale (older than %s)", formatAge(maxAge))
					} else {
						cacheState = "fresh"
					}
				}
				store.Close()
			}

			rows := [][]string{
				{"Credential", credential},
				{"Voice", cfg.ElevenLabs.Voice},
				{"Voice cache", voiceCount + " voices, " + cacheState},
				{"Output directory", cfg.Paths.OutputDir},
				{"State directory", cfg.Paths.StateDir},
				{"Log directory", cfg.Paths.LogDir},
			}
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg.Transcode.FFmpegBinary)) {
				value := "available (" + status.Command + ")"
				if !status.Available {
					value = status.Detail
				}
				rows = append(rows, []string{status.Name, value})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Item", "Value"}, rows))
			return nil
		},
	}
}

func formatAge(age time.Duration) string {
	if age%(24*time.Hour) == 0 {
		return strconv.Itoa(int(age/(24*time.Hour))) + "d"
	}
	return age.String()
}
