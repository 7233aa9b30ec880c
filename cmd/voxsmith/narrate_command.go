package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"voxsmith/internal/audio"
	"voxsmith/internal/config"
	"voxsmith/internal/deck/pptx"
	"voxsmith/internal/run"
	"voxsmith/internal/voices"
)

func newNarrateCommand(ctx *commandContext) *cobra.Command {
	var slidesFlag string
	var voiceFlag string
	var audioOnly bool

	cmd := &cobra.Command{
		Use:   "narrate <deck.pptx>",
		Short: "Synthesize and attach narration for a deck's slides",
		Long: `Narrate converts each selected slide's speaker notes to speech,
normalizes the audio, and writes one WAV file per slide. The slide
selection accepts comma-separated numbers and ranges, e.g. "1,3-5".

Attaching audio requires an editable document host; against a plain
.pptx file use --audio-only and insert the generated files manually.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if audioOnly {
				cfg.Run.AudioOnly = true
			}
			if strings.TrimSpace(voiceFlag) != "" {
				cfg.ElevenLabs.Voice = voiceFlag
			}

			store, err := ctx.secretStore()
			if err != nil {
				return err
			}
			secret := store.Get()
			if secret == "" {
				return fmt.Errorf("no API credential configured; run `voxsmith auth set` first")
			}

			logger, err := ctx.logger(secret)
			if err != nil {
				return err
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

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			voiceID, err := voiceStore.ResolveFresh(runCtx, client, cfg.ElevenLabs.Voice, ctx.voiceCacheMaxAge())
			if err != nil {
				return err
			}

			deckPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			d, err := pptx.Open(deckPath)
			if err != nil {
				return fmt.Errorf("open deck: %w", err)
			}
			defer d.Close()

			events := make(chan run.Event, 16)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				out := cmd.OutOrStdout()
				for event := range events {
					line := fmt.Sprintf("slide %d: %s", event.Slide, event.Status)
					if event.Message != "" {
						line += " (" + event.Message + ")"
					}
					fmt.Fprintln(out, line)
				}
			}()

			ctrl, err := run.New(run.Options{
				Config:     cfg,
				Deck:       d,
				Selection:  slidesFlag,
				Secret:     secret,
				VoiceID:    voiceID,
				Synth:      client,
				Normalizer: audio.NewNormalizer(cfg.Transcode.FFmpegBinary, time.Duration(cfg.Transcode.Timeout)*time.Second),
				Logger:     logger,
				Events:     events,
			})
			if err != nil {
				close(events)
				wg.Wait()
				return err
			}

			summary, runErr := ctrl.Run(runCtx)
			close(events)
			wg.Wait()
			if runErr != nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSummary(summary))
			return nil
		},
	}

	cmd.Flags().StringVarP(&slidesFlag, "slides", "s", "", `Slide selection, e.g. "1,3-5" (default: all slides)`)
	cmd.Flags().StringVar(&voiceFlag, "voice", "", "Voice name (overrides configuration)")
	cmd.Flags().BoolVar(&audioOnly, "audio-only", false, "Write WAV files without touching the document")
	return cmd
}

func renderSummary(summary *run.Summary) string {
	rows := make([][]string, 0, len(summary.Outcomes))
	for _, out := range summary.Outcomes {
		detail := out.Reason
		if out.Err != nil {
			detail = out.Err.Error()
		}
		rows = append(rows, []string{
			strconv.Itoa(out.Slide),
			string(out.Status),
			detail,
		})
	}
	result := renderTable([]string{"Slide", "Status", "Detail"}, rows, 1)
	result += fmt.Sprintf("\nProcessed %d, skipped %d, failed %d.",
		summary.Processed, summary.Skipped, summary.Failed)
	if summary.Cancelled {
		result += " Run was cancelled."
	}
	result += fmt.Sprintf("\nManifest: %s", summary.ManifestPath)
	return result
}
