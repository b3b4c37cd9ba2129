package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/spynners/spynners/internal/errmsg"
	"github.com/spynners/spynners/internal/playback"
)

func newPlayCmd() *cobra.Command {
	var trackID string

	cmd := &cobra.Command{
		Use:   "play <catalog.json | file | url>...",
		Short: "Play a catalog or a list of audio files and URLs",
		Long: `Play a catalog or a list of audio files and URLs.

A single .json argument (local path or http URL) is read as a catalog and
becomes the queue. Other arguments are queued in order: local files use
their embedded tags, http(s) and data: URIs are streamed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			client := &http.Client{Timeout: httpTimeout}
			items, err := loadItems(cmd.Context(), client, args)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpCatalogLoad, err))
			}
			if len(items) == 0 {
				return errors.New("nothing to play")
			}
			idx, err := startIndex(items, trackID)
			if err != nil {
				return err
			}

			logger.Info("starting playback", "tracks", len(items), "index", idx)
			rt := newRuntime(cfg, logger)
			return rt.run(cmd.Context(), func(ctx context.Context, c *playback.Coordinator) {
				c.PlayTrack(ctx, items[idx], items)
			})
		},
	}
	cmd.Flags().StringVar(&trackID, "id", "", "start with the catalog track with this id")
	return cmd
}

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Restore the last session, paused where it stopped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cfg.StateEnabled() {
				return errors.New("session persistence is disabled in the configuration")
			}

			rt := newRuntime(cfg, logger)
			if rt.state == nil {
				rt.close()
				return errors.New(errmsg.Format(errmsg.OpSessionRestore, errors.New("state database unavailable")))
			}
			saved, err := rt.state.GetSession()
			if err != nil {
				rt.close()
				return errors.New(errmsg.Format(errmsg.OpSessionRestore, err))
			}
			if saved == nil || saved.Current() == nil {
				rt.close()
				return errors.New("no saved session")
			}
			current := saved.Current()

			logger.Info("resuming session", "session", saved.SessionID, "index", saved.CurrentIndex, "position", saved.Position)
			return rt.run(cmd.Context(), func(ctx context.Context, c *playback.Coordinator) {
				c.Restore(ctx, *current, saved.Tracks, saved.Position)
			})
		},
	}
}
