package cli

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/spynners/spynners/internal/track"
	"github.com/spynners/spynners/internal/ui/playerbar"
)

func newInspectCmd() *cobra.Command {
	var playableOnly bool

	cmd := &cobra.Command{
		Use:   "inspect <catalog.json | url>",
		Short: "List catalog tracks with playability and preview windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: httpTimeout}
			items, err := loadCatalog(cmd.Context(), client, args[0])
			if err != nil {
				return err
			}
			if playableOnly {
				items = track.Playable(items)
			}
			writeInspect(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().BoolVar(&playableOnly, "playable", false, "only list tracks with an audio source")
	return cmd
}

func writeInspect(w io.Writer, items []track.Item) {
	rows := lo.Map(items, func(it track.Item, i int) []string {
		return []string{
			strconv.Itoa(i + 1),
			it.ID,
			it.Title,
			it.DisplayArtist(),
			yesNo(it.IsPlayable()),
			previewLabel(it),
		}
	})

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "ID", "TITLE", "ARTIST", "PLAYABLE", "PREVIEW").
		Rows(rows...)

	playable := len(track.Playable(items))
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d tracks, %d playable\n", len(items), playable)
}

// previewLabel describes the window the player would use for it.
func previewLabel(it track.Item) string {
	w, ok := it.Window()
	switch {
	case !ok && it.PreviewRestricted:
		return "restricted, full track"
	case !ok:
		return "-"
	case it.PreviewRestricted:
		return fmt.Sprintf("%s-%s (cutoff)", playerbar.Clock(w.Start), playerbar.Clock(w.End))
	default:
		return fmt.Sprintf("starts %s", playerbar.Clock(w.Start))
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
