package notify

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spynners/spynners/internal/mpris"
	"github.com/spynners/spynners/internal/playback"
	"github.com/spynners/spynners/internal/track"
)

const (
	defaultTimeout = 5 * time.Second
	appIcon        = "audio-x-generic"
)

// Options set the track notification policy.
type Options struct {
	// Timeout is how long a playable track stays on screen. Zero takes the
	// default; below zero leaves expiry to the server.
	Timeout time.Duration
}

// TrackNotifier shows one notification per track change. Each new
// notification replaces the previous one. Tracks without audio are
// announced at normal urgency and stay until dismissed.
type TrackNotifier struct {
	notifier Notifier
	timeout  time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	lastID uint32
}

// NewTrackNotifier wraps n.
func NewTrackNotifier(n Notifier, opts Options, logger *slog.Logger) *TrackNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	return &TrackNotifier{
		notifier: n,
		timeout:  opts.Timeout,
		logger:   logger.With("component", "notify"),
	}
}

// TrackChanged notifies about e.Current. Failures are logged.
func (t *TrackNotifier) TrackChanged(e playback.TrackChange) {
	if e.Current == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.notification(*e.Current)
	n.ReplacesID = t.lastID
	id, err := t.notifier.Notify(n)
	if err != nil {
		t.logger.Debug("notification failed", "track", e.Current.ID, "error", err)
		return
	}
	t.lastID = id
}

// Dismiss closes the last notification.
func (t *TrackNotifier) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastID == 0 {
		return
	}
	if err := t.notifier.Close(t.lastID); err != nil {
		t.logger.Debug("close notification failed", "error", err)
	}
	t.lastID = 0
}

func (t *TrackNotifier) notification(item track.Item) Notification {
	n := Notification{
		Summary:   item.Title,
		AppIcon:   appIcon,
		ImagePath: trackImage(item),
		Category:  CategoryMusic,
		Urgency:   UrgencyLow,
		Timeout:   t.timeout,
	}

	var body []string
	if artist := item.DisplayArtist(); artist != "" {
		body = append(body, artist)
	}
	if w, ok := item.Window(); ok && item.PreviewRestricted {
		body = append(body, fmt.Sprintf("Preview %s-%s", clock(w.Start), clock(w.End)))
	}
	if !item.IsPlayable() {
		body = append(body, "No audio available")
		n.Urgency = UrgencyNormal
		n.Timeout = 0
	}
	n.Body = strings.Join(body, "\n")
	return n
}

// trackImage returns a file:// URI for local artwork, falling back to a
// cover file next to a local track. Remote artwork is not passed on.
func trackImage(item track.Item) string {
	if p := track.LocalPath(item.ArtworkURI); p != "" {
		return fileURI(p)
	}
	if p := track.LocalPath(item.AudioSourceURI); p != "" {
		if art := mpris.FindAlbumArt(p); art != "" {
			return fileURI(art)
		}
	}
	return ""
}

func fileURI(path string) string {
	return (&url.URL{Scheme: "file", Path: path}).String()
}

func clock(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
