// Package notify announces track changes as freedesktop desktop
// notifications.
package notify

import "time"

// Urgency is the freedesktop urgency hint.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// CategoryMusic groups track notifications with other media players.
const CategoryMusic = "x-gnome.music"

// Notification is one desktop notification.
type Notification struct {
	Summary string
	Body    string
	// AppIcon is an icon name or a path.
	AppIcon string
	// ImagePath is artwork sent as the image-path hint; a file:// URI or path.
	ImagePath string
	Category  string
	Urgency   Urgency
	// Timeout below zero leaves expiry to the server; zero never expires.
	Timeout    time.Duration
	ReplacesID uint32
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify shows n and returns its server ID. A notifier without a
	// notification server returns 0 and no error.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) (uint32, error) { return 0, nil }

func (nopNotifier) Close(uint32) error { return nil }

// Nop returns a Notifier that shows nothing.
func Nop() Notifier { return nopNotifier{} }
