package notify

import (
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notifyMethod = "org.freedesktop.Notifications.Notify"
	closeMethod  = "org.freedesktop.Notifications.CloseNotification"
	desktopEntry = "spynners"
)

// notifyArgs builds the Notify call arguments:
// app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout.
func notifyArgs(appName string, n Notification) []any {
	return []any{
		appName,
		n.ReplacesID,
		n.AppIcon,
		n.Summary,
		n.Body,
		[]string{},
		hints(n),
		expireTimeout(n.Timeout),
	}
}

func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(desktopEntry),
	}
	if n.Category != "" {
		h["category"] = dbus.MakeVariant(n.Category)
	}
	if n.ImagePath != "" {
		h["image-path"] = dbus.MakeVariant(n.ImagePath)
	}
	return h
}

func expireTimeout(d time.Duration) int32 {
	if d < 0 {
		return -1
	}
	return int32(d / time.Millisecond)
}
