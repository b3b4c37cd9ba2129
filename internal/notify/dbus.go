//go:build linux

package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// caller is the part of dbus.BusObject the notifier uses.
type caller interface {
	Call(method string, flags dbus.Flags, args ...any) *dbus.Call
}

type dbusNotifier struct {
	appName string
	obj     caller
}

// New returns a Notifier that talks to the session notification server
// under appName. Without a session bus it returns Nop.
func New(appName string) (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return Nop(), nil //nolint:nilerr // no session bus means no notifications
	}
	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	return &dbusNotifier{appName: appName, obj: obj}, nil
}

func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	call := n.obj.Call(notifyMethod, 0, notifyArgs(n.appName, notif)...)
	if call.Err != nil {
		return 0, fmt.Errorf("notify: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return id, nil
}

func (n *dbusNotifier) Close(id uint32) error {
	if err := n.obj.Call(closeMethod, 0, id).Err; err != nil {
		return fmt.Errorf("close notification %d: %w", id, err)
	}
	return nil
}
