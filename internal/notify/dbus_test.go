//go:build linux

package notify

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spynners/spynners/internal/playback"
)

type recordedCall struct {
	method string
	args   []any
}

// fakeBus answers Notify with id and records every call.
type fakeBus struct {
	calls []recordedCall
	id    uint32
	err   error
}

func (f *fakeBus) Call(method string, _ dbus.Flags, args ...any) *dbus.Call {
	f.calls = append(f.calls, recordedCall{method: method, args: args})
	if f.err != nil {
		return &dbus.Call{Err: f.err}
	}
	return &dbus.Call{Body: []any{f.id}}
}

func TestDBusNotifier_PreviewWithArtwork(t *testing.T) {
	bus := &fakeBus{id: 7}
	tn := NewTrackNotifier(&dbusNotifier{appName: "Beats", obj: bus}, Options{}, quietLogger())
	item := vipItem()
	item.ArtworkURI = "file:///art/vip.png"

	tn.TrackChanged(playback.TrackChange{Current: &item})

	require.Len(t, bus.calls, 1)
	call := bus.calls[0]
	assert.Equal(t, "org.freedesktop.Notifications.Notify", call.method)
	require.Len(t, call.args, 8)
	assert.Equal(t, "Beats", call.args[0])
	assert.Equal(t, uint32(0), call.args[1])
	assert.Equal(t, "audio-x-generic", call.args[2])
	assert.Equal(t, "VIP Beat", call.args[3])
	assert.Equal(t, "Nova\nPreview 0:30-1:30", call.args[4])
	assert.Equal(t, []string{}, call.args[5])
	assert.Equal(t, int32(5000), call.args[7])

	hints, ok := call.args[6].(map[string]dbus.Variant)
	require.True(t, ok)
	assert.Equal(t, byte(UrgencyLow), hints["urgency"].Value())
	assert.Equal(t, "x-gnome.music", hints["category"].Value())
	assert.Equal(t, "file:///art/vip.png", hints["image-path"].Value())
	assert.Equal(t, "spynners", hints["desktop-entry"].Value())

	// The next track replaces the notification by ID.
	tn.TrackChanged(playback.TrackChange{Previous: &item, Current: &item})
	require.Len(t, bus.calls, 2)
	assert.Equal(t, uint32(7), bus.calls[1].args[1])

	tn.Dismiss()
	require.Len(t, bus.calls, 3)
	assert.Equal(t, "org.freedesktop.Notifications.CloseNotification", bus.calls[2].method)
	assert.Equal(t, []any{uint32(7)}, bus.calls[2].args)
}

func TestDBusNotifier_HintsOmittedWhenEmpty(t *testing.T) {
	bus := &fakeBus{id: 1}
	n := &dbusNotifier{appName: "Beats", obj: bus}

	_, err := n.Notify(Notification{Summary: "plain", Timeout: -1})
	require.NoError(t, err)

	hints := bus.calls[0].args[6].(map[string]dbus.Variant)
	assert.NotContains(t, hints, "category")
	assert.NotContains(t, hints, "image-path")
	assert.Equal(t, int32(-1), bus.calls[0].args[7])
}

func TestDBusNotifier_CallError(t *testing.T) {
	busErr := errors.New("no notification server")
	n := &dbusNotifier{appName: "Beats", obj: &fakeBus{err: busErr}}

	id, err := n.Notify(Notification{Summary: "x"})
	assert.Zero(t, id)
	assert.ErrorIs(t, err, busErr)
	assert.ErrorIs(t, n.Close(3), busErr)
}
