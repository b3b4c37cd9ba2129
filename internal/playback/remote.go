package playback

import (
	"context"

	"github.com/spynners/spynners/internal/remote"
)

// BindRemote routes remote transport gestures to the coordinator's entry
// points. Stop ends the session. The returned func removes the handlers.
func (c *Coordinator) BindRemote(bus *remote.Bus) (unbind func()) {
	routes := map[remote.Event]remote.Handler{
		remote.EventPlay:     func(remote.Command) { c.Play() },
		remote.EventPause:    func(remote.Command) { c.Pause() },
		remote.EventStop:     func(remote.Command) { c.ClosePlayer() },
		remote.EventNext:     func(remote.Command) { c.PlayNext(context.Background()) },
		remote.EventPrevious: func(remote.Command) { c.PlayPrevious(context.Background()) },
		remote.EventSeek:     func(cmd remote.Command) { c.SeekTo(cmd.Position) },
	}

	ids := make(map[remote.Event]remote.HandlerID, len(routes))
	for event, h := range routes {
		ids[event] = bus.On(event, h)
	}
	return func() {
		for event, id := range ids {
			bus.Off(event, id)
		}
	}
}
