package web

import (
	"github.com/teslashibe/alifbata/pkg/hub"
	"github.com/teslashibe/alifbata/pkg/session"
)

// hubEvents publishes session events to the per-session hub.
type hubEvents struct {
	hubs *hub.Registry
}

// Events returns a session.Publisher backed by hubs.
func Events(hubs *hub.Registry) session.Publisher {
	return hubEvents{hubs: hubs}
}

func (e hubEvents) Publish(id string, event session.Event) {
	e.hubs.BroadcastJSON(id, event)
}

func (e hubEvents) Close(id string) {
	e.hubs.Close(id)
}
