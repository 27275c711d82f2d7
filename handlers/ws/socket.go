package ws

import (
	"canvas-earth/hub"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

// canvasRoom is the single room every connected client sits in: there is one
// shared canvas and no per-subscriber filtering.
const canvasRoom = socketio.Room("canvas")

// eventName is the socket.io event change envelopes are emitted under.
const eventName = "canvas-event"

// SetupSocketIO builds the realtime endpoint. Every connecting client joins
// the canvas room immediately; one pump goroutine subscribes to the hub and
// re-emits each change event to the room. Late joiners see no history: they
// are expected to fetch the current viewport over HTTP.
func SetupSocketIO(h *hub.Hub) *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})
	srv := socketio.NewServer(nil, opts)

	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}
		socket.Join(canvasRoom)
		logrus.WithField("socket_id", socket.Id()).Debug("Client joined canvas room")

		socket.On("disconnect", func(datas ...any) {
			socket.RemoveAllListeners("")
			socket.Disconnect(true)
		})
	})

	sub := h.Subscribe()
	go func() {
		for event := range sub.Events() {
			if err := srv.To(canvasRoom).Emit(eventName, event); err != nil {
				// Fire-and-forget: a failed emit is never retried.
				logrus.WithError(err).Debug("Failed to emit canvas event")
			}
		}
	}()

	return srv
}
