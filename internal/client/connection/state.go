package connection

import "github.com/gorilla/websocket"

// state закрытое множество состояний соединения
type state interface {
	name() string
}

type disconnected struct{}

type connecting struct{}

type connected struct {
	ws *websocket.Conn
}

// closing ждет завершения close-handshake; checks считает тики health-проверки
type closing struct {
	ws     *websocket.Conn
	checks int
}

func (disconnected) name() string { return "disconnected" }
func (connecting) name() string   { return "connecting" }
func (connected) name() string    { return "connected" }
func (closing) name() string      { return "closing" }

// socketOf returns the websocket held by the state, nil for states without one.
func socketOf(s state) *websocket.Conn {
	switch st := s.(type) {
	case connected:
		return st.ws
	case closing:
		return st.ws
	default:
		return nil
	}
}
