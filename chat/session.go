package chat

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 1 << 20
	sendBufferSize = 256
)

// Conn abstracts the transport so tests can drive sessions without a real
// websocket.
type Conn interface {
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
	Close(code string)
}

type websocketConn struct {
	socket *websocket.Conn
}

func NewWebsocketConn(conn *websocket.Conn) Conn {
	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &websocketConn{socket: conn}
}

func (wc *websocketConn) Write(data []byte) error {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *websocketConn) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *websocketConn) Ping() error {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return wc.socket.WriteMessage(websocket.PingMessage, nil)
}

func (wc *websocketConn) Close(code string) {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, code))
	wc.socket.Close()
}

// Session binds one live connection to (at most) one authenticated user and
// a current-room pointer. userID and roomID are owned by the hub goroutine;
// the pumps never touch them.
type Session struct {
	hub     *Hub
	conn    Conn
	send    chan []byte
	limiter *rate.Limiter
	ip      string

	userID string
	roomID string
}

func newSession(hub *Hub, conn Conn, ip string) *Session {
	return &Session{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(5, 10),
		ip:      ip,
	}
}

// ReadPump decodes inbound envelopes and forwards them to the hub. It exits
// on transport error, handing the session to the hub for teardown.
func (s *Session) ReadPump() {
	defer func() {
		s.hub.unregister <- s
	}()
	for {
		data, err := s.conn.Read()
		if err != nil {
			return
		}
		if !s.limiter.Allow() {
			continue
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Type == "" {
			continue
		}
		s.hub.inbound <- envelope{sess: s, event: ev}
	}
}

// WritePump drains the send channel onto the connection and keeps the
// transport alive with pings. When the hub closes the channel, remaining
// queued events are flushed before the close frame goes out.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close("")
	}()
	for {
		select {
		case data, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.Write(data); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.conn.Ping(); err != nil {
				return
			}
		}
	}
}
