package lobby

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/m4dpr0f/cjsr-sub002/internal/race"
)

// Event is one inbound message from the host, delivered on the client's
// event channel. Exactly one of the payload fields is set.
type Event struct {
	Welcome *Welcome
	State   *race.Snapshot
	Finish  *race.FinishEvent
	Err     error
}

// Client is the joining side of a networked race. It feeds inbound state to
// the TUI and carries the local player's progress back to the host.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	events  chan Event

	closeOnce sync.Once
}

// Dial connects to a lobby and joins a room under the given display name.
func Dial(addr, roomID, name string) (*Client, error) {
	if name == "" {
		return nil, fmt.Errorf("lobby: display name is required")
	}
	u := url.URL{
		Scheme:   "ws",
		Host:     addr,
		Path:     "/ws",
		RawQuery: url.Values{"room": {roomID}, "name": {name}}.Encode(),
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("lobby: dial %s: %w", addr, err)
	}
	c := &Client{
		conn:   conn,
		events: make(chan Event, 16),
	}
	go c.readLoop()
	return c, nil
}

// Events returns the inbound event stream. The channel closes after a
// terminal error or Close.
func (c *Client) Events() <-chan Event {
	return c.events
}

// SendProgress reports the local player's progress to the host.
func (c *Client) SendProgress(ev race.ProgressEvent) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(Message{Type: TypeProgress, Progress: &ev})
}

// Close tears down the connection; safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.events <- Event{Err: err}
			return
		}
		switch msg.Type {
		case TypeWelcome:
			if msg.Welcome != nil {
				c.events <- Event{Welcome: msg.Welcome}
			}
		case TypeState:
			if msg.State != nil {
				c.events <- Event{State: msg.State}
			}
		case TypeFinish:
			if msg.Finish != nil {
				c.events <- Event{Finish: msg.Finish}
			}
		case TypeError:
			c.events <- Event{Err: fmt.Errorf("lobby: %s", msg.Error)}
			return
		}
	}
}
