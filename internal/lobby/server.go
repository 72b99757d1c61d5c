package lobby

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/m4dpr0f/cjsr-sub002/internal/prompt"
	"github.com/m4dpr0f/cjsr-sub002/internal/race"
)

const (
	tickPeriod    = 250 * time.Millisecond
	minEntrants   = 2
	hostCountdown = 5 * time.Second
	writeTimeout  = 5 * time.Second
)

// Server hosts race rooms. Each room owns one session; the server's ticker
// goroutine is the only writer driving it, clients feed progress in through
// the session's own entry points.
type Server struct {
	picker   *prompt.Picker
	raceOpts race.Options
	upgrader websocket.Upgrader

	mu    sync.Mutex
	rooms map[string]*room
}

// NewServer creates a lobby server drawing prompts from the picker.
func NewServer(picker *prompt.Picker) *Server {
	return &Server{
		picker: picker,
		raceOpts: race.Options{
			MinEntrants: minEntrants,
			Countdown:   hostCountdown,
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		rooms: make(map[string]*room),
	}
}

// ListenAndServe blocks serving the lobby on addr.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	log.Printf("lobby listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	roomID := r.URL.Query().Get("room")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	if roomID == "" {
		roomID = "main"
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed: %v", err)
		return
	}

	rm, err := s.findOrCreateRoom(roomID)
	if err != nil {
		writeMessage(conn, &sync.Mutex{}, Message{Type: TypeError, Error: err.Error()})
		conn.Close()
		return
	}
	if err := rm.join(conn, name); err != nil {
		log.Printf("join rejected for %q in room %s: %v", name, roomID, err)
		writeMessage(conn, &sync.Mutex{}, Message{Type: TypeError, Error: err.Error()})
		conn.Close()
	}
}

func (s *Server) findOrCreateRoom(id string) (*room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rm, ok := s.rooms[id]; ok {
		return rm, nil
	}
	session, err := race.NewSession(s.picker.Pick(), nil, s.raceOpts)
	if err != nil {
		return nil, fmt.Errorf("create room session: %w", err)
	}
	rm := &room{
		id:      id,
		session: session,
		members: make(map[string]*member),
		done:    make(chan struct{}),
		onEmpty: func() { s.removeRoom(id) },
	}
	session.OnFinish(rm.broadcastFinish)
	s.rooms[id] = rm
	go rm.run()
	log.Printf("room %s created", id)
	return rm, nil
}

func (s *Server) removeRoom(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rm, ok := s.rooms[id]; ok {
		rm.stop()
		delete(s.rooms, id)
		log.Printf("room %s removed", id)
	}
}

type member struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	name    string
}

type room struct {
	id      string
	session *race.Session

	mu      sync.Mutex
	members map[string]*member

	done     chan struct{}
	stopOnce sync.Once
	onEmpty  func()
}

func (r *room) join(conn *websocket.Conn, name string) error {
	p, err := r.session.AddRemote(name)
	if err != nil {
		return err
	}
	m := &member{conn: conn, name: name}
	r.mu.Lock()
	r.members[p.ID] = m
	r.mu.Unlock()

	welcome := Message{
		Type: TypeWelcome,
		Room: r.id,
		Welcome: &Welcome{
			ParticipantID: p.ID,
			Text:          string(r.session.Target()),
		},
	}
	if err := writeMessage(conn, &m.writeMu, welcome); err != nil {
		r.leave(p.ID)
		return err
	}
	log.Printf("%s joined room %s as %s", name, r.id, p.ID)
	go r.readLoop(p.ID, m)
	return nil
}

func (r *room) readLoop(participantID string, m *member) {
	defer r.leave(participantID)
	for {
		var msg Message
		if err := m.conn.ReadJSON(&msg); err != nil {
			log.Printf("read from %s: %v", m.name, err)
			return
		}
		if msg.Type != TypeProgress || msg.Progress == nil {
			continue
		}
		ev := *msg.Progress
		// A client only ever speaks for itself.
		ev.ParticipantID = participantID
		r.session.ApplyRemote(ev)
	}
}

func (r *room) leave(participantID string) {
	r.mu.Lock()
	m, ok := r.members[participantID]
	if ok {
		delete(r.members, participantID)
	}
	empty := len(r.members) == 0
	r.mu.Unlock()
	if ok {
		m.conn.Close()
	}
	if empty {
		r.onEmpty()
	}
}

// run is the room's single timer: it ticks the session and fans the snapshot
// out to every member.
func (r *room) run() {
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case now := <-ticker.C:
			snap := r.session.Tick(now)
			r.broadcast(Message{Type: TypeState, Room: r.id, State: &snap})
			if snap.Phase == race.PhaseFinished {
				return
			}
		}
	}
}

func (r *room) stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.session.Teardown()
	})
}

func (r *room) broadcastFinish(ev race.FinishEvent) {
	r.broadcast(Message{Type: TypeFinish, Room: r.id, Finish: &ev})
}

func (r *room) broadcast(msg Message) {
	r.mu.Lock()
	members := make([]*member, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, m)
	}
	r.mu.Unlock()
	for _, m := range members {
		if err := writeMessage(m.conn, &m.writeMu, msg); err != nil {
			log.Printf("write to %s: %v", m.name, err)
		}
	}
}

func writeMessage(conn *websocket.Conn, mu *sync.Mutex, msg Message) error {
	mu.Lock()
	defer mu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
