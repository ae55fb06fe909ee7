// Package ws pushes catalog events to connected clients so editors and
// dashboards can follow scans and link checks live.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lanyardhq/lanyard/internal/models"
	"github.com/lanyardhq/lanyard/internal/store"
)

type client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// trySend queues a message without blocking. A false return means the
// client's buffer is full. Sends to a closed client report true; the
// client is already being torn down.
func (c *client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Broadcaster fans catalog events out to websocket clients. It implements
// catalog.Events.
type Broadcaster struct {
	mu         sync.RWMutex
	clients    map[*client]bool
	db         *store.DB
	lastScanAt int64
	logger     *slog.Logger

	upgrader websocket.Upgrader
}

func NewBroadcaster(db *store.DB, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		clients: make(map[*client]bool),
		db:      db,
		logger:  logger,
		upgrader: websocket.Upgrader{
			// The API already allows any origin; ws follows.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler upgrades GET /ws requests and registers the client.
func (b *Broadcaster) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("ws upgrade failed", "error", err)
		return
	}

	c := b.addClient(conn)

	// Read pump: discard inbound messages, detect disconnect.
	go func() {
		defer b.removeClient(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (b *Broadcaster) addClient(conn *websocket.Conn) *client {
	c := newClient(conn)

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	count, err := b.db.NoteCount()
	if err != nil {
		b.logger.Warn("snapshot note count failed", "error", err)
	}
	snapshot := WSMessage{
		Type: MsgSnapshot,
		Payload: SnapshotPayload{
			NoteCount:  count,
			LastScanAt: b.lastScanAt,
		},
	}
	data, _ := json.Marshal(snapshot)
	c.trySend(data)

	return c
}

func (b *Broadcaster) removeClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()
}

// NoteAdded implements catalog.Events.
func (b *Broadcaster) NoteAdded(n *models.Note) {
	b.broadcast(WSMessage{Type: MsgNoteAdded, Payload: NotePayload{Note: n}})
}

// NoteUpdated implements catalog.Events.
func (b *Broadcaster) NoteUpdated(n *models.Note) {
	b.broadcast(WSMessage{Type: MsgNoteUpdated, Payload: NotePayload{Note: n}})
}

// NoteRemoved implements catalog.Events.
func (b *Broadcaster) NoteRemoved(relPath string) {
	b.broadcast(WSMessage{Type: MsgNoteRemoved, Payload: RemovedPayload{RelPath: relPath}})
}

// ScanDone implements catalog.Events.
func (b *Broadcaster) ScanDone(res *models.SyncResult) {
	b.mu.Lock()
	b.lastScanAt = time.Now().Unix()
	b.mu.Unlock()
	b.broadcast(WSMessage{Type: MsgScanDone, Payload: res})
}

// CheckDone announces a finished link check run.
func (b *Broadcaster) CheckDone(report *models.CheckReport) {
	// The full result list can be large; clients get the counts and fetch
	// details over the REST API if they want them.
	b.broadcast(WSMessage{Type: MsgCheckDone, Payload: models.CheckReport{
		Checked: report.Checked,
		Broken:  report.Broken,
		Skipped: report.Skipped,
	}})
}

func (b *Broadcaster) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("broadcast marshal error", "error", err)
		return
	}

	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	// Sends go through trySend so a client closed by its read pump in this
	// window is skipped instead of panicking the broadcast.
	for _, c := range clients {
		if !c.trySend(data) {
			// Client can't keep up, disconnect it
			b.logger.Warn("ws client too slow, disconnecting")
			b.removeClient(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
