// Package texhub serves rendered overlay textures over HTTP and pushes stage
// progress to websocket clients as the pipeline produces it.
package texhub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 16
)

type Kind string

const (
	KindStage Kind = "stage"
	KindFinal Kind = "final"
)

// Header precedes every binary PNG frame on the websocket.
type Header struct {
	Kind     Kind      `json:"kind"`
	Category string    `json:"category"`
	Stage    string    `json:"stage,omitempty"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	At       time.Time `json:"at"`
}

type frame struct {
	header []byte
	body   []byte
}

type client struct {
	wc   *websocket.Conn
	send chan frame
}

type Hub struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[*client]struct{}
	textures map[string][]byte
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		clients:  make(map[*client]struct{}),
		textures: make(map[string][]byte),
	}
}

// Publish encodes img and fans it out to every connected client. Final
// textures are also kept for GET /texture/:category. A client whose queue is
// full is disconnected.
func (h *Hub) Publish(kind Kind, category, stage string, img image.Image) error {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding %s texture: %w", category, err)
	}
	b := img.Bounds()
	header, err := json.Marshal(Header{
		Kind:     kind,
		Category: category,
		Stage:    stage,
		Width:    b.Dx(),
		Height:   b.Dy(),
		At:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	f := frame{header: header, body: buf.Bytes()}

	h.mu.Lock()
	defer h.mu.Unlock()
	if kind == KindFinal {
		h.textures[category] = f.body
	}
	for c := range h.clients {
		select {
		case c.send <- f:
		default:
			log.Printf("[HUB] dropping slow client %s", c.wc.RemoteAddr())
			h.removeLocked(c)
		}
	}
	return nil
}

// Texture returns the last final PNG published for category.
func (h *Hub) Texture(category string) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.textures[category]
	return b, ok
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) categories() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.textures))
	for k := range h.textures {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// ServeWS upgrades the request and blocks until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	wc, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HUB] websocket upgrade failed: %v", err)
		return
	}
	c := &client{wc: wc, send: make(chan frame, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	log.Printf("[HUB] client connected: %s", wc.RemoteAddr())

	go c.writeLoop()
	c.readLoop()
	h.remove(c)
	log.Printf("[HUB] client disconnected: %s", wc.RemoteAddr())
}

// readLoop discards client messages; it exists to notice disconnects.
func (c *client) readLoop() {
	for {
		if _, _, err := c.wc.NextReader(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	defer c.wc.Close()
	for {
		select {
		case f, ok := <-c.send:
			if !ok {
				_ = c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
				_ = c.wc.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteMessage(websocket.TextMessage, f.header); err != nil {
				return
			}
			if err := c.wc.WriteMessage(websocket.BinaryMessage, f.body); err != nil {
				return
			}
		case <-t.C:
			_ = c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Router returns the gin engine exposing the hub. status is optional and is
// merged into GET /status.
func (h *Hub) Router(status func() gin.H) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/texture/:category", func(c *gin.Context) {
		b, ok := h.Texture(c.Param("category"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no texture for category " + c.Param("category")})
			return
		}
		c.Data(http.StatusOK, "image/png", b)
	})
	r.GET("/status", func(c *gin.Context) {
		out := gin.H{"clients": h.Clients(), "categories": h.categories()}
		if status != nil {
			for k, v := range status() {
				out[k] = v
			}
		}
		c.JSON(http.StatusOK, out)
	})
	r.GET("/ws", func(c *gin.Context) {
		h.ServeWS(c.Writer, c.Request)
	})
	return r
}
