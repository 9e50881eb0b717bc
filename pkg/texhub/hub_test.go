package texhub

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	return img
}

func TestTextureRoute(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Router(func() gin.H { return gin.H{"state": "idle"} }))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/texture/standard")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status before publish = %d; want 404", resp.StatusCode)
	}

	if err := h.Publish(KindStage, "standard", "gridlines", testImage()); err != nil {
		t.Fatal(err)
	}
	if _, ok := h.Texture("standard"); ok {
		t.Error("stage frames must not replace the served texture")
	}
	if err := h.Publish(KindFinal, "standard", "", testImage()); err != nil {
		t.Fatal(err)
	}

	resp, err = http.Get(srv.URL + "/texture/standard")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decoding texture: %v", err)
	}
	if r, _, _, _ := img.At(1, 1).RGBA(); r != 0xffff {
		t.Errorf("texture pixel red = %x; want ffff", r)
	}

	resp2, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	body, _ := io.ReadAll(resp2.Body)
	if !strings.Contains(string(body), `"state":"idle"`) || !strings.Contains(string(body), `"standard"`) {
		t.Errorf("status body = %s", body)
	}
}

func TestWebsocketPublish(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Router(nil))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := h.Publish(KindStage, "satellite", "magnitudes", testImage()); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	op, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if op != websocket.TextMessage {
		t.Fatalf("header op = %d; want text", op)
	}
	var hdr Header
	if err := json.Unmarshal(data, &hdr); err != nil {
		t.Fatal(err)
	}
	if hdr.Kind != KindStage || hdr.Category != "satellite" || hdr.Stage != "magnitudes" || hdr.Width != 8 || hdr.Height != 4 {
		t.Errorf("header = %+v", hdr)
	}

	op, data, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if op != websocket.BinaryMessage {
		t.Fatalf("body op = %d; want binary", op)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("body is not a PNG: %v", err)
	}

	h.Close()
	if h.Clients() != 0 {
		t.Errorf("Clients after Close = %d", h.Clients())
	}
}
