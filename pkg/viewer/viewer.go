// Package viewer is the ebiten front end: it shows the latest composited
// raster and animates the live indicators on top of it.
package viewer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/sudorandom/quake-stencil/pkg/geo"
	"github.com/sudorandom/quake-stencil/pkg/indicator"
	"github.com/sudorandom/quake-stencil/pkg/pipeline"
	"github.com/sudorandom/quake-stencil/pkg/quakeengine"
)

const pulsePeriod = 1500 * time.Millisecond

var (
	ColorDay   = color.RGBA{255, 200, 40, 255}
	ColorNight = color.RGBA{255, 50, 50, 255}
)

type Viewer struct {
	Width, Height int
	// CaptureDir receives a PNG of the screen whenever F12 is pressed.
	CaptureDir string

	engine     *quakeengine.Engine
	raster     *image.RGBA
	texture    *ebiten.Image
	ringImage  *ebiten.Image
	glowImage  *ebiten.Image
	monoSource *text.GoTextFaceSource
	capture    bool
}

func New(engine *quakeengine.Engine, width, height int) *Viewer {
	m, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		log.Printf("[VIEWER] loading font: %v", err)
	}
	v := &Viewer{Width: width, Height: height, engine: engine, monoSource: m}
	size := 128
	if width > 2000 {
		size = 256
	}
	v.ringImage = ebiten.NewImage(size, size)
	v.ringImage.WritePixels(ringPixels(size, width > 2000))
	v.glowImage = ebiten.NewImage(size, size)
	v.glowImage.WritePixels(glowPixels(size))
	return v
}

func (v *Viewer) Update() error {
	v.engine.SyncIndicators()
	if last := v.engine.Last(); last != nil && last != v.raster {
		if v.texture != nil {
			v.texture.Deallocate()
		}
		v.raster = last
		v.texture = ebiten.NewImageFromImage(last)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		v.capture = true
	}
	return nil
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.texture != nil {
		op := &ebiten.DrawImageOptions{}
		tb := v.texture.Bounds()
		op.GeoM.Scale(float64(v.Width)/float64(tb.Dx()), float64(v.Height)/float64(tb.Dy()))
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(v.texture, op)
	}

	now := time.Now()
	for _, h := range v.engine.Indicators().Snapshot() {
		v.drawIndicator(screen, h, now)
	}
	v.drawStatus(screen)

	if v.capture {
		v.capture = false
		v.captureFrame(screen, now)
	}
}

func (v *Viewer) Layout(w, h int) (int, int) { return v.Width, v.Height }

// pulse is one texture draw: radius in screen pixels and alpha.
type pulse struct {
	radius float64
	alpha  float64
	glow   bool
}

// pulses lays out the draws for one indicator style at elapsed time since
// the indicator was created.
func pulses(style indicator.Style, elapsed time.Duration, maxRadius float64) []pulse {
	phase := math.Mod(elapsed.Seconds(), pulsePeriod.Seconds()) / pulsePeriod.Seconds()
	switch style {
	case indicator.StyleAnimatedRing:
		return []pulse{{radius: 3 + phase*maxRadius, alpha: (1 - phase) * 0.8}}
	case indicator.StyleStaticRing:
		return []pulse{{radius: maxRadius * 0.6, alpha: 0.8}}
	case indicator.StyleGlowingSphere:
		breath := 0.5 + 0.5*math.Sin(phase*2*math.Pi)
		return []pulse{{radius: maxRadius * 0.4, alpha: 0.4 + 0.4*breath, glow: true}}
	case indicator.StyleRadiatingRings:
		out := make([]pulse, 0, 3)
		for i := 0; i < 3; i++ {
			p := math.Mod(phase+float64(i)/3, 1)
			out = append(out, pulse{radius: 3 + p*maxRadius, alpha: (1 - p) * 0.6})
		}
		return out
	}
	return nil
}

func (v *Viewer) drawIndicator(screen *ebiten.Image, h indicator.Handle, now time.Time) {
	x, y := geo.Project(h.Lat, h.Lon, float64(v.Width), float64(v.Height))
	maxRadius := 40.0
	if v.Width > 2000 {
		maxRadius = 80
	}
	c := ColorNight
	if h.Daylit {
		c = ColorDay
	}
	r, g, b := float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0

	op := &ebiten.DrawImageOptions{}
	op.Blend = ebiten.BlendLighter
	for _, p := range pulses(h.Style, now.Sub(h.CreatedAt), maxRadius) {
		img := v.ringImage
		if p.glow {
			img = v.glowImage
		}
		imgW := float64(img.Bounds().Dx())
		halfW := imgW / 2
		scale := p.radius / imgW * 2.0
		op.GeoM.Reset()
		op.GeoM.Translate(-halfW, -halfW)
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(x, y)
		op.ColorScale.Reset()
		op.ColorScale.Scale(float32(r*p.alpha), float32(g*p.alpha), float32(b*p.alpha), float32(p.alpha))
		screen.DrawImage(img, op)
	}
}

func (v *Viewer) drawStatus(screen *ebiten.Image) {
	if v.monoSource == nil {
		return
	}
	fontSize, margin := 16.0, 20.0
	if v.Width > 2000 {
		fontSize, margin = 32.0, 40.0
	}
	state, stage := v.engine.PipelineState()
	line := fmt.Sprintf("%d events  %d indicators  pipeline %s", len(v.engine.Events()), v.engine.Indicators().Len(), state)
	if state == pipeline.StateRunning {
		line += " (" + stage.String() + ")"
	}
	face := &text.GoTextFace{Source: v.monoSource, Size: fontSize}
	op := &text.DrawOptions{}
	op.GeoM.Translate(margin, float64(v.Height)-margin-fontSize)
	op.ColorScale.Scale(1, 1, 1, 0.8)
	text.Draw(screen, line, face, op)
}

func (v *Viewer) captureFrame(img *ebiten.Image, timestamp time.Time) {
	dir := v.CaptureDir
	if dir == "" {
		dir = "captures"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[VIEWER] Error creating capture directory: %v", err)
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("quake-%s.png", timestamp.Format("20060102-150405")))

	rgba := image.NewRGBA(img.Bounds())
	img.ReadPixels(rgba.Pix)

	go func() {
		f, err := os.Create(path)
		if err != nil {
			log.Printf("[VIEWER] Error creating capture file: %v", err)
			return
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Printf("[VIEWER] Error closing capture file: %v", err)
			}
		}()
		if err := png.Encode(f, rgba); err != nil {
			log.Printf("[VIEWER] Error encoding capture: %v", err)
			return
		}
		log.Printf("[VIEWER] Captured frame: %s", path)
	}()
}
