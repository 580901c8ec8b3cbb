package qrcode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	goqrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/zombor/paydesk/internal/agent"
)

const (
	// CanvasWidth and CanvasHeight are the dimensions of the downloaded image
	CanvasWidth  = 400
	CanvasHeight = 500

	// QRSize is the edge of the square QR bitmap at the top of the canvas
	QRSize = 400

	// Title is the first caption line under the code
	Title = "Scan to Register"
)

var (
	foreground = color.Black
	background = color.White
)

// captionLine is one line of text drawn under the code
type captionLine struct {
	text     string
	bold     bool
	size     float64
	baseline int
}

type faceKey struct {
	bold bool
	size float64
}

var (
	faceMu    sync.Mutex
	faceCache = make(map[faceKey]font.Face)
)

// face returns a cached Go font face. Faces are not safe for concurrent use, so
// callers hold faceMu while drawing.
func face(bold bool, size float64) (font.Face, error) {
	key := faceKey{bold: bold, size: size}
	if f, ok := faceCache[key]; ok {
		return f, nil
	}

	ttf := goregular.TTF
	if bold {
		ttf = gobold.TTF
	}
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}
	faceCache[key] = f
	return f, nil
}

// captions returns the four caption lines in decreasing font size
func captions(a *agent.Agent) []captionLine {
	return []captionLine{
		{text: Title, bold: true, size: 24, baseline: QRSize + 28},
		{text: a.Name, size: 20, baseline: QRSize + 52},
		{text: a.Location, size: 16, baseline: QRSize + 73},
		{text: "ID: " + a.ID, size: 14, baseline: QRSize + 92},
	}
}

// Render encodes content as a QR code and composes it with the agent caption onto a
// CanvasWidth x CanvasHeight PNG.
func Render(content string, a *agent.Agent) ([]byte, error) {
	code, err := goqrcode.New(content, goqrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encoding qr code: %w", err)
	}
	code.ForegroundColor = foreground
	code.BackgroundColor = background
	code.DisableBorder = false

	canvas := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	qr := code.Image(QRSize)
	offset := image.Pt((CanvasWidth-qr.Bounds().Dx())/2, 0)
	draw.Draw(canvas, qr.Bounds().Add(offset), qr, qr.Bounds().Min, draw.Src)

	if err := drawCaptions(canvas, captions(a)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func drawCaptions(dst draw.Image, lines []captionLine) error {
	faceMu.Lock()
	defer faceMu.Unlock()

	for _, line := range lines {
		f, err := face(line.bold, line.size)
		if err != nil {
			return err
		}
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(foreground),
			Face: f,
		}
		width := d.MeasureString(line.text).Ceil()
		x := (CanvasWidth - width) / 2
		if x < 0 {
			x = 0
		}
		d.Dot = fixed.P(x, line.baseline)
		d.DrawString(line.text)
	}
	return nil
}
