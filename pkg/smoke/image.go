package smoke

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomedium"
)

const (
	footerHeight = 32
	footerMargin = 12
)

var (
	footerBackground = color.RGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 0xff}
	footerRule       = color.RGBA{R: 0xd1, G: 0xd5, B: 0xdb, A: 0xff}
	footerText       = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}
	footerMuted      = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
)

// Label identifies a checked page in an imprinted screenshot.
type Label struct {
	Name string
	Path string
}

// Image is PNG encoded screenshot data.
type Image []byte

// Imprint returns the screenshot with a footer band appended that shows the
// page name on the left and its path on the right.
func (img Image) Imprint(label Label) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	face, err := loadFont()
	if err != nil {
		return nil, err
	}

	w := src.Bounds().Dx()
	top := float64(src.Bounds().Dy())
	dc := gg.NewContext(w, src.Bounds().Dy()+footerHeight)
	dc.DrawImage(src, 0, 0)

	dc.SetColor(footerBackground)
	dc.DrawRectangle(0, top, float64(w), footerHeight)
	dc.Fill()
	dc.SetColor(footerRule)
	dc.SetLineWidth(1)
	dc.DrawLine(0, top+0.5, float64(w), top+0.5)
	dc.Stroke()

	dc.SetFontFace(face)
	mid := top + footerHeight/2
	if label.Name != "" {
		dc.SetColor(footerText)
		dc.DrawStringAnchored(label.Name, footerMargin, mid, 0, 0.35)
	}
	if label.Path != "" {
		dc.SetColor(footerMuted)
		dc.DrawStringAnchored(label.Path, float64(w-footerMargin), mid, 1, 0.35)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	fontOnce sync.Once
	fontTT   *truetype.Font
	fontErr  error
)

func loadFont() (font.Face, error) {
	fontOnce.Do(func() {
		fontTT, fontErr = truetype.Parse(gomedium.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse font: %w", fontErr)
	}
	return truetype.NewFace(fontTT, &truetype.Options{Size: 13}), nil
}
