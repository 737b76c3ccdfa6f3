package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	projectmodel "lexivo/internal/project/model"
)

// SlideSize is the edge of a square Instagram carousel image, in pixels.
const SlideSize = 1080

const (
	margin       = 90.0
	lineSpacing  = 1.4
	titleSize    = 64.0
	captionSize  = 28.0
	maxTitleRows = 3

	backgroundColor = "#FFFFFF"
	accentColor     = "#4F46E5"
	textColor       = "#111827"
	mutedColor      = "#6B7280"
)

// bodySizes are tried largest first until the content fits.
var bodySizes = []float64{48, 42, 36, 30, 26, 22}

// Renderer turns one slide into a PNG.
type Renderer interface {
	Render(slide projectmodel.Slide, projectTitle string, index, total int) ([]byte, error)
}

// SlideRenderer draws slides with the Go fonts. Parsed fonts are shared; faces
// are created per call since they are not safe for concurrent use.
type SlideRenderer struct {
	regular *truetype.Font
	bold    *truetype.Font
}

func NewSlideRenderer() (*SlideRenderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &SlideRenderer{regular: regular, bold: bold}, nil
}

func (r *SlideRenderer) face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingFull})
}

func (r *SlideRenderer) Render(slide projectmodel.Slide, projectTitle string, index, total int) ([]byte, error) {
	dc := gg.NewContext(SlideSize, SlideSize)
	dc.SetHexColor(backgroundColor)
	dc.Clear()

	dc.SetHexColor(accentColor)
	dc.DrawRectangle(0, 0, SlideSize, 12)
	dc.Fill()

	width := SlideSize - 2*margin

	caption := r.face(r.regular, captionSize)
	defer caption.Close()
	dc.SetFontFace(caption)
	dc.SetHexColor(mutedColor)
	dc.DrawStringAnchored(fitLine(dc, projectTitle, width), margin, margin, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%d / %d", index, total), SlideSize/2, SlideSize-margin, 0.5, 0.5)

	y := margin + 80
	if title := strings.TrimSpace(slide.Title); title != "" {
		titleFace := r.face(r.bold, titleSize)
		defer titleFace.Close()
		dc.SetFontFace(titleFace)
		dc.SetHexColor(textColor)
		lines := clipLines(dc, dc.WordWrap(title, width), maxTitleRows, width)
		for _, line := range lines {
			dc.DrawStringAnchored(line, margin, y, 0, 1)
			y += dc.FontHeight() * lineSpacing
		}
		y += 40
	}

	bottom := SlideSize - margin - 70
	if content := strings.TrimSpace(slide.Content); content != "" {
		var lines []string
		var bodyFace font.Face
		for i, size := range bodySizes {
			if bodyFace != nil {
				bodyFace.Close()
			}
			bodyFace = r.face(r.regular, size)
			dc.SetFontFace(bodyFace)
			lines = dc.WordWrap(content, width)
			rows := int((bottom - y) / (dc.FontHeight() * lineSpacing))
			if len(lines) <= rows || i == len(bodySizes)-1 {
				lines = clipLines(dc, lines, rows, width)
				break
			}
		}
		defer bodyFace.Close()
		dc.SetHexColor(textColor)
		for _, line := range lines {
			dc.DrawStringAnchored(line, margin, y, 0, 1)
			y += dc.FontHeight() * lineSpacing
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode slide %d: %w", index, err)
	}
	return buf.Bytes(), nil
}

// clipLines keeps at most rows lines and marks a cut with an ellipsis.
func clipLines(dc *gg.Context, lines []string, rows int, width float64) []string {
	if rows < 1 {
		return nil
	}
	if len(lines) <= rows {
		return lines
	}
	out := append([]string(nil), lines[:rows]...)
	out[rows-1] = fitLine(dc, out[rows-1]+"…", width)
	return out
}

// fitLine shortens s with an ellipsis until it fits in width.
func fitLine(dc *gg.Context, s string, width float64) string {
	if w, _ := dc.MeasureString(s); w <= width {
		return s
	}
	runes := []rune(strings.TrimSuffix(s, "…"))
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimSpace(string(runes)) + "…"
		if w, _ := dc.MeasureString(candidate); w <= width {
			return candidate
		}
	}
	return ""
}
