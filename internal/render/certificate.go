// Package render draws certificates as PNG images
package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	width  = 1600
	height = 1131
	margin = 60
)

var (
	navy  = color.NRGBA{R: 0x12, G: 0x2B, B: 0x4A, A: 0xFF}
	green = color.NRGBA{R: 0x2E, G: 0x9E, B: 0x5B, A: 0xFF}
	grey  = color.NRGBA{R: 0x5F, G: 0x6B, B: 0x7A, A: 0xFF}
	paper = color.NRGBA{R: 0xFC, G: 0xFB, B: 0xF7, A: 0xFF}
)

// CertificateRenderer draws certificates with the embedded Go fonts
type CertificateRenderer struct {
	title   font.Face
	heading font.Face
	body    font.Face
	small   font.Face
}

// NewCertificateRenderer parses the embedded fonts once
func NewCertificateRenderer() (*CertificateRenderer, error) {
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}

	return &CertificateRenderer{
		title:   newFace(bold, 72),
		heading: newFace(bold, 56),
		body:    newFace(regular, 32),
		small:   newFace(regular, 24),
	}, nil
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Render returns the certificate as a landscape A4-proportioned PNG
func (r *CertificateRenderer) Render(cert *models.Certificate) ([]byte, error) {
	dc := gg.NewContext(width, height)

	dc.SetColor(paper)
	dc.Clear()

	// double frame
	dc.SetColor(navy)
	dc.SetLineWidth(8)
	dc.DrawRectangle(margin/2, margin/2, width-margin, height-margin)
	dc.Stroke()
	dc.SetColor(green)
	dc.SetLineWidth(3)
	dc.DrawRectangle(margin, margin, width-2*margin, height-2*margin)
	dc.Stroke()

	cx := float64(width) / 2

	dc.SetColor(navy)
	dc.SetFontFace(r.title)
	dc.DrawStringAnchored("Certificate of Completion", cx, 250, 0.5, 0.5)

	dc.SetColor(grey)
	dc.SetFontFace(r.body)
	dc.DrawStringAnchored("This certifies that", cx, 380, 0.5, 0.5)

	dc.SetColor(navy)
	dc.SetFontFace(r.heading)
	dc.DrawStringAnchored(cert.UserName, cx, 470, 0.5, 0.5)

	dc.SetColor(grey)
	dc.SetFontFace(r.body)
	dc.DrawStringAnchored("has successfully completed the course", cx, 570, 0.5, 0.5)

	dc.SetColor(green)
	dc.SetFontFace(r.heading)
	dc.DrawStringWrapped(cert.CourseTitle, cx, 660, 0.5, 0.5, width-4*margin, 1.2, gg.AlignCenter)

	dc.SetColor(grey)
	dc.SetFontFace(r.small)
	dc.DrawStringAnchored("Issued "+cert.IssuedAt.UTC().Format("January 2, 2006"), cx, 850, 0.5, 0.5)
	dc.DrawStringAnchored("Certificate No. "+cert.CertificateNumber, cx, 895, 0.5, 0.5)

	dc.SetColor(navy)
	dc.DrawStringAnchored("Flowitec Go & Grow", cx, height-margin-50, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
