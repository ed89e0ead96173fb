package printer

import (
	"image"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/draw"

	"fevergolang/internal/device"
)

// Layout carries the formatting tunables resolved from configuration at the
// time a job starts. Reprint builds a fresh Layout, so it always applies
// present-day rules, not the ones in force when the original was printed.
type Layout struct {
	NumLinefeeds int
	PrintHeader  bool
	PrintDivider bool
	DividerChar  string
	TextColumns  int
	ImageWidth   int
}

// Printer composes header, body and footer on one shared device. The mutex is
// the single serialization point: one job's output never interleaves with
// another's on the wire.
type Printer struct {
	mu  sync.Mutex
	dev device.Device
}

func New(dev device.Device) *Printer {
	return &Printer{dev: dev}
}

// PrintText renders a complete text job.
func (p *Printer) PrintText(layout Layout, printID, username, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.header(layout, printID, username); err != nil {
		return err
	}
	if err := p.dev.Text(text); err != nil {
		return err
	}
	return p.footer(layout)
}

// PrintImage renders a complete image job, scaled to the configured width and
// centered on the tape.
func (p *Printer) PrintImage(layout Layout, printID, username string, img image.Image) error {
	scaled := ScaleToWidth(img, layout.ImageWidth)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.header(layout, printID, username); err != nil {
		return err
	}
	if err := p.dev.Image(scaled, true); err != nil {
		return err
	}
	return p.footer(layout)
}

func (p *Printer) header(layout Layout, printID, username string) error {
	if layout.PrintHeader {
		if err := p.dev.Text("PRINT_ID: " + printID + "\n"); err != nil {
			return err
		}
		if err := p.dev.Text("USERNAME: " + username + "\n"); err != nil {
			return err
		}
	}
	return p.dev.Newline(layout.NumLinefeeds)
}

func (p *Printer) footer(layout Layout) error {
	if err := p.dev.Newline(layout.NumLinefeeds); err != nil {
		return err
	}
	if layout.PrintDivider {
		divider := strings.Repeat(layout.DividerChar, layout.TextColumns)
		if err := p.dev.Text(divider + "\n"); err != nil {
			return err
		}
	}
	return p.dev.Newline(layout.NumLinefeeds)
}

// ScaleToWidth resizes uniformly so the result is exactly width dots wide,
// with the height rounded to preserve aspect ratio.
func ScaleToWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	if width <= 0 || bounds.Dx() == width || bounds.Dx() == 0 {
		return img
	}
	scale := float64(width) / float64(bounds.Dx())
	height := int(math.Round(float64(bounds.Dy()) * scale))
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
