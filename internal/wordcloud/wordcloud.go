// Package wordcloud renders a weight map as a PNG word cloud. Words are
// placed largest first along an Archimedean spiral from the centre, and a
// word that fits nowhere is shrunk until it does or becomes unreadable.
package wordcloud

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"sort"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var ErrInvalidSize = errors.New("invalid image size")

const (
	minFontSize = 10.0
	padding     = 2.0
	maxSide     = 4096
)

var DefaultColors = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#17becf"}

type Options struct {
	// FontPath is a TrueType font with CJK coverage. The bundled Go font is
	// used when empty, which only covers latin text.
	FontPath   string
	MaxWords   int
	Background string
	Colors     []string
}

type Renderer struct {
	font       *truetype.Font
	maxWords   int
	background string
	colors     []string
}

func New(opts Options) (*Renderer, error) {
	ttf := goregular.TTF
	if opts.FontPath != "" {
		b, err := os.ReadFile(opts.FontPath)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		ttf = b
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	r := &Renderer{
		font:       f,
		maxWords:   opts.MaxWords,
		background: opts.Background,
		colors:     opts.Colors,
	}
	if r.maxWords <= 0 {
		r.maxWords = 200
	}
	if r.background == "" {
		r.background = "#ffffff"
	}
	if len(r.colors) == 0 {
		r.colors = DefaultColors
	}
	return r, nil
}

type word struct {
	text   string
	weight int
}

type rect struct {
	x0, y0, x1, y1 float64
}

func (a rect) overlaps(b rect) bool {
	return a.x0 < b.x1 && b.x0 < a.x1 && a.y0 < b.y1 && b.y0 < a.y1
}

func rankWords(weights map[string]int, limit int) []word {
	words := make([]word, 0, len(weights))
	for text, weight := range weights {
		if weight > 0 && text != "" {
			words = append(words, word{text, weight})
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].weight != words[j].weight {
			return words[i].weight > words[j].weight
		}
		return words[i].text < words[j].text
	})
	if len(words) > limit {
		words = words[:limit]
	}
	return words
}

// Render draws weights onto a width x height canvas.
func (r *Renderer) Render(weights map[string]int, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 || width > maxSide || height > maxSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor(r.background)
	dc.Clear()

	words := rankWords(weights, r.maxWords)
	if len(words) == 0 {
		return dc.Image(), nil
	}

	maxFont := math.Max(minFontSize, float64(min(width, height))/4)
	top, bottom := float64(words[0].weight), float64(words[len(words)-1].weight)
	faces := make(map[int]font.Face)
	defer func() {
		for _, f := range faces {
			_ = f.Close()
		}
	}()
	face := func(size float64) font.Face {
		key := int(size)
		if f, ok := faces[key]; ok {
			return f
		}
		f := truetype.NewFace(r.font, &truetype.Options{Size: float64(key)})
		faces[key] = f
		return f
	}

	var placed []rect
	for i, w := range words {
		size := minFontSize
		if top > bottom {
			size += (maxFont - minFontSize) * math.Sqrt((float64(w.weight)-bottom)/(top-bottom))
		} else {
			size = maxFont
		}

		for ; size >= minFontSize; size *= 0.8 {
			dc.SetFontFace(face(size))
			tw, th := dc.MeasureString(w.text)
			x, y, ok := findSpot(placed, tw+2*padding, th+2*padding, float64(width), float64(height))
			if !ok {
				continue
			}
			placed = append(placed, rect{x - tw/2 - padding, y - th/2 - padding, x + tw/2 + padding, y + th/2 + padding})
			dc.SetHexColor(r.colors[i%len(r.colors)])
			dc.DrawStringAnchored(w.text, x, y, 0.5, 0.5)
			break
		}
	}
	return dc.Image(), nil
}

func (r *Renderer) RenderPNG(out io.Writer, weights map[string]int, width, height int) error {
	img, err := r.Render(weights, width, height)
	if err != nil {
		return err
	}
	return gg.NewContextForImage(img).EncodePNG(out)
}

// findSpot walks a spiral out from the centre and returns the first centre
// point where a w x h box fits inside the canvas without touching placed.
func findSpot(placed []rect, w, h, width, height float64) (float64, float64, bool) {
	if w > width || h > height {
		return 0, 0, false
	}
	cx, cy := width/2, height/2
	aspect := width / height
	limit := math.Hypot(width, height) / 2

	for t := 0.0; ; {
		radius := 4 * t
		if radius > limit*math.Max(aspect, 1) {
			return 0, 0, false
		}
		x := cx + radius*math.Cos(t)*aspect/math.Max(aspect, 1)
		y := cy + radius*math.Sin(t)/math.Max(aspect, 1)
		box := rect{x - w/2, y - h/2, x + w/2, y + h/2}
		if box.x0 >= 0 && box.y0 >= 0 && box.x1 <= width && box.y1 <= height && !collides(placed, box) {
			return x, y, true
		}
		t += math.Min(0.5, 8/(radius+1))
	}
}

func collides(placed []rect, box rect) bool {
	for _, p := range placed {
		if p.overlaps(box) {
			return true
		}
	}
	return false
}
