// Package render draws the board image that both agents look at: every card
// on a grid with its position number in the corner.
package render

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bcspragu/namesbench"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	_ "golang.org/x/image/webp"
)

const (
	CompositeName = "board_composite.png"
	DebugName     = "board_debug.png"

	outlineWidth = 6
)

var (
	background      = color.RGBA{30, 30, 30, 255}
	labelBackground = color.RGBA{0, 0, 0, 255}
	friendlyOutline = color.RGBA{0, 200, 0, 255}
	opponentOutline = color.RGBA{200, 0, 0, 255}
)

type Config struct {
	// Cards[i] is the image for position i+1.
	Cards      []string
	Rows, Cols int
	OutDir     string
	// Board is only needed when Debug is set.
	Board *namesbench.Board
	// Debug also renders an image with every card outlined in its team's color.
	Debug bool
}

// Build renders the composite board, and the debug board if requested, into
// cfg.OutDir.
func Build(cfg *Config) (*namesbench.BoardImage, error) {
	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	dir, err := filepath.Abs(cfg.OutDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir: %w", err)
	}

	bi := &namesbench.BoardImage{Path: filepath.Join(dir, CompositeName)}
	if err := Compose(cfg.Cards, cfg.Rows, cfg.Cols, bi.Path, nil); err != nil {
		return nil, fmt.Errorf("failed to render board: %w", err)
	}
	if bi.DataURL, err = DataURL(bi.Path); err != nil {
		return nil, err
	}

	if cfg.Debug {
		if cfg.Board == nil {
			return nil, fmt.Errorf("%w: debug board requested without a team assignment", namesbench.ErrInvalidConfig)
		}
		bi.DebugPath = filepath.Join(dir, DebugName)
		if err := Compose(cfg.Cards, cfg.Rows, cfg.Cols, bi.DebugPath, cfg.Board); err != nil {
			return nil, fmt.Errorf("failed to render debug board: %w", err)
		}
	}

	log.Debug().Str("path", bi.Path).Str("debug_path", bi.DebugPath).Msg("rendered board")
	return bi, nil
}

// Compose lays out the cards on a rows x cols grid and writes it as a PNG. Every
// cell is the size of the largest card. If b is non-nil, each card is outlined
// in its team's color.
func Compose(cards []string, rows, cols int, out string, b *namesbench.Board) error {
	if rows < 1 || cols < 1 || len(cards) != rows*cols {
		return fmt.Errorf("%w: %d cards don't fit a %dx%d grid", namesbench.ErrInvalidConfig, len(cards), rows, cols)
	}

	imgs := make([]image.Image, len(cards))
	var cellW, cellH int
	for i, path := range cards {
		img, err := loadImage(path)
		if err != nil {
			return err
		}
		imgs[i] = img
		if w := img.Bounds().Dx(); w > cellW {
			cellW = w
		}
		if h := img.Bounds().Dy(); h > cellH {
			cellH = h
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, cols*cellW, rows*cellH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	fontSize := cellW
	if cellH < fontSize {
		fontSize = cellH
	}
	fontSize = fontSize * 18 / 100
	if fontSize < 48 {
		fontSize = 48
	}

	for i, img := range imgs {
		row, col := i/cols, i%cols
		cell := image.Rect(col*cellW, row*cellH, (col+1)*cellW, (row+1)*cellH)

		draw.CatmullRom.Scale(canvas, cell, img, img.Bounds(), draw.Src, nil)
		drawLabel(canvas, cell, strconv.Itoa(i+1), fontSize)

		if b != nil {
			c := opponentOutline
			if b.Team(i+1) == namesbench.Friendly {
				c = friendlyOutline
			}
			drawOutline(canvas, cell, c)
		}
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", out, err)
	}
	if err := png.Encode(f, canvas); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %q: %w", out, err)
	}
	return f.Close()
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open card %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode card %q: %w", path, err)
	}
	return img, nil
}

// drawLabel writes the position number in a black box in the bottom-right of
// the cell. The bitmap font is tiny, so the text is drawn at its native size
// and scaled up to roughly fontSize pixels tall.
func drawLabel(dst *image.RGBA, cell image.Rectangle, label string, fontSize int) {
	face := basicfont.Face7x13
	textW := font.MeasureString(face, label).Ceil()
	text := image.NewRGBA(image.Rect(0, 0, textW, face.Height))
	d := &font.Drawer{
		Dst:  text,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(label)

	scale := fontSize / face.Height
	if scale < 1 {
		scale = 1
	}
	w, h := textW*scale, face.Height*scale
	pad := fontSize / 8
	if pad < 10 {
		pad = 10
	}

	box := image.Rect(cell.Max.X-w-2*pad, cell.Max.Y-h-2*pad, cell.Max.X, cell.Max.Y).Intersect(cell)
	draw.Draw(dst, box, image.NewUniform(labelBackground), image.Point{}, draw.Src)

	at := image.Rect(box.Min.X+pad, box.Min.Y+pad, box.Min.X+pad+w, box.Min.Y+pad+h).Intersect(cell)
	draw.NearestNeighbor.Scale(dst, at, text, text.Bounds(), draw.Over, nil)
}

func drawOutline(dst *image.RGBA, cell image.Rectangle, c color.Color) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(cell.Min.X, cell.Min.Y, cell.Max.X, cell.Min.Y+outlineWidth),
		image.Rect(cell.Min.X, cell.Max.Y-outlineWidth, cell.Max.X, cell.Max.Y),
		image.Rect(cell.Min.X, cell.Min.Y, cell.Min.X+outlineWidth, cell.Max.Y),
		image.Rect(cell.Max.X-outlineWidth, cell.Min.Y, cell.Max.X, cell.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(cell), src, image.Point{}, draw.Src)
	}
}

// DataURL returns the PNG at path as a base64 data: URL.
func DataURL(path string) (string, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", path, err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(dat), nil
}
