package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

// Role is how the overlay classifies an observation.
type Role string

const (
	RolePlayer  Role = "player"
	RoleRow     Role = "row"
	RoleHeader  Role = "header"
	RoleNumeric Role = "numeric"
	RoleText    Role = "text"
)

var rolePalette = map[Role]colorful.Color{
	RolePlayer:  colorful.Hcl(40, 0.9, 0.65).Clamped(),
	RoleRow:     colorful.Hcl(135, 0.8, 0.6).Clamped(),
	RoleHeader:  colorful.Hcl(250, 0.8, 0.5).Clamped(),
	RoleNumeric: colorful.Hcl(320, 0.6, 0.6).Clamped(),
	RoleText:    colorful.Hcl(0, 0, 0.6).Clamped(),
}

// RoleColor returns the hex colour used for role.
func RoleColor(r Role) string {
	return rolePalette[r].Hex()
}

// OverlayOptions selects what RenderOverlay draws.
type OverlayOptions struct {
	Player string
	Config scorecard.Config

	// Labels draws each observation's text above its box.
	Labels bool

	// ColumnColor overrides the hole-column guide colour ("#RRGGBB").
	ColumnColor string
}

// OverlayResult is the annotated photo.
type OverlayResult struct {
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	ImageBase64 string       `json:"image_base64"`
	MimeType    string       `json:"mime_type"`
	Boxes       int          `json:"boxes"`
	Columns     int          `json:"columns"`
	Roles       map[Role]int `json:"roles"`
}

// PixelRect converts a fractional, bottom-left-origin box to pixel
// coordinates with the origin at the top-left.
func PixelRect(o scorecard.TextObservation, width, height int) image.Rectangle {
	w, h := float64(width), float64(height)
	return image.Rect(
		int(math.Round(o.X*w)),
		int(math.Round((1-o.Y-o.Height)*h)),
		int(math.Round((o.X+o.Width)*w)),
		int(math.Round((1-o.Y)*h)),
	)
}

// Classify assigns each observation a role relative to the player's row and
// the detected header.
func Classify(obs []scorecard.TextObservation, player string, cfg scorecard.Config) []Role {
	roles := make([]Role, len(obs))
	idx, found := scorecard.LocatePlayer(obs, player)
	var rowY float64
	if found {
		rowY = obs[idx].MidY()
	}
	for i, o := range obs {
		numeric := len(scorecard.ParseScores(o.Text, nil)) > 0
		switch {
		case found && i == idx:
			roles[i] = RolePlayer
		case numeric && found && math.Abs(o.MidY()-rowY) <= cfg.GridRowBand:
			roles[i] = RoleRow
		case numeric && o.MidY() >= cfg.HeaderMinY && o.MidY() <= cfg.HeaderMaxY:
			roles[i] = RoleHeader
		case numeric:
			roles[i] = RoleNumeric
		default:
			roles[i] = RoleText
		}
	}
	return roles
}

// RenderOverlay draws every observation's box coloured by role, plus a
// vertical guide at each detected hole column, and returns the PNG.
func RenderOverlay(img image.Image, obs []scorecard.TextObservation, opts OverlayOptions) (*OverlayResult, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)

	cols := scorecard.DetectHoleHeader(obs, opts.Config, nil)
	guide := colorful.Color{R: 1, G: 0, B: 0}
	if opts.ColumnColor != "" {
		if c, err := colorful.Hex(opts.ColumnColor); err == nil {
			guide = c
		}
	}
	for _, col := range cols {
		x := int(math.Round(col.X * float64(width)))
		for y := 0; y < height; y += 2 {
			canvas.Set(x, y, guide)
		}
	}

	roles := Classify(obs, opts.Player, opts.Config)
	counts := make(map[Role]int)
	for i, o := range obs {
		c := rolePalette[roles[i]]
		r := PixelRect(o, width, height)
		strokeRect(canvas, r, c, 2)
		if opts.Labels && o.Text != "" {
			drawLabel(canvas, r.Min.X, r.Min.Y-3, o.Text, c)
		}
		counts[roles[i]]++
	}

	raw, err := EncodePNG(canvas)
	if err != nil {
		return nil, err
	}
	return &OverlayResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(raw),
		MimeType:    "image/png",
		Boxes:       len(obs),
		Columns:     len(cols),
		Roles:       counts,
	}, nil
}

func strokeRect(img *image.RGBA, r image.Rectangle, c color.Color, thickness int) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, r.Min.Y+t, c)
			img.Set(x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.Set(r.Min.X+t, y, c)
			img.Set(r.Max.X-1-t, y, c)
		}
	}
}

// drawLabel writes text with its baseline at (x, y) on a dark backing strip.
func drawLabel(img *image.RGBA, x, y int, text string, fg color.Color) {
	face := basicfont.Face7x13
	if y < face.Ascent {
		y = face.Ascent
	}
	d := &font.Drawer{Dst: img, Src: image.NewUniform(fg), Face: face}
	w := d.MeasureString(text).Ceil()
	bg := image.Rect(x-1, y-face.Ascent-1, x+w+1, y+face.Descent+1).Intersect(img.Bounds())
	draw.Draw(img, bg, image.NewUniform(color.RGBA{0, 0, 0, 180}), image.Point{}, draw.Over)
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
