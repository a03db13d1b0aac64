// Package compositor assembles the final post image: the generated base
// picture blended with the brand overlay, then personalized with either a
// recipient overlay or a logo plus contact footer.
package compositor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	logoSize   = 120
	logoMargin = 20
	footerSize = 24
	footerLift = 40
	uploadEdge = 150
)

// Options carries the optional brand asset paths. Any path may be empty, in
// which case the corresponding layer is simply skipped.
type Options struct {
	BrandOverlayPath string
	BrandLogoPath    string
	FooterFontPath   string
}

// Personalization selects the recipient-specific layers for one composite.
// When Overlay is set it wins over Logo and Footer.
type Personalization struct {
	Overlay image.Image
	Logo    image.Image
	Footer  string
}

// Compositor holds the shared brand assets. It is safe for concurrent use:
// the loaded images and font are read-only after New returns and a fresh
// font.Face is created per draw.
type Compositor struct {
	brandOverlay image.Image
	brandLogo    image.Image
	footerFont   *opentype.Font
}

// New loads the brand assets named in opts. A configured but unreadable
// asset is an error; an empty path just disables that layer. The footer
// font falls back to the embedded Go Regular face when no path is set.
func New(opts Options, logger zerolog.Logger) (*Compositor, error) {
	c := &Compositor{}

	if opts.BrandOverlayPath != "" {
		img, err := loadImage(opts.BrandOverlayPath)
		if err != nil {
			return nil, fmt.Errorf("load brand overlay: %w", err)
		}
		c.brandOverlay = img
	} else {
		logger.Warn().Msg("no brand overlay configured, posts go out without it")
	}

	if opts.BrandLogoPath != "" {
		img, err := loadImage(opts.BrandLogoPath)
		if err != nil {
			return nil, fmt.Errorf("load brand logo: %w", err)
		}
		c.brandLogo = img
	}

	fontData := goregular.TTF
	if opts.FooterFontPath != "" {
		data, err := os.ReadFile(opts.FooterFontPath)
		if err != nil {
			return nil, fmt.Errorf("load footer font: %w", err)
		}
		fontData = data
	}
	parsed, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("parse footer font: %w", err)
	}
	c.footerFont = parsed

	return c, nil
}

// Composite renders one personalized post image. The base is copied, never
// mutated, so a single generated image can serve every recipient of a job.
func (c *Compositor) Composite(base image.Image, p Personalization) (image.Image, error) {
	canvas := toRGBA(base)
	bounds := canvas.Bounds()

	if c.brandOverlay != nil {
		blendStretched(canvas, c.brandOverlay)
	}

	if p.Overlay != nil {
		blendStretched(canvas, p.Overlay)
		return canvas, nil
	}

	logo := p.Logo
	if logo == nil {
		logo = c.brandLogo
	}
	if logo != nil {
		scaled := image.NewRGBA(image.Rect(0, 0, logoSize, logoSize))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), logo, logo.Bounds(), xdraw.Over, nil)
		target := image.Rect(
			bounds.Min.X+logoMargin,
			bounds.Min.Y+logoMargin,
			bounds.Min.X+logoMargin+logoSize,
			bounds.Min.Y+logoMargin+logoSize,
		)
		draw.Draw(canvas, target, scaled, image.Point{}, draw.Over)
	}

	if p.Footer != "" {
		if err := c.drawFooter(canvas, p.Footer); err != nil {
			return nil, fmt.Errorf("draw footer: %w", err)
		}
	}

	return canvas, nil
}

// EncodeBase64 flattens the image onto a white background and returns it as
// base64-encoded PNG, the payload shape the delivery endpoint expects.
func EncodeBase64(img image.Image) (string, error) {
	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeImage decodes stored PNG or JPEG bytes back into an image.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// NormalizePNG validates an uploaded image and re-encodes it as RGBA PNG so
// the stored bytes are uniform regardless of the upload format.
func NormalizePNG(data []byte) ([]byte, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return encodePNG(toRGBA(img))
}

// NormalizeLogo validates an uploaded logo and scales it to the stored
// 150x150 size before encoding it as PNG.
func NormalizeLogo(data []byte) ([]byte, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	scaled := image.NewRGBA(image.Rect(0, 0, uploadEdge, uploadEdge))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return encodePNG(scaled)
}

// FooterLine formats the contact footer. Mail and website are uppercased,
// matching the brand's printed materials.
func FooterLine(phone, mail, website string) string {
	upper := cases.Upper(language.Und)
	parts := []string{phone, upper.String(mail), upper.String(website)}
	return strings.Join(parts, "   |   ")
}

func (c *Compositor) drawFooter(canvas *image.RGBA, text string) error {
	// opentype faces are not safe for concurrent use, so build one per call.
	face, err := opentype.NewFace(c.footerFont, &opentype.FaceOptions{
		Size:    footerSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}
	defer face.Close()

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	bounds := canvas.Bounds()
	width := drawer.MeasureString(text)
	x := fixed.I(bounds.Min.X) + (fixed.I(bounds.Dx())-width)/2
	drawer.Dot = fixed.Point26_6{X: x, Y: fixed.I(bounds.Max.Y - footerLift)}
	drawer.DrawString(text)
	return nil
}

func blendStretched(canvas *image.RGBA, layer image.Image) {
	xdraw.CatmullRom.Scale(canvas, canvas.Bounds(), layer, layer.Bounds(), xdraw.Over, nil)
}

func toRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func loadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeImage(data)
}
