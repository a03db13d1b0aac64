// Package content turns a holiday name into post material: an image-generation
// prompt, a social caption, and the rendered square base image.
package content

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/rs/zerolog"

	"postify/internal/domain"
	"postify/internal/providers/genai"
)

// GenAI is the slice of the Gemini client the generator needs.
type GenAI interface {
	GeneratePostContent(ctx context.Context, instruction string) (*genai.PostContent, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// Generator wraps the text and image collaborators into a single pipeline.
// Every call is a paid API invocation; callers must not retry blindly.
type Generator struct {
	client GenAI
	logger zerolog.Logger
}

func NewGenerator(client GenAI, logger zerolog.Logger) *Generator {
	return &Generator{client: client, logger: logger}
}

// GeneratePrompt asks the text model for the {prompt, caption} pair without
// rendering an image. Used by the prompt preview surface.
func (g *Generator) GeneratePrompt(ctx context.Context, holiday, description string) (*genai.PostContent, error) {
	instruction := BuildInstruction(holiday, description)
	post, err := g.client.GeneratePostContent(ctx, instruction)
	if err != nil {
		return nil, fmt.Errorf("%w: post content for %q: %v", domain.ErrGeneration, holiday, err)
	}
	return post, nil
}

// Generate runs the full pipeline: structured text generation followed by a
// single square image render decoded into a raster image.
func (g *Generator) Generate(ctx context.Context, holiday, description string) (*domain.GeneratedContent, error) {
	post, err := g.GeneratePrompt(ctx, holiday, description)
	if err != nil {
		return nil, err
	}

	g.logger.Info().
		Str("holiday", holiday).
		Str("caption", post.Caption).
		Msg("content: rendering base image")

	data, err := g.client.GenerateImage(ctx, post.Prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: base image for %q: %v", domain.ErrGeneration, holiday, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode base image: %v", domain.ErrGeneration, err)
	}

	return &domain.GeneratedContent{
		ImagePrompt: post.Prompt,
		Caption:     post.Caption,
		BaseImage:   img,
	}, nil
}

// ContextString combines a holiday name with its optional description the way
// the text model instruction expects it.
func ContextString(holiday, description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return holiday
	}
	return holiday + ". Context: " + description
}

// BuildInstruction renders the narrative instruction sent to the text model.
// The reply must be a JSON object with exactly the keys "prompt" and
// "caption".
func BuildInstruction(holiday, description string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, instructionTemplate, holiday)
	if description = strings.TrimSpace(description); description != "" {
		fmt.Fprintf(sb, "\nAdditional context about %s: %s\n", holiday, description)
	}
	return sb.String()
}

const instructionTemplate = `You are a creative social media content designer. For the holiday %[1]q, produce a JSON object with exactly two keys: "prompt" and "caption".

IMPORTANT:
- "prompt" must be a single, flowing, narrative image-generation paragraph suitable for a text-to-image model.
- Do NOT include instructions, bullet points, or meta language inside the "prompt" value.
- Output valid JSON only.

What the image-generation prompt must describe:

Overall scene:
A square 1:1, edge-to-edge premium social media visual with a realistic, studio-quality look. The scene should feel like a carefully styled photographic setup blended with high-end illustration realism, not a flat poster or abstract background.

Composition:
A balanced left-right layout designed for a square crop. Elegant English calligraphic greeting text appears on the LEFT, while a cohesive symbolic vignette appears on the RIGHT. Both sides exist within the same continuous environment and visual plane, with no floating cards, no raised panels, and no framed sections.

LEFT - greeting:
A refined English calligraphy greeting such as "Happy %[1]s," rendered in a sophisticated script. The lettering has a flat metallic or gold-foil appearance with natural light reflections and soft highlights, integrated directly into the scene rather than embossed or extruded. It should feel elegant, premium, and readable at feed scale.

RIGHT - illustration:
A harmonious grouping of multiple elements (two to four) representing %[1]s, arranged as a small still-life scene rather than a single isolated object. The elements interact naturally and subtly; the arrangement feels grounded and intentional, not floating or staged (e.g. ramadan: crescent moon and lantern, christmas: tree and snowman, etc).

Background & environment:
Background should be rich with design and patterns and colors at roughly 40%% opacity.

Depth, focus & lighting:
Use deep depth of field so both typography and symbolic elements remain sharp and detailed. Lighting should be soft and diffused with realistic shadows and mild rim-lighting where appropriate. Avoid shallow focus, heavy bokeh, spotlight halos, or blurred backdrops that separate elements from the environment.

Style:
Premium, cinematic, and brand-ready. Photography-like fine material, balanced contrast, and a warm, inviting mood. Avoid logos, watermarks, footer text, UI elements, white margins, flat poster gradients, or card-like compositions.

{
  "prompt": "<single-paragraph image-generation prompt for an image model (describing the square, left-right scene for %[1]s)>",
  "caption": "<short social caption with emojis>"
}
`
