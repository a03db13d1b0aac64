package domain

import "image"

// GeneratedContent is the output of one content generation cycle. It is never
// persisted; a single instance is produced per distribution run and shared
// read-only across all recipient iterations.
type GeneratedContent struct {
	ImagePrompt string
	Caption     string
	BaseImage   image.Image
}
