package parser

import (
	"regexp"
	"strings"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

var imageRegex = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)

// extractMedia lists every inline image of a slide body in document order
func extractMedia(body string, newID func() string) []entities.MediaAsset {
	matches := imageRegex.FindAllStringSubmatch(body, -1)
	media := make([]entities.MediaAsset, 0, len(matches))
	for _, m := range matches {
		media = append(media, entities.MediaAsset{
			ID:          newID(),
			OriginalSrc: m[2],
			Type:        entities.MediaTypeImage,
		})
	}
	return media
}

// startsWithImage reports whether the first content line is an image,
// which makes the slide bleed without the explicit keyword
func startsWithImage(body string) bool {
	first, _, _ := strings.Cut(strings.TrimLeft(body, " \t\r\n"), "\n")
	return strings.HasPrefix(first, "![")
}
