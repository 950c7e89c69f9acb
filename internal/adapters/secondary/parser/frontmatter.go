package parser

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// FrontmatterSplitter implements ports.FrontmatterSplitter
type FrontmatterSplitter struct{}

var _ ports.FrontmatterSplitter = FrontmatterSplitter{}

// Split separates a leading YAML block from the note body
func (FrontmatterSplitter) Split(doc []byte) (ports.Frontmatter, []byte) {
	return SplitFrontmatter(doc)
}

// frontmatterEnvelope accepts tags written either as a list or a single value
type frontmatterEnvelope struct {
	Title string      `yaml:"title"`
	Tags  interface{} `yaml:"tags"`
}

// SplitFrontmatter separates a leading YAML frontmatter block from the note
// body. Notes without frontmatter, or with frontmatter that does not parse,
// are returned unchanged with empty metadata.
func SplitFrontmatter(doc []byte) (ports.Frontmatter, []byte) {
	if !bytes.HasPrefix(doc, []byte("---")) {
		return ports.Frontmatter{}, doc
	}

	var meta frontmatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(doc), &meta)
	if err != nil {
		return ports.Frontmatter{}, doc
	}

	return ports.Frontmatter{
		Title: meta.Title,
		Tags:  normalizeTags(meta.Tags),
	}, body
}

func normalizeTags(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []interface{}:
		tags := make([]string, 0, len(v))
		for _, t := range v {
			if t == nil {
				continue
			}
			tags = append(tags, fmt.Sprint(t))
		}
		return tags
	default:
		return []string{fmt.Sprint(v)}
	}
}
