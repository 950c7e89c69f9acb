package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// DeckService implements the deck loading business logic
type DeckService struct {
	notes    ports.NoteRepository
	splitter ports.FrontmatterSplitter
	links    ports.LinkRewriter
	parser   ports.DeckParser
	logger   *slog.Logger
}

// NewDeckService creates a new deck service. splitter and links are optional.
func NewDeckService(
	notes ports.NoteRepository,
	splitter ports.FrontmatterSplitter,
	links ports.LinkRewriter,
	parser ports.DeckParser,
	logger *slog.Logger,
) *DeckService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckService{
		notes:    notes,
		splitter: splitter,
		links:    links,
		parser:   parser,
		logger:   logger.With("service", "deck"),
	}
}

// Load reads the note at path and parses it
func (s *DeckService) Load(ctx context.Context, path string) (*entities.Deck, error) {
	content, err := s.notes.ReadNote(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading note: %w", err)
	}

	return s.Parse(ctx, content, path)
}

// Parse strips frontmatter, resolves vault embeds and parses the note body.
// The deck title comes from the frontmatter or else the file name.
func (s *DeckService) Parse(ctx context.Context, content []byte, sourcePath string) (*entities.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta, body := s.split(content)

	markdown := string(body)
	if s.links != nil {
		markdown = s.links.Rewrite(markdown)
	}

	deck := s.parser.Parse(markdown)
	deck.SourcePath = sourcePath
	deck.Title = strings.TrimSpace(meta.Title)
	if deck.Title == "" {
		deck.Title = TitleFromPath(sourcePath)
	}
	deck.Tags = meta.Tags

	s.logger.Debug("parsed deck",
		slog.String("title", deck.Title),
		slog.Int("slides", deck.SlideCount()),
		slog.Bool("has_timer_settings", deck.TimerSettings != nil))

	return deck, nil
}

// Estimate reads the note at path and estimates how long its prose takes to speak
func (s *DeckService) Estimate(ctx context.Context, path string, wordsPerMinute int) (*entities.SpeechEstimate, error) {
	content, err := s.notes.ReadNote(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading note: %w", err)
	}

	_, body := s.split(content)
	estimate := s.parser.Estimate(string(body), wordsPerMinute)
	return &estimate, nil
}

func (s *DeckService) split(content []byte) (ports.Frontmatter, []byte) {
	if s.splitter == nil {
		return ports.Frontmatter{}, content
	}
	return s.splitter.Split(content)
}

// TitleFromPath returns the file name without its extension
func TitleFromPath(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Ensure DeckService implements ports.DeckService
var _ ports.DeckService = (*DeckService)(nil)
