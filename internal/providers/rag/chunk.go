package rag

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/tuskchat/internal/core"
)

var (
	headingRe   = regexp.MustCompile(`^##\s+`)
	paragraphRe = regexp.MustCompile(`\n\n+`)
)

type ChunkerConfig struct {
	MaxWords int
	MinWords int
	// PersonalFiles are file names (case-insensitive) classified as personal_info.
	PersonalFiles []string
}

// DefaultChunkerConfig sizes chunks for small embedding models
// (nomic-embed-text, 2048 tokens context).
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MaxWords:      600,
		MinWords:      50,
		PersonalFiles: []string{"brandon-details.md"},
	}
}

type section struct {
	heading *string
	content string
}

// ChunkMarkdown splits a markdown document into chunks at level-2 headings.
// Oversized sections are split at paragraph boundaries with the heading repeated,
// undersized sections are merged with the following one when the result still fits.
func ChunkMarkdown(sourceFile, text string, cfg ChunkerConfig) []core.DocumentChunk {
	docType := InferDocumentType(sourceFile, cfg.PersonalFiles)
	sections := splitSections(text)

	var chunks []core.DocumentChunk
	emit := func(heading *string, content string) {
		chunks = append(chunks, core.DocumentChunk{
			SourceFile:   sourceFile,
			ChunkIndex:   len(chunks),
			Heading:      heading,
			Content:      content,
			CharCount:    utf8.RuneCountInString(content),
			WordCount:    CountWords(content),
			DocumentType: docType,
		})
	}

	for i := 0; i < len(sections); i++ {
		sec := sections[i]
		body := strings.TrimSpace(sec.content)
		full := joinNonEmpty(headingText(sec.heading), body)
		words := CountWords(full)
		if full == "" {
			continue
		}

		// Case A: section is too large -> split by paragraphs
		if words > cfg.MaxWords {
			for _, part := range splitLargeSection(body, sec.heading, cfg.MaxWords) {
				emit(sec.heading, part)
			}
			continue
		}

		// Case B: section is too small -> merge with the next one if it fits
		if words < cfg.MinWords && i < len(sections)-1 {
			next := sections[i+1]
			if words+CountWords(next.content) < cfg.MaxWords {
				merged := joinNonEmpty(
					headingText(sec.heading),
					body,
					headingText(next.heading),
					strings.TrimSpace(next.content),
				)
				heading := sec.heading
				if heading == nil {
					heading = next.heading
				}
				emit(heading, merged)
				i++
				continue
			}
		}

		emit(sec.heading, full)
	}

	return chunks
}

// InferDocumentType maps a knowledge base file name to a document type.
func InferDocumentType(sourceFile string, personalFiles []string) core.DocumentType {
	name := strings.ToLower(filepath.Base(sourceFile))

	for _, p := range personalFiles {
		if name == strings.ToLower(strings.TrimSpace(p)) {
			return core.DocumentPersonalInfo
		}
	}

	if strings.HasPrefix(name, "project-") || strings.Contains(name, "-overview.md") {
		return core.DocumentProject
	}

	return core.DocumentGeneral
}

// CountWords is a whitespace word count.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

func splitSections(text string) []section {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var sections []section
	var heading *string
	var current []string

	for _, line := range lines {
		if headingRe.MatchString(line) {
			if len(current) > 0 {
				sections = append(sections, section{heading: heading, content: strings.Join(current, "\n")})
			}
			h := line
			heading = &h
			current = nil
			continue
		}
		current = append(current, line)
	}

	if len(current) > 0 {
		sections = append(sections, section{heading: heading, content: strings.Join(current, "\n")})
	}

	// No ## headings at all: the whole document is one section
	if len(sections) == 0 {
		sections = append(sections, section{content: text})
	}

	return sections
}

// splitLargeSection packs paragraphs into chunks of at most maxWords words.
// A single paragraph larger than maxWords is kept whole.
func splitLargeSection(content string, heading *string, maxWords int) []string {
	prefix := headingText(heading)

	var chunks []string
	var current strings.Builder
	hasBody := false

	reset := func() {
		current.Reset()
		current.WriteString(prefix)
		hasBody = false
	}
	reset()

	for _, paragraph := range paragraphRe.Split(content, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		candidate := joinNonEmpty(current.String(), paragraph)
		if CountWords(candidate) > maxWords && hasBody {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			reset()
			candidate = joinNonEmpty(current.String(), paragraph)
		}

		current.Reset()
		current.WriteString(candidate)
		hasBody = true
	}

	if hasBody {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	if len(chunks) == 0 {
		return []string{content}
	}
	return chunks
}

func headingText(h *string) string {
	if h == nil {
		return ""
	}
	return *h
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
