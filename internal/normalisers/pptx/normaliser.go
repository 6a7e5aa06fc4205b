// Package pptx normalises PresentationML slide decks.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var slidePath = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Normaliser handles PPTX documents.
type Normaliser struct{}

// New creates a new PPTX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".pptx"}
}

// FileType returns the enumerated source format.
func (n *Normaliser) FileType() domain.FileType {
	return domain.FileTypePresentation
}

// Normalise extracts slide text in slide order, each slide prefixed
// with a "--- Slide N ---" separator.
func (n *Normaliser) Normalise(_ context.Context, _ string, data []byte) (*domain.NormalizedContent, error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}

	type slide struct {
		number int
		file   *zip.File
	}
	var slides []slide

	for _, file := range reader.File {
		m := slidePath.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{number: num, file: file})
	}

	if len(slides) == 0 {
		return nil, fmt.Errorf("%w: no slides found", domain.ErrCorruptFile)
	}

	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	var sections []string
	for _, s := range slides {
		text, err := extractSlideText(s.file)
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("--- Slide %d ---\n%s", s.number, text))
	}

	return &domain.NormalizedContent{
		Kind: domain.KindText,
		Text: strings.Join(sections, "\n\n"),
	}, nil
}

// slideXML collects every DrawingML text run on a slide. Runs are
// grouped per paragraph (a:p) so lines survive extraction.
type slideXML struct {
	Paragraphs []slideParagraph `xml:"cSld>spTree>sp>txBody>p"`
}

type slideParagraph struct {
	Runs []slideRun `xml:"r"`
}

type slideRun struct {
	Text string `xml:"t"`
}

func extractSlideText(file *zip.File) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}
	content, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}

	var s slideXML
	if err := xml.Unmarshal(content, &s); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}

	var lines []string
	for _, p := range s.Paragraphs {
		var line strings.Builder
		for _, r := range p.Runs {
			line.WriteString(r.Text)
		}
		if text := strings.TrimSpace(line.String()); text != "" {
			lines = append(lines, text)
		}
	}

	return strings.Join(lines, "\n"), nil
}
