package export

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/geocoder89/notesapp/internal/apperr"
)

// Renderer writes a document in one file format.
type Renderer interface {
	Format() string
	ContentType() string
	Render(w io.Writer, doc Document) error
}

// Service holds the renderers available to a deployment. The set is fixed
// when the service is built.
type Service struct {
	renderers map[string]Renderer
}

func NewService(renderers ...Renderer) *Service {
	m := make(map[string]Renderer, len(renderers))
	for _, r := range renderers {
		m[r.Format()] = r
	}
	return &Service{renderers: m}
}

// Default registers every renderer this package ships.
func Default() *Service {
	return NewService(JSONRenderer{}, NewPDFRenderer(), XLSXRenderer{})
}

func (s *Service) Formats() []string {
	out := make([]string, 0, len(s.renderers))
	for f := range s.renderers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (s *Service) Renderer(format string) (Renderer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "pdf"
	}

	r, ok := s.renderers[format]
	if !ok {
		return nil, apperr.Validation("format must be one of " + strings.Join(s.Formats(), ", "))
	}

	return r, nil
}

// Render renders doc fully in memory so a failure can still be reported
// as an error response.
func (s *Service) Render(format string, doc Document) ([]byte, Renderer, error) {
	r, err := s.Renderer(format)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, doc); err != nil {
		return nil, r, err
	}

	return buf.Bytes(), r, nil
}

// Filename is the attachment name for doc rendered by r.
func Filename(doc Document, r Renderer) string {
	return doc.Slug + "." + r.Format()
}

type JSONRenderer struct{}

func (JSONRenderer) Format() string      { return "json" }
func (JSONRenderer) ContentType() string { return "application/json" }

func (JSONRenderer) Render(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
