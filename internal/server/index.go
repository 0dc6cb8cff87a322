package server

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"vidshrink/internal/util/format"
	"vidshrink/internal/util/media"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type indexData struct {
	presetsResponse
	Encoder   string
	MaxUpload string
	Accept    string
	Simulated bool
}

// Index renders the upload form.
func (s *Server) Index(w http.ResponseWriter, _ *http.Request) {
	data := indexData{
		presetsResponse: presetsCatalog(),
		Encoder:         s.encoderName,
		MaxUpload:       format.HumanizeBytes(s.maxUpload),
		Accept:          strings.Join(media.AcceptedExts, ","),
		Simulated:       s.simulated,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, data); err != nil {
		s.log.Error("render index", "error", err)
	}
}
