package pipeline

import (
	"path/filepath"

	"vidshrink/internal/encoder"
	"vidshrink/internal/model"
	"vidshrink/internal/util/media"
)

// Plan is what a compression would do, computed without touching disk.
type Plan struct {
	Settings     model.ResolvedSettings
	InputExt     string
	DownloadName string
	Argv         []string // uses placeholder temp paths
}

// PlanFor validates the upload name and settings and builds the argv the
// encoder would receive. Temp paths are shown as placeholders.
func PlanFor(encoderPath, uploadName string, s model.CompressionSettings) (Plan, error) {
	ext, err := media.InputExt(uploadName)
	if err != nil {
		return Plan{}, &encoder.ValidationError{Field: "file", Value: uploadName, Reason: err.Error()}
	}
	rs, err := encoder.Resolve(s)
	if err != nil {
		return Plan{}, err
	}
	if encoderPath == "" {
		encoderPath = "ffmpeg"
	}
	in := filepath.Join("$TMP", "input"+ext)
	out := filepath.Join("$TMP", "output"+media.OutputExt)
	return Plan{
		Settings:     rs,
		InputExt:     ext,
		DownloadName: media.DownloadName(uploadName),
		Argv:         encoder.BuildArgs(encoderPath, rs, in, out),
	}, nil
}
