package encoder

import (
	"strconv"
	"strings"

	"vidshrink/internal/model"
)

// ParseSettings reads compression settings from string values, as found in
// form fields, query parameters or CLI flags. Keys: preset, crf, resolution,
// audio_bitrate, codec, max_fps. Empty values take the defaults. A CRF or
// audio bitrate alongside a named preset switches to custom (see
// ApplyOverrides). Parse failures are reported as *ValidationError.
func ParseSettings(get func(key string) string) (model.CompressionSettings, error) {
	preset, err := model.ParsePreset(get("preset"))
	if err != nil {
		return model.CompressionSettings{}, &ValidationError{Field: "preset", Value: get("preset"), Reason: err.Error()}
	}
	res, err := model.ParseResolution(get("resolution"))
	if err != nil {
		return model.CompressionSettings{}, &ValidationError{Field: "resolution", Value: get("resolution"), Reason: err.Error()}
	}
	codec, err := model.ParseCodec(get("codec"))
	if err != nil {
		return model.CompressionSettings{}, &ValidationError{Field: "codec", Value: get("codec"), Reason: err.Error()}
	}
	crf, err := optionalInt(get("crf"))
	if err != nil {
		return model.CompressionSettings{}, &ValidationError{Field: "crf", Value: get("crf"), Reason: "not a number"}
	}
	fps, err := optionalInt(get("max_fps"))
	if err != nil {
		return model.CompressionSettings{}, &ValidationError{Field: "max framerate", Value: get("max_fps"), Reason: "not a number"}
	}
	s := model.CompressionSettings{
		Preset:       preset,
		Resolution:   res,
		Codec:        codec,
		MaxFramerate: fps,
	}
	return ApplyOverrides(s, crf, strings.TrimSpace(get("audio_bitrate"))), nil
}

func optionalInt(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
