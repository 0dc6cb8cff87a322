package encoder

import (
	"strconv"
	"strings"

	"vidshrink/internal/model"
	"vidshrink/internal/util/bitrate"
)

// CRF bounds, inclusive.
const (
	MinCRF = 15
	MaxCRF = 35
)

// PresetDefault is one row of the preset table.
type PresetDefault struct {
	CRF          int
	AudioBitrate string
}

// PresetDefaults returns the CRF and audio bitrate a preset implies. Custom
// returns the fallback used when the user leaves a value unset.
func PresetDefaults(p model.QualityPreset) PresetDefault {
	switch p {
	case model.PresetHigh:
		return PresetDefault{CRF: 20, AudioBitrate: "192k"}
	case model.PresetSmall:
		return PresetDefault{CRF: 28, AudioBitrate: "96k"}
	case model.PresetBalanced, model.PresetCustom:
		fallthrough
	default:
		return PresetDefault{CRF: 23, AudioBitrate: "128k"}
	}
}

// ApplyOverrides folds explicit CRF / audio bitrate choices into s. A named
// preset with an override becomes custom, seeded from that preset so the
// value that was not overridden keeps the preset's default. crf 0 and audio
// "" mean no override.
func ApplyOverrides(s model.CompressionSettings, crf int, audio string) model.CompressionSettings {
	if crf == 0 && audio == "" {
		return s
	}
	if s.Preset != model.PresetCustom {
		d := PresetDefaults(s.Preset)
		s.Preset = model.PresetCustom
		s.CRF, s.AudioBitrate = d.CRF, d.AudioBitrate
	}
	if crf != 0 {
		s.CRF = crf
	}
	if audio != "" {
		s.AudioBitrate = audio
	}
	return s
}

// CodecID maps a codec choice to the encoder's identifier.
func CodecID(c model.VideoCodec) (string, bool) {
	switch c {
	case model.CodecH264, "":
		return "libx264", true
	case model.CodecH265:
		return "libx265", true
	default:
		return "", false
	}
}

// Resolve applies preset defaults and validates the result. For non-custom
// presets the table values win over s.CRF and s.AudioBitrate.
func Resolve(s model.CompressionSettings) (model.ResolvedSettings, error) {
	var crf int
	var audio string

	switch s.Preset {
	case model.PresetHigh, model.PresetBalanced, model.PresetSmall:
		d := PresetDefaults(s.Preset)
		crf, audio = d.CRF, d.AudioBitrate
	case model.PresetCustom:
		d := PresetDefaults(model.PresetCustom)
		crf, audio = s.CRF, s.AudioBitrate
		if crf == 0 {
			crf = d.CRF
		}
		if audio == "" {
			audio = d.AudioBitrate
		}
	default:
		return model.ResolvedSettings{}, invalid("preset", s.Preset, "must be one of custom, high, balanced, small")
	}

	if crf < MinCRF || crf > MaxCRF {
		return model.ResolvedSettings{}, invalid("crf", crf, "must be between %d and %d", MinCRF, MaxCRF)
	}
	if !bitrate.IsAllowedAudio(audio) {
		return model.ResolvedSettings{}, invalid("audio bitrate", audio, "must be one of %s", strings.Join(bitrate.AudioTokens, ", "))
	}

	width, err := resolveWidth(s.Resolution)
	if err != nil {
		return model.ResolvedSettings{}, err
	}
	if s.MaxFramerate < 0 {
		return model.ResolvedSettings{}, invalid("max framerate", s.MaxFramerate, "must not be negative")
	}
	codec, ok := CodecID(s.Codec)
	if !ok {
		return model.ResolvedSettings{}, invalid("codec", s.Codec, "must be h264 or h265")
	}

	return model.ResolvedSettings{
		CRF:          crf,
		AudioBitrate: audio,
		MaxWidth:     width,
		VideoCodec:   codec,
		MaxFramerate: s.MaxFramerate,
	}, nil
}

func resolveWidth(r model.ResolutionChoice) (int, error) {
	switch r.Kind {
	case model.ResolutionKeep, "":
		return 0, nil
	case model.ResolutionFixed:
		for _, w := range model.FixedWidths {
			if r.Width == w {
				return w, nil
			}
		}
		return 0, invalid("width", r.Width, "fixed width must be 1920, 1280 or 854")
	case model.ResolutionCustom:
		if r.Width < 0 {
			return 0, invalid("width", r.Width, "must not be negative")
		}
		return r.Width, nil
	default:
		return 0, invalid("resolution", r.Kind, "unknown resolution kind")
	}
}

// VideoFilter returns the combined -vf value, or "" when no filter applies.
// Scale keeps the aspect ratio and forces an even height for 4:2:0 output;
// fps never raises the source rate.
func VideoFilter(rs model.ResolvedSettings) string {
	var filters []string
	if rs.MaxWidth > 0 {
		filters = append(filters, "scale='min("+strconv.Itoa(rs.MaxWidth)+",iw)':'-2'")
	}
	if rs.MaxFramerate > 0 {
		filters = append(filters, "fps=fps='min("+strconv.Itoa(rs.MaxFramerate)+",source_fps)'")
	}
	return strings.Join(filters, ",")
}

// BuildArgs constructs the full encoder argv, binary first, output last.
// rs must come from Resolve.
func BuildArgs(binary string, rs model.ResolvedSettings, inputPath, outputPath string) []string {
	args := make([]string, 0, 18)
	args = append(args,
		binary,
		"-y",
		"-i", inputPath,
		"-vcodec", rs.VideoCodec,
		"-crf", strconv.Itoa(rs.CRF),
		"-acodec", "aac",
		"-b:a", rs.AudioBitrate,
		"-movflags", "+faststart",
	)
	if vf := VideoFilter(rs); vf != "" {
		args = append(args, "-vf", vf)
	}
	args = append(args, outputPath)
	return args
}

// NewJob resolves s and builds the argv for one input/output pair.
func NewJob(binary string, s model.CompressionSettings, inputPath, outputPath string) (model.EncodeJob, error) {
	rs, err := Resolve(s)
	if err != nil {
		return model.EncodeJob{}, err
	}
	return model.EncodeJob{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Settings:   rs,
		Argv:       BuildArgs(binary, rs, inputPath, outputPath),
	}, nil
}
