package model

import (
	"fmt"
	"strconv"
	"strings"
)

// QualityPreset represents a named quality configuration.
type QualityPreset string

const (
	PresetCustom   QualityPreset = "custom"
	PresetHigh     QualityPreset = "high"
	PresetBalanced QualityPreset = "balanced"
	PresetSmall    QualityPreset = "small"
)

// Presets lists every preset in display order.
var Presets = []QualityPreset{PresetHigh, PresetBalanced, PresetSmall, PresetCustom}

// ParsePreset accepts the short names plus the long display forms
// ("high-quality", "small-size", "Small Size").
func ParsePreset(s string) (QualityPreset, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	switch norm {
	case "custom":
		return PresetCustom, nil
	case "high", "high-quality":
		return PresetHigh, nil
	case "balanced", "":
		return PresetBalanced, nil
	case "small", "small-size":
		return PresetSmall, nil
	default:
		return "", fmt.Errorf("invalid preset %q (valid: custom|high|balanced|small)", s)
	}
}

// VideoCodec selects the encoder family used for the video stream.
type VideoCodec string

const (
	CodecH264 VideoCodec = "h264"
	CodecH265 VideoCodec = "h265"
)

// ParseCodec accepts h264/h265 and the encoder library names.
func ParseCodec(s string) (VideoCodec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h264", "h.264", "libx264", "avc", "":
		return CodecH264, nil
	case "h265", "h.265", "libx265", "hevc":
		return CodecH265, nil
	default:
		return "", fmt.Errorf("invalid codec %q (valid: h264|h265)", s)
	}
}

// ResolutionKind distinguishes the three ways a width cap can be chosen.
type ResolutionKind string

const (
	ResolutionKeep   ResolutionKind = "keep"
	ResolutionFixed  ResolutionKind = "fixed"
	ResolutionCustom ResolutionKind = "custom"
)

// FixedWidths are the widths offered as named choices.
var FixedWidths = []int{1920, 1280, 854}

// ResolutionChoice is a width cap. Width is ignored for ResolutionKeep.
type ResolutionChoice struct {
	Kind  ResolutionKind
	Width int
}

// KeepOriginal leaves the source resolution untouched.
func KeepOriginal() ResolutionChoice { return ResolutionChoice{Kind: ResolutionKeep} }

// FixedWidth selects one of FixedWidths.
func FixedWidth(w int) ResolutionChoice { return ResolutionChoice{Kind: ResolutionFixed, Width: w} }

// CustomWidth caps the width at n pixels; 0 means unconstrained.
func CustomWidth(n int) ResolutionChoice { return ResolutionChoice{Kind: ResolutionCustom, Width: n} }

// ParseResolution understands "original", "1080p", "720p", "480p", a fixed
// width such as "1280", and any other integer as a custom width.
func ParseResolution(s string) (ResolutionChoice, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "", "original", "keep", "keep-original":
		return KeepOriginal(), nil
	case "1080p":
		return FixedWidth(1920), nil
	case "720p":
		return FixedWidth(1280), nil
	case "480p":
		return FixedWidth(854), nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(norm, "px"))
	if err != nil {
		return ResolutionChoice{}, fmt.Errorf("invalid resolution %q (valid: original|1080p|720p|480p|<width>)", s)
	}
	for _, w := range FixedWidths {
		if n == w {
			return FixedWidth(n), nil
		}
	}
	return CustomWidth(n), nil
}

func (r ResolutionChoice) String() string {
	switch r.Kind {
	case ResolutionFixed, ResolutionCustom:
		if r.Width == 0 {
			return "original"
		}
		return strconv.Itoa(r.Width) + "px"
	default:
		return "original"
	}
}

// CompressionSettings is the user's request, before preset resolution.
// CRF and AudioBitrate are only consulted for PresetCustom.
type CompressionSettings struct {
	Preset       QualityPreset
	CRF          int    // 0 = preset fallback
	Resolution   ResolutionChoice
	AudioBitrate string // e.g. "128k"; "" = preset fallback
	Codec        VideoCodec
	MaxFramerate int // 0 = no cap
}

// ResolvedSettings is fully concrete: every preset has been applied.
type ResolvedSettings struct {
	CRF          int
	AudioBitrate string
	MaxWidth     int    // 0 = unconstrained
	VideoCodec   string // encoder identifier, e.g. "libx264"
	MaxFramerate int    // 0 = unconstrained
}
