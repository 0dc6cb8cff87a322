package encoder

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"vidshrink/internal/model"
	"vidshrink/internal/util/bitrate"
)

func TestResolve_PresetTable(t *testing.T) {
	tests := []struct {
		preset    model.QualityPreset
		wantCRF   int
		wantAudio string
	}{
		{preset: model.PresetHigh, wantCRF: 20, wantAudio: "192k"},
		{preset: model.PresetBalanced, wantCRF: 23, wantAudio: "128k"},
		{preset: model.PresetSmall, wantCRF: 28, wantAudio: "96k"},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			// Explicit values must not leak through a non-custom preset.
			for _, crf := range []int{0, 15, 30, 35} {
				for _, ab := range append([]string{""}, bitrate.AudioTokens...) {
					rs, err := Resolve(model.CompressionSettings{
						Preset:       tt.preset,
						CRF:          crf,
						AudioBitrate: ab,
						Resolution:   model.KeepOriginal(),
						Codec:        model.CodecH264,
					})
					if err != nil {
						t.Fatalf("Resolve(crf=%d, ab=%q) error: %v", crf, ab, err)
					}
					if rs.CRF != tt.wantCRF || rs.AudioBitrate != tt.wantAudio {
						t.Errorf("Resolve(crf=%d, ab=%q) = %d/%s, want %d/%s", crf, ab, rs.CRF, rs.AudioBitrate, tt.wantCRF, tt.wantAudio)
					}
				}
			}
		})
	}
}

func TestResolve_CustomUsesExplicitValues(t *testing.T) {
	for crf := MinCRF; crf <= MaxCRF; crf++ {
		for _, ab := range bitrate.AudioTokens {
			rs, err := Resolve(model.CompressionSettings{
				Preset:       model.PresetCustom,
				CRF:          crf,
				AudioBitrate: ab,
				Resolution:   model.KeepOriginal(),
				Codec:        model.CodecH265,
			})
			if err != nil {
				t.Fatalf("Resolve(custom crf=%d ab=%s): %v", crf, ab, err)
			}
			if rs.CRF != crf || rs.AudioBitrate != ab {
				t.Errorf("custom crf=%d ab=%s resolved to %d/%s", crf, ab, rs.CRF, rs.AudioBitrate)
			}
		}
	}
}

func TestResolve_CustomFallbacks(t *testing.T) {
	rs, err := Resolve(model.CompressionSettings{Preset: model.PresetCustom})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rs.CRF != 23 || rs.AudioBitrate != "128k" {
		t.Errorf("custom fallback = %d/%s, want 23/128k", rs.CRF, rs.AudioBitrate)
	}
	if rs.VideoCodec != "libx264" {
		t.Errorf("default codec = %s, want libx264", rs.VideoCodec)
	}
}

func TestResolve_Width(t *testing.T) {
	tests := []struct {
		name string
		res  model.ResolutionChoice
		want int
	}{
		{name: "keep original", res: model.KeepOriginal(), want: 0},
		{name: "zero value is keep", res: model.ResolutionChoice{}, want: 0},
		{name: "1080p", res: model.FixedWidth(1920), want: 1920},
		{name: "720p", res: model.FixedWidth(1280), want: 1280},
		{name: "480p", res: model.FixedWidth(854), want: 854},
		{name: "custom", res: model.CustomWidth(1000), want: 1000},
		{name: "custom zero", res: model.CustomWidth(0), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := Resolve(model.CompressionSettings{Preset: model.PresetBalanced, Resolution: tt.res})
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if rs.MaxWidth != tt.want {
				t.Errorf("MaxWidth = %d, want %d", rs.MaxWidth, tt.want)
			}
		})
	}
}

func TestResolve_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		s         model.CompressionSettings
		wantField string
	}{
		{name: "crf too low", s: model.CompressionSettings{Preset: model.PresetCustom, CRF: 10}, wantField: "crf"},
		{name: "crf too high", s: model.CompressionSettings{Preset: model.PresetCustom, CRF: 40}, wantField: "crf"},
		{name: "crf just below", s: model.CompressionSettings{Preset: model.PresetCustom, CRF: 14}, wantField: "crf"},
		{name: "crf just above", s: model.CompressionSettings{Preset: model.PresetCustom, CRF: 36}, wantField: "crf"},
		{name: "unknown audio", s: model.CompressionSettings{Preset: model.PresetCustom, AudioBitrate: "999k"}, wantField: "audio bitrate"},
		{name: "negative custom width", s: model.CompressionSettings{Preset: model.PresetBalanced, Resolution: model.CustomWidth(-1)}, wantField: "width"},
		{name: "unlisted fixed width", s: model.CompressionSettings{Preset: model.PresetBalanced, Resolution: model.FixedWidth(1000)}, wantField: "width"},
		{name: "negative framerate", s: model.CompressionSettings{Preset: model.PresetBalanced, MaxFramerate: -5}, wantField: "max framerate"},
		{name: "unknown codec", s: model.CompressionSettings{Preset: model.PresetBalanced, Codec: "vp9"}, wantField: "codec"},
		{name: "unknown preset", s: model.CompressionSettings{Preset: "ultra"}, wantField: "preset"},
		{name: "empty preset", s: model.CompressionSettings{}, wantField: "preset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.s)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Resolve() error = %v, want *ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestBuildArgs_Skeleton(t *testing.T) {
	rs := model.ResolvedSettings{CRF: 23, AudioBitrate: "128k", VideoCodec: "libx264"}
	got := BuildArgs("ffmpeg", rs, "/tmp/in.mov", "/tmp/out.mp4")
	want := []string{
		"ffmpeg", "-y", "-i", "/tmp/in.mov",
		"-vcodec", "libx264",
		"-crf", "23",
		"-acodec", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"/tmp/out.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildArgs() =\n%q\nwant\n%q", got, want)
	}
}

func TestBuildArgs_Filters(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		fps      int
		wantVF   string
		wantNoVF bool
	}{
		{name: "no filters", wantNoVF: true},
		{name: "scale only", width: 1280, wantVF: "scale='min(1280,iw)':'-2'"},
		{name: "fps only", fps: 30, wantVF: "fps=fps='min(30,source_fps)'"},
		{name: "scale then fps", width: 854, fps: 24, wantVF: "scale='min(854,iw)':'-2',fps=fps='min(24,source_fps)'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := model.ResolvedSettings{CRF: 23, AudioBitrate: "128k", VideoCodec: "libx264", MaxWidth: tt.width, MaxFramerate: tt.fps}
			args := BuildArgs("ffmpeg", rs, "in.mp4", "out.mp4")

			count := 0
			idx := -1
			for i, a := range args {
				if a == "-vf" {
					count++
					idx = i
				}
			}
			if tt.wantNoVF {
				if count != 0 {
					t.Fatalf("expected no -vf flag, got %q", args)
				}
				return
			}
			if count != 1 {
				t.Fatalf("expected exactly one -vf flag, got %d in %q", count, args)
			}
			if args[idx+1] != tt.wantVF {
				t.Errorf("-vf = %q, want %q", args[idx+1], tt.wantVF)
			}
			if args[idx+1] == "" {
				t.Errorf("-vf must never be empty")
			}
			// Filters sit right before the output path.
			if idx != len(args)-3 || args[len(args)-1] != "out.mp4" {
				t.Errorf("unexpected -vf position in %q", args)
			}
		})
	}
}

func TestBuildArgs_Deterministic(t *testing.T) {
	rs := model.ResolvedSettings{CRF: 30, AudioBitrate: "64k", VideoCodec: "libx265", MaxWidth: 1280, MaxFramerate: 24}
	a := BuildArgs("/usr/bin/ffmpeg", rs, "in", "out")
	b := BuildArgs("/usr/bin/ffmpeg", rs, "in", "out")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("BuildArgs not deterministic:\n%q\n%q", a, b)
	}
}

func TestNewJob_Scenarios(t *testing.T) {
	t.Run("balanced keep original h264", func(t *testing.T) {
		job, err := NewJob("ffmpeg", model.CompressionSettings{
			Preset:     model.PresetBalanced,
			Resolution: model.KeepOriginal(),
			Codec:      model.CodecH264,
		}, "in.mp4", "out.mp4")
		if err != nil {
			t.Fatalf("NewJob: %v", err)
		}
		want := model.ResolvedSettings{CRF: 23, AudioBitrate: "128k", MaxWidth: 0, VideoCodec: "libx264"}
		if job.Settings != want {
			t.Errorf("Settings = %+v, want %+v", job.Settings, want)
		}
		argsStr := strings.Join(job.Argv, " ")
		if strings.Contains(argsStr, "-vf") || strings.Contains(argsStr, "scale=") {
			t.Errorf("unexpected filter in %q", job.Argv)
		}
		if !strings.Contains(argsStr, "-vcodec libx264") {
			t.Errorf("missing libx264 in %q", job.Argv)
		}
	})

	t.Run("custom 720p 24fps h265", func(t *testing.T) {
		job, err := NewJob("ffmpeg", model.CompressionSettings{
			Preset:       model.PresetCustom,
			CRF:          30,
			Resolution:   model.FixedWidth(1280),
			AudioBitrate: "64k",
			Codec:        model.CodecH265,
			MaxFramerate: 24,
		}, "in.mp4", "out.mp4")
		if err != nil {
			t.Fatalf("NewJob: %v", err)
		}
		want := []string{
			"ffmpeg", "-y", "-i", "in.mp4",
			"-vcodec", "libx265",
			"-crf", "30",
			"-acodec", "aac",
			"-b:a", "64k",
			"-movflags", "+faststart",
			"-vf", "scale='min(1280,iw)':'-2',fps=fps='min(24,source_fps)'",
			"out.mp4",
		}
		if !reflect.DeepEqual(job.Argv, want) {
			t.Errorf("Argv =\n%q\nwant\n%q", job.Argv, want)
		}
		if job.InputPath != "in.mp4" || job.OutputPath != "out.mp4" {
			t.Errorf("paths = %q -> %q", job.InputPath, job.OutputPath)
		}
	})

	t.Run("invalid settings build nothing", func(t *testing.T) {
		job, err := NewJob("ffmpeg", model.CompressionSettings{Preset: model.PresetCustom, CRF: 10}, "in", "out")
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if job.Argv != nil {
			t.Errorf("expected no argv on validation failure, got %q", job.Argv)
		}
	})
}

func TestPresetDefaults(t *testing.T) {
	if d := PresetDefaults(model.PresetCustom); d.CRF != 23 || d.AudioBitrate != "128k" {
		t.Errorf("custom defaults = %+v", d)
	}
	for _, p := range model.Presets {
		d := PresetDefaults(p)
		if d.CRF < MinCRF || d.CRF > MaxCRF || !bitrate.IsAllowedAudio(d.AudioBitrate) {
			t.Errorf("preset %s has out-of-range defaults %+v", p, d)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	cases := []struct {
		name      string
		preset    model.QualityPreset
		crf       int
		audio     string
		wantPre   model.QualityPreset
		wantCRF   int
		wantAudio string
	}{
		{"no overrides keeps preset", model.PresetHigh, 0, "", model.PresetHigh, 0, ""},
		{"crf on named preset", model.PresetSmall, 18, "", model.PresetCustom, 18, "96k"},
		{"audio on named preset", model.PresetHigh, 0, "64k", model.PresetCustom, 20, "64k"},
		{"both on custom", model.PresetCustom, 30, "192k", model.PresetCustom, 30, "192k"},
		{"crf only on custom", model.PresetCustom, 30, "", model.PresetCustom, 30, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyOverrides(model.CompressionSettings{Preset: tc.preset}, tc.crf, tc.audio)
			if got.Preset != tc.wantPre || got.CRF != tc.wantCRF || got.AudioBitrate != tc.wantAudio {
				t.Errorf("got %+v, want preset=%s crf=%d audio=%q", got, tc.wantPre, tc.wantCRF, tc.wantAudio)
			}
			if _, err := Resolve(got); err != nil {
				t.Errorf("Resolve: %v", err)
			}
		})
	}
}
