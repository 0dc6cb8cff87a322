package encoder

import (
	"errors"
	"testing"

	"vidshrink/internal/model"
)

func TestParseSettings(t *testing.T) {
	cases := []struct {
		name    string
		values  map[string]string
		want    model.CompressionSettings
		wantErr string // field of the expected ValidationError
	}{
		{
			name: "empty means balanced defaults",
			want: model.CompressionSettings{Preset: model.PresetBalanced, Resolution: model.KeepOriginal(), Codec: model.CodecH264},
		},
		{
			name:   "named preset with resolution and fps",
			values: map[string]string{"preset": "Small Size", "resolution": "480p", "codec": "hevc", "max_fps": "24"},
			want:   model.CompressionSettings{Preset: model.PresetSmall, Resolution: model.FixedWidth(854), Codec: model.CodecH265, MaxFramerate: 24},
		},
		{
			name:   "crf override",
			values: map[string]string{"preset": "high", "crf": "17"},
			want:   model.CompressionSettings{Preset: model.PresetCustom, CRF: 17, AudioBitrate: "192k", Resolution: model.KeepOriginal(), Codec: model.CodecH264},
		},
		{
			name:   "custom width",
			values: map[string]string{"preset": "custom", "resolution": "1000px"},
			want:   model.CompressionSettings{Preset: model.PresetCustom, Resolution: model.CustomWidth(1000), Codec: model.CodecH264},
		},
		{name: "bad preset", values: map[string]string{"preset": "ultra"}, wantErr: "preset"},
		{name: "bad resolution", values: map[string]string{"resolution": "4k"}, wantErr: "resolution"},
		{name: "bad codec", values: map[string]string{"codec": "vp9"}, wantErr: "codec"},
		{name: "bad crf", values: map[string]string{"crf": "low"}, wantErr: "crf"},
		{name: "bad fps", values: map[string]string{"max_fps": "fast"}, wantErr: "max framerate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSettings(func(k string) string { return tc.values[k] })
			if tc.wantErr != "" {
				var ve *ValidationError
				if !errors.As(err, &ve) || ve.Field != tc.wantErr {
					t.Fatalf("err = %v, want ValidationError on %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSettings: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
