package media

import "testing"

func TestInputExt(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "mp4", in: "clip.mp4", want: ".mp4"},
		{name: "upper case mov", in: "Holiday.MOV", want: ".mov"},
		{name: "mkv with dirs", in: "/home/u/videos/a.mkv", want: ".mkv"},
		{name: "no extension", in: "recording", want: ".mp4"},
		{name: "unsupported", in: "notes.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InputExt(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("InputExt(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("InputExt(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDownloadName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "clip.mov", want: "compressed_clip.mov"},
		{in: "dir/clip.mp4", want: "compressed_clip.mp4"},
		{in: `C:\Users\me\clip.avi`, want: "compressed_clip.avi"},
		{in: "", want: "compressed_video.mp4"},
	}
	for _, tt := range tests {
		if got := DownloadName(tt.in); got != tt.want {
			t.Errorf("DownloadName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
