package util

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{name: "empty", argv: nil, want: ""},
		{name: "plain", argv: []string{"ffmpeg", "-y", "-i", "in.mp4"}, want: "ffmpeg -y -i in.mp4"},
		{
			name: "filter with quotes",
			argv: []string{"ffmpeg", "-vf", "scale='min(1280,iw)':'-2'"},
			want: `ffmpeg -vf 'scale='\''min(1280,iw)'\'':'\''-2'\'''`,
		},
		{name: "space in path", argv: []string{"ffmpeg", "/tmp/my clip.mp4"}, want: "ffmpeg '/tmp/my clip.mp4'"},
		{name: "empty arg", argv: []string{"ffmpeg", ""}, want: "ffmpeg ''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quote(tt.argv); got != tt.want {
				t.Errorf("Quote(%q) = %s, want %s", tt.argv, got, tt.want)
			}
		})
	}
}

func TestRunCapturesStreams(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	var echo bytes.Buffer
	res, err := Run(context.Background(), CmdSpec{
		Path: sh,
		Args: []string{"-c", `printf 'out\n'; printf 'frame=1\rframe=2\nboom\n' >&2; exit 3`},
		Echo: &echo,
	})
	if err == nil {
		t.Fatal("expected an error for exit 3")
	}
	if res.Code != 3 {
		t.Errorf("Code = %d, want 3", res.Code)
	}
	if got := string(res.Stdout); got != "out\n" {
		t.Errorf("Stdout = %q", got)
	}
	if got := string(res.Stderr); got != "frame=1\rframe=2\nboom\n" {
		t.Errorf("Stderr = %q, want it byte for byte", got)
	}
	if !strings.HasPrefix(echo.String(), "+ "+sh+" -c ") || !strings.Contains(echo.String(), "boom") {
		t.Errorf("echo = %q", echo.String())
	}
}

func TestRunMissingBinary(t *testing.T) {
	res, err := Run(context.Background(), CmdSpec{Path: "/nonexistent/vidshrink-encoder"})
	if err == nil || res.Code != -1 {
		t.Fatalf("Run() = %+v, %v; want code -1 and an error", res, err)
	}
}
