package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMakeTempWorkdir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "base")
	dir, err := MakeTempWorkdir(base, "job")
	if err != nil {
		t.Fatalf("MakeTempWorkdir: %v", err)
	}
	if filepath.Dir(dir) != base {
		t.Errorf("workdir %q not under %q", dir, base)
	}
	if !strings.HasPrefix(filepath.Base(dir), "job-") {
		t.Errorf("workdir %q missing prefix", dir)
	}
	other, err := MakeTempWorkdir(base, "job")
	if err != nil {
		t.Fatalf("MakeTempWorkdir: %v", err)
	}
	if other == dir {
		t.Errorf("expected unique workdirs, got %q twice", dir)
	}
}

func TestWriteTempFile(t *testing.T) {
	dir := t.TempDir()
	path, n, err := WriteTempFile(dir, "input-*.mov", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("WriteTempFile: %v", err)
	}
	if n != 5 {
		t.Errorf("wrote %d bytes, want 5", n)
	}
	if filepath.Ext(path) != ".mov" {
		t.Errorf("path %q lost its suffix", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Errorf("content = %q, %v", data, err)
	}
}

func TestReserveTempPath(t *testing.T) {
	dir := t.TempDir()
	path, err := ReserveTempPath(dir, "output-*.mp4")
	if err != nil {
		t.Fatalf("ReserveTempPath: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("reserved path should not exist, stat err = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("reserved path %q not in %q", path, dir)
	}
}

func TestRemoveIfExistsAndFileSize(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f.bin")
	if err := RemoveIfExists(p); err != nil {
		t.Errorf("RemoveIfExists on missing file: %v", err)
	}
	if err := os.WriteFile(p, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	if n, err := FileSize(p); err != nil || n != 3 {
		t.Errorf("FileSize = %d, %v", n, err)
	}
	if _, err := FileSize(dir); err == nil {
		t.Error("FileSize on a directory should fail")
	}
	if err := RemoveIfExists(p); err != nil {
		t.Fatalf("RemoveIfExists: %v", err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Errorf("file still present")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	n, err := CopyFile(dst, src)
	if err != nil || n != 7 {
		t.Fatalf("CopyFile = %d, %v", n, err)
	}
	if got, _ := os.ReadFile(dst); string(got) != "payload" {
		t.Errorf("dst = %q", got)
	}
}
