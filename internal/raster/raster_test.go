// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

type fakeRunner struct {
	bins   map[string]bool
	calls  [][]string
	runErr error
	stderr string
	onRun  func(name string, args []string)
}

func (f *fakeRunner) LookPath(bin string) (string, error) {
	if f.bins[bin] {
		return "/usr/bin/" + bin, nil
	}
	return "", fmt.Errorf("%s: not found", bin)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.onRun != nil {
		f.onRun(name, args)
	}
	if f.runErr != nil {
		return nil, []byte(f.stderr), f.runErr
	}
	return nil, nil, nil
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		bins     map[string]bool
		tool     types.RasterTool
		want     string
		wantErr  bool
		noRender bool
	}{
		{name: "auto prefers pdftoppm", bins: map[string]bool{"pdftoppm": true, "mutool": true}, tool: types.RasterAuto, want: "pdftoppm"},
		{name: "auto falls back to mutool", bins: map[string]bool{"mutool": true}, tool: types.RasterAuto, want: "mutool"},
		{name: "auto with neither", bins: map[string]bool{}, tool: types.RasterAuto, wantErr: true, noRender: true},
		{name: "pinned pdftoppm", bins: map[string]bool{"pdftoppm": true, "mutool": true}, tool: types.RasterPdftoppm, want: "pdftoppm"},
		{name: "pinned mutool", bins: map[string]bool{"pdftoppm": true, "mutool": true}, tool: types.RasterMutool, want: "mutool"},
		{name: "pinned but missing", bins: map[string]bool{"mutool": true}, tool: types.RasterPdftoppm, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Detect(&fakeRunner{bins: tt.bins}, tt.tool)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.noRender && !errors.Is(err, ErrNoRenderer) {
					t.Errorf("error = %v, want ErrNoRenderer", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if r.Name() != tt.want {
				t.Errorf("Name = %q, want %q", r.Name(), tt.want)
			}
		})
	}
}

func TestPdftoppmRender(t *testing.T) {
	dir := t.TempDir()
	run := &fakeRunner{
		onRun: func(name string, args []string) {
			base := args[len(args)-1]
			os.WriteFile(base+".png", []byte("png"), 0o644)
		},
	}

	r := &pdftoppm{run: run}
	out, err := r.Render(context.Background(), "/tmp/in.pdf", 3, 300, dir)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := filepath.Join(dir, "page_0003.png")
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output file missing: %v", err)
	}

	wantCall := []string{
		"pdftoppm",
		"-f", "3", "-l", "3", "-r", "300", "-png", "-singlefile",
		"/tmp/in.pdf", filepath.Join(dir, "page_0003"),
	}
	if len(run.calls) != 1 || !reflect.DeepEqual(run.calls[0], wantCall) {
		t.Errorf("calls = %v, want %v", run.calls, wantCall)
	}
}

func TestPdftoppmNoOutput(t *testing.T) {
	r := &pdftoppm{run: &fakeRunner{}}
	_, err := r.Render(context.Background(), "/tmp/in.pdf", 1, 300, t.TempDir())

	var perr *PageError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *PageError", err)
	}
	if perr.Page != 1 {
		t.Errorf("Page = %d, want 1", perr.Page)
	}
}

func TestMutoolRender(t *testing.T) {
	dir := t.TempDir()
	run := &fakeRunner{
		onRun: func(name string, args []string) {
			for i, a := range args {
				if a == "-o" {
					os.WriteFile(args[i+1], []byte("png"), 0o644)
				}
			}
		},
	}

	r := &mutool{run: run}
	out, err := r.Render(context.Background(), "/tmp/in.pdf", 7, 200, dir)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := filepath.Join(dir, "page_0007.png")
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	wantCall := []string{
		"mutool", "draw", "-o", want, "-r", "200", "/tmp/in.pdf", "7",
	}
	if len(run.calls) != 1 || !reflect.DeepEqual(run.calls[0], wantCall) {
		t.Errorf("calls = %v, want %v", run.calls, wantCall)
	}
}

func TestRenderFailure(t *testing.T) {
	run := &fakeRunner{
		runErr: errors.New("exit status 1"),
		stderr: "Syntax Error: couldn't read xref table\nmore noise",
	}

	r := &pdftoppm{run: run}
	_, err := r.Render(context.Background(), "/tmp/bad.pdf", 5, 300, t.TempDir())

	var perr *PageError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *PageError", err)
	}
	if perr.Page != 5 {
		t.Errorf("Page = %d, want 5", perr.Page)
	}
	if msg := err.Error(); !strings.Contains(msg, "couldn't read xref table") {
		t.Errorf("error %q does not carry stderr hint", msg)
	}
	if msg := err.Error(); strings.Contains(msg, "more noise") {
		t.Errorf("error %q carries more than the first stderr line", msg)
	}
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestEnhanceUpscalesSmallRenders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.png")
	writeTestPNG(t, path, 40, 60)

	if err := Enhance(path); err != nil {
		t.Fatalf("Enhance: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding enhanced image: %v", err)
	}

	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("enhanced image is %T, want *image.Gray", img)
	}
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 120 {
		t.Errorf("bounds = %dx%d, want 80x120", b.Dx(), b.Dy())
	}
}

func TestEnhanceKeepsLargeRenders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "large.png")
	writeTestPNG(t, path, 1200, 1050)

	if err := Enhance(path); err != nil {
		t.Fatalf("Enhance: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding enhanced image: %v", err)
	}

	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("enhanced image is %T, want *image.Gray", img)
	}
	if b := img.Bounds(); b.Dx() != 1200 || b.Dy() != 1050 {
		t.Errorf("bounds = %dx%d, want 1200x1050", b.Dx(), b.Dy())
	}
}

func TestEnhanceRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	if err := os.WriteFile(path, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Enhance(path); err == nil {
		t.Error("expected error for non-image input")
	}
}
