package generate

import (
	"context"
	"encoding/json"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	cli "github.com/urfave/cli/v3"

	"github.com/ByLCY/infobox/config"
	"github.com/ByLCY/infobox/layout"
	"github.com/ByLCY/infobox/sink"
	"github.com/ByLCY/infobox/state"
)

const sample = `Verokarhujen luokitus
1 Pakkotyöverokarhut
2 Tuottoverokarhut
2.1 Pelto-, metsä- ja karjaverokarhut
2.2 Elinkeinoverokarhut
`

// newApp returns application context with built-in fonts only, so results do
// not depend on fonts installed on the host.
func newApp(t *testing.T, stdin io.Reader) (context.Context, *cli.Command) {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Fonts.System = nil
	env.Cfg = cfg

	root := &cli.Command{
		Name:     "infobox",
		Writer:   io.Discard,
		Reader:   stdin,
		Commands: []*cli.Command{Command()},
	}
	return ctx, root
}

func writeSource(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "outline.txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_WritesPNG(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, sample)
	dst := filepath.Join(dir, "out", "box.png")
	debug := filepath.Join(dir, "layout.json")

	ctx, app := newApp(t, nil)
	if err := app.Run(ctx, []string{"infobox", "render", "--width", "600", "--debug-layout", debug, src, dst}); err != nil {
		t.Fatalf("render error = %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Output not written: %v", err)
	}
	if kind, _ := filetype.Match(data); kind.Extension != "png" {
		t.Fatalf("Output type = %q, want png", kind.Extension)
	}
	img, err := png.Decode(strings.NewReader(string(data)))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 600 {
		t.Errorf("Width = %d, want 600", img.Bounds().Dx())
	}
	if dpi, ok := sink.DPIFromPNG(data); !ok || dpi != 300 {
		t.Errorf("DPI = %d, %v; want 300", dpi, ok)
	}

	raw, err := os.ReadFile(debug)
	if err != nil {
		t.Fatalf("Debug layout not written: %v", err)
	}
	var spec layout.Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		t.Fatalf("Debug layout is not JSON: %v", err)
	}
	if spec.TotalHeight != img.Bounds().Dy() || len(spec.ItemOffsets) != 4 {
		t.Errorf("Debug layout does not match image: height %d vs %d, %d offsets", spec.TotalHeight, img.Bounds().Dy(), len(spec.ItemOffsets))
	}
}

func TestRun_DefaultNameFromTitle(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, sample)

	ctx, app := newApp(t, nil)
	args := []string{"infobox", "render", "--title", "Äänet ${year}", "--data", `{"year": 2026}`, "--dpi", "0", src, dir}
	if err := app.Run(ctx, args); err != nil {
		t.Fatalf("render error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "aanet-2026_infobox.png"))
	if err != nil {
		t.Fatalf("Output with derived name not written: %v", err)
	}
	if _, ok := sink.DPIFromPNG(data); ok {
		t.Error("DPI tag must be omitted with --dpi 0")
	}
}

// leftovers lists default-named outputs in the current directory.
func leftovers(t *testing.T) []string {
	t.Helper()
	names, err := filepath.Glob("*_infobox.*")
	if err != nil {
		t.Fatal(err)
	}
	return names
}

func TestRun_ReadsStdinAndHonoursExtension(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "box.tif")
	before := len(leftovers(t))

	ctx, app := newApp(t, strings.NewReader("1 Karhu\n1.1 Pentu\n"))
	if err := app.Run(ctx, []string{"infobox", "render", "--preset", "compact", "--stdin", dst}); err != nil {
		t.Fatalf("render error = %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if kind, _ := filetype.Match(data); kind.Extension != "tif" {
		t.Fatalf("Output type = %q, want tif", kind.Extension)
	}
	if got := leftovers(t); len(got) != before {
		t.Fatalf("Output leaked into current directory: %v", got)
	}
}

func TestRun_DashIsNotStdin(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "box.png")
	before := len(leftovers(t))

	ctx, app := newApp(t, strings.NewReader("1 Karhu\n"))
	if err := app.Run(ctx, []string{"infobox", "render", "-", dst}); err == nil {
		t.Fatal("Expected error for \"-\" source")
	}
	if _, err := os.Stat(dst); err == nil {
		t.Error("Destination must not be written")
	}
	if got := leftovers(t); len(got) != before {
		t.Fatalf("Output leaked into current directory: %v", got)
	}
}

func TestRun_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, sample)
	dst := filepath.Join(dir, "box.png")
	if err := os.WriteFile(dst, []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, app := newApp(t, nil)
	if err := app.Run(ctx, []string{"infobox", "render", src, dst}); err == nil {
		t.Fatal("Expected error for existing destination")
	}
	if data, _ := os.ReadFile(dst); string(data) != "keep me" {
		t.Fatal("Existing destination was modified")
	}

	ctx, app = newApp(t, nil)
	if err := app.Run(ctx, []string{"infobox", "render", "--overwrite", src, dst}); err != nil {
		t.Fatalf("render --overwrite error = %v", err)
	}
	if data, _ := os.ReadFile(dst); string(data) == "keep me" {
		t.Fatal("Destination was not overwritten")
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, sample)
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("no numbers\nat all\n"), 0644); err != nil {
		t.Fatal(err)
	}
	binary := filepath.Join(dir, "binary.txt")
	if err := os.WriteFile(binary, []byte{'1', ' ', 0xff, 0xfe}, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"no source", []string{}},
		{"missing source", []string{filepath.Join(dir, "missing.txt"), filepath.Join(dir, "a.png")}},
		{"nothing to render", []string{empty, filepath.Join(dir, "b.png")}},
		{"invalid utf8", []string{binary, filepath.Join(dir, "c.png")}},
		{"narrow", []string{"--width", "100", src, filepath.Join(dir, "d.png")}},
		{"zero width", []string{"--width", "0", src, filepath.Join(dir, "h.png")}},
		{"unknown preset", []string{"--preset", "baroque", src, filepath.Join(dir, "e.png")}},
		{"bad data", []string{"--data", "{", src, filepath.Join(dir, "f.png")}},
		{"lossy", []string{src, filepath.Join(dir, "g.jpg")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, app := newApp(t, nil)
			if err := app.Run(ctx, append([]string{"infobox", "render"}, tt.args...)); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}
}

func TestBuildOutputPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		dst, title string
		format     imaging.Format
		want       string
	}{
		{"", "Verokarhut", imaging.PNG, "verokarhut_infobox.png"},
		{"", "", imaging.PNG, "infobox.png"},
		{"", "Verokarhut", imaging.BMP, "verokarhut_infobox.bmp"},
		{dir, "Verokarhut", imaging.PNG, filepath.Join(dir, "verokarhut_infobox.png")},
		{"report", "Verokarhut", imaging.TIFF, "report.tif"},
		{"report.png", "Verokarhut", imaging.PNG, "report.png"},
	}
	for _, tt := range tests {
		if got := buildOutputPath(tt.dst, tt.title, tt.format); got != tt.want {
			t.Errorf("buildOutputPath(%q, %q) = %q, want %q", tt.dst, tt.title, got, tt.want)
		}
	}
}

func TestOutputFormat(t *testing.T) {
	dir := t.TempDir()
	if f, err := outputFormat("", "bmp"); err != nil || f != imaging.BMP {
		t.Errorf("outputFormat(\"\", bmp) = %v, %v", f, err)
	}
	if f, err := outputFormat(dir, "tiff"); err != nil || f != imaging.TIFF {
		t.Errorf("outputFormat(dir, tiff) = %v, %v", f, err)
	}
	if f, err := outputFormat("box.bmp", "png"); err != nil || f != imaging.BMP {
		t.Errorf("extension must win over configured format: %v, %v", f, err)
	}
	if _, err := outputFormat("box.gif", "png"); err == nil {
		t.Error("Expected error for gif destination")
	}
}
