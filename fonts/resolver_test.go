package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/infobox/layout"
)

// emptyHost 模拟既没有字体文件也没有已安装字体的主机。
type emptyHost struct {
	existsCalls int
	systemCalls []string
}

func (h *emptyHost) Exists(string) bool { h.existsCalls++; return false }

func (h *emptyHost) Load(*canvas.FontFamily, string, canvas.FontStyle) error {
	return errors.New("no files")
}

func (h *emptyHost) LoadSystem(_ *canvas.FontFamily, name string, _ canvas.FontStyle) error {
	h.systemCalls = append(h.systemCalls, name)
	return errors.New("no system fonts")
}

// systemHost 只安装了一个字族。
type systemHost struct {
	emptyHost
	installed string
}

func (h *systemHost) LoadSystem(family *canvas.FontFamily, name string, style canvas.FontStyle) error {
	h.systemCalls = append(h.systemCalls, name)
	if name != h.installed {
		return errors.New("not installed")
	}
	return family.LoadFont(Builtin(style), 0, style)
}

func TestResolveFallsThroughToBuiltin(t *testing.T) {
	host := &emptyHost{}
	r := NewResolver(Paths{Bold: "MinionPro-Bold.otf", Regular: "MinionPro-Regular.otf"}, WithSource(host))

	for _, role := range []Role{RoleTitle, RoleMain, RoleSub} {
		face := r.Resolve(role, 28)
		if face == nil {
			t.Fatalf("%s: resolver returned nil", role)
		}
		if face.Tier != TierBuiltin || face.Name != BuiltinName {
			t.Fatalf("%s: expected built-in tier, got %s (%s)", role, face.Tier, face.Name)
		}
		w, h := face.Measure("Pakkotyöverokarhut")
		if w <= 0 || h <= 0 {
			t.Fatalf("%s: built-in face must measure text, got w=%g h=%g", role, w, h)
		}
		if face.Ascent() <= 0 {
			t.Fatalf("%s: ascent must be positive", role)
		}
	}
	if host.existsCalls != 3 {
		t.Fatalf("expected file tier to be checked once per role, got %d", host.existsCalls)
	}
	if len(host.systemCalls) != 3*len(DefaultSystemNames) {
		t.Fatalf("expected every system name to be tried, got %v", host.systemCalls)
	}
	if host.systemCalls[0] != DefaultSystemNames[0] {
		t.Fatalf("system names tried out of order: %v", host.systemCalls)
	}
}

func TestResolveClampsSize(t *testing.T) {
	r := NewResolver(Paths{}, WithSource(&emptyHost{}), WithSystemNames(nil))
	if face := r.Resolve(RoleSub, 0); face.SizePx != 1 {
		t.Fatalf("expected size clamped to 1, got %d", face.SizePx)
	}
	if face := r.Resolve(RoleSub, -5); face.SizePx != 1 {
		t.Fatalf("expected size clamped to 1, got %d", face.SizePx)
	}
}

func TestResolveSystemTierInOrder(t *testing.T) {
	host := &systemHost{installed: "DejaVu Serif"}
	r := NewResolver(Paths{}, WithSource(host))
	face := r.Resolve(RoleMain, 20)
	if face.Tier != TierSystem || face.Name != "DejaVu Serif" {
		t.Fatalf("expected system tier DejaVu Serif, got %s %s", face.Tier, face.Name)
	}
	want := []string{"Minion Pro", "Times New Roman", "Liberation Serif", "DejaVu Serif"}
	if len(host.systemCalls) != len(want) {
		t.Fatalf("unexpected lookup sequence: %v", host.systemCalls)
	}
	for i := range want {
		if host.systemCalls[i] != want[i] {
			t.Fatalf("unexpected lookup sequence: %v", host.systemCalls)
		}
	}
}

func TestResolveFileTier(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "body.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(Paths{Regular: "body.ttf", Bold: "missing.ttf"},
		WithSource(OSSource{BaseDir: dir}), WithSystemNames(nil))

	sub := r.Resolve(RoleSub, 26)
	if sub.Tier != TierFile || sub.Name != "body.ttf" {
		t.Fatalf("expected file tier, got %s %s", sub.Tier, sub.Name)
	}
	main := r.Resolve(RoleMain, 28)
	if main.Tier != TierBuiltin {
		t.Fatalf("missing bold file must fall back to built-in, got %s", main.Tier)
	}
}

func TestResolveBrokenFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.ttf"), []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(Paths{Bold: filepath.Join(dir, "broken.ttf")}, WithSystemNames(nil))
	if face := r.Resolve(RoleTitle, 42); face.Tier != TierBuiltin {
		t.Fatalf("broken file must fall back to built-in, got %s", face.Tier)
	}
}

func TestResolveSetUsesScaledSizes(t *testing.T) {
	spec, err := layout.Build(nil, 1600, layout.Classic())
	if err != nil {
		t.Fatal(err)
	}
	set := NewResolver(Paths{}, WithSource(&emptyHost{})).ResolveSet(spec.Metrics)
	if set.Title.SizePx != 84 || set.Main.SizePx != 56 || set.Sub.SizePx != 52 {
		t.Fatalf("unexpected sizes: %d %d %d", set.Title.SizePx, set.Main.SizePx, set.Sub.SizePx)
	}
	if set.Title.Role != RoleTitle || set.Sub.Role != RoleSub {
		t.Fatalf("roles not assigned: %s %s", set.Title.Role, set.Sub.Role)
	}
	tw, _ := set.Title.Measure("Verokarhut")
	sw, _ := set.Sub.Measure("Verokarhut")
	if tw <= sw {
		t.Fatalf("title face should be wider than sub face: %g <= %g", tw, sw)
	}
}

func TestPathsForRole(t *testing.T) {
	p := Paths{Bold: "b.otf", Regular: "r.otf"}
	if p.For(RoleTitle) != "b.otf" || p.For(RoleMain) != "b.otf" || p.For(RoleSub) != "r.otf" {
		t.Fatalf("unexpected path mapping")
	}
}
