// Package generate implements the render command: it reads an outline, turns
// it into an infobox image and writes the result.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/ByLCY/infobox/config"
	"github.com/ByLCY/infobox/infobox"
	"github.com/ByLCY/infobox/layout"
	"github.com/ByLCY/infobox/outline"
	"github.com/ByLCY/infobox/sink"
	"github.com/ByLCY/infobox/state"
)

// Command describes the render subcommand.
func Command() *cli.Command {
	return &cli.Command{
		Name:   "render",
		Usage:  "Renders numbered outline as infobox image",
		Action: Run,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Aliases: []string{"w"},
				Usage: fmt.Sprintf("output width in `PIXELS` (%d-%d)", infobox.MinWidth, infobox.MaxWidth)},
			&cli.StringFlag{Name: "preset", Aliases: []string{"p"},
				Usage: "layout `NAME` (" + strings.Join(layout.PresetNames(), ", ") + ")"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "title `TEXT` above the list"},
			&cli.StringFlag{Name: "bold", Usage: "bold font `FILE` for title and main entries"},
			&cli.StringFlag{Name: "regular", Usage: "regular font `FILE` for sub entries"},
			&cli.IntFlag{Name: "dpi", Usage: "print resolution stored in PNG output, 0 to omit"},
			&cli.StringFlag{Name: "data", Usage: "`JSON` bound to ${...} placeholders, @FILE reads it from a file"},
			&cli.StringFlag{Name: "debug-layout", Usage: "write computed layout to `FILE` (JSON)"},
			&cli.BoolFlag{Name: "report-skipped", Usage: "log every line that was dropped for lacking a leading number"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite destination if it exists"},
			&cli.BoolFlag{Name: "stdin", Usage: "read outline from STDIN, SOURCE must be omitted"},
		},
		ArgsUsage: "SOURCE [DESTINATION]",
		CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to UTF-8 text file with one "<number> <label>" entry per line
    with --stdin outline is read from STDIN and the first argument is DESTINATION

DESTINATION:
    output file or directory, if absent - "<title>_infobox.png" in current directory
    extension selects format (png, tif, tiff, bmp), otherwise configured format is used
`, cli.CommandHelpTemplate),
	}
}

// Run is the render command action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	if env.Cfg == nil {
		if env.Cfg, err = config.LoadConfiguration(""); err != nil {
			return fmt.Errorf("unable to prepare configuration: %w", err)
		}
	}
	log := env.Log.Named("render")

	args := cmd.Args().Slice()
	src, fromStdin := stdinSource, cmd.Bool("stdin")
	if !fromStdin {
		if len(args) == 0 {
			return errors.New("no input source has been specified")
		}
		src, args = args[0], args[1:]
	}
	var dst string
	if len(args) > 0 {
		dst = args[0]
	}
	if len(args) > 1 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", args[1:]))
	}

	cfg := overlayFlags(*env.Cfg, cmd)

	var text string
	if fromStdin {
		text, err = readStdin(cmd.Root().Reader)
	} else {
		text, err = readSource(src)
	}
	if err != nil {
		return err
	}
	format, err := outputFormat(dst, cfg.Render.Format)
	if err != nil {
		return err
	}
	opts, err := buildOptions(&cfg, cmd.String("data"), log)
	if err != nil {
		return err
	}
	opts.Sink = sink.Raster{Format: format, DPI: cfg.Render.DPI}

	// do not start rendering if we were interrupted while preparing
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := infobox.Generate(text, opts)
	if err != nil {
		return fmt.Errorf("unable to render '%s': %w", src, err)
	}
	if len(out.Skipped) > 0 {
		log.Info("Lines without leading number were skipped", zap.Int("count", len(out.Skipped)))
	}

	if path := cmd.String("debug-layout"); len(path) > 0 {
		if err := layout.WriteDebugJSON(out.Spec, path); err != nil {
			return err
		}
		log.Debug("Layout written", zap.String("file", path))
	}

	target := buildOutputPath(dst, out.Spec.Title, format)
	if !cmd.Bool("overwrite") {
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("destination '%s' already exists, use --overwrite to replace it", target)
		}
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("unable to create destination directory '%s': %w", dir, err)
		}
	}
	if err := os.WriteFile(target, out.Image, 0644); err != nil {
		return fmt.Errorf("unable to write '%s': %w", target, err)
	}

	main, sub := outline.Counts(out.Items)
	log.Info("Infobox rendered",
		zap.String("file", target),
		zap.Int("width", out.Spec.TotalWidth),
		zap.Int("height", out.Spec.TotalHeight),
		zap.Int("main", main),
		zap.Int("sub", sub),
		zap.Stringer("font", out.Fonts.Main.Tier),
	)
	return nil
}

// overlayFlags returns a copy of cfg with explicitly set flags on top.
func overlayFlags(cfg config.Config, cmd *cli.Command) config.Config {
	if cmd.IsSet("preset") {
		cfg.Render.Preset = cmd.String("preset")
	}
	if cmd.IsSet("title") {
		cfg.Render.Title = cmd.String("title")
	}
	if cmd.IsSet("width") {
		cfg.Render.Width = cmd.Int("width")
	}
	if cmd.IsSet("dpi") {
		cfg.Render.DPI = cmd.Int("dpi")
	}
	if cmd.IsSet("bold") {
		cfg.Fonts.Bold = cmd.String("bold")
	}
	if cmd.IsSet("regular") {
		cfg.Fonts.Regular = cmd.String("regular")
	}
	if cmd.Bool("report-skipped") {
		cfg.Render.Skipped = outline.PolicyCollect.String()
	}
	return cfg
}

func buildOptions(cfg *config.Config, data string, log *zap.Logger) (infobox.Options, error) {
	lc, err := cfg.Layout()
	if err != nil {
		return infobox.Options{}, err
	}
	policy, err := cfg.SkipPolicy()
	if err != nil {
		return infobox.Options{}, err
	}
	bound, err := parseData(data)
	if err != nil {
		return infobox.Options{}, err
	}
	return infobox.Options{
		Width:  cfg.Render.Width,
		Config: lc,
		Fonts:  cfg.Resolver(log),
		Policy: policy,
		Data:   bound,
		Log:    log,
	}, nil
}

func parseData(data string) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	raw := []byte(data)
	if name, ok := strings.CutPrefix(data, "@"); ok {
		var err error
		if raw, err = os.ReadFile(name); err != nil {
			return nil, fmt.Errorf("unable to read data file '%s': %w", name, err)
		}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("unable to parse data JSON: %w", err)
	}
	return v, nil
}

// stdinSource names the source in messages when --stdin is given.
const stdinSource = "STDIN"

func readStdin(r io.Reader) (string, error) {
	if r == nil {
		r = os.Stdin
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("unable to read source '%s': %w", stdinSource, err)
	}
	return validText(stdinSource, data)
}

func readSource(src string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("unable to read source '%s': %w", src, err)
	}
	return validText(src, data)
}

func validText(src string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("source '%s' is not valid UTF-8", src)
	}
	return string(data), nil
}
