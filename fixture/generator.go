// Package fixture produces the on-disk QR test images and tracks them in a
// manifest next to the files.
package fixture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/qrlab/qrgen/qr"
)

// Artifact is one generated image file plus the parameters that produced it.
// Entries resized from another artifact carry Source instead of the encoding
// parameters.
type Artifact struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Payload    string    `json:"payload,omitempty"`
	Version    int       `json:"version,omitempty"`
	Level      string    `json:"level,omitempty"`
	ModuleSize int       `json:"module_size,omitempty"`
	Border     int       `json:"border,omitempty"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Source     string    `json:"source,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	img image.Image
}

// Image returns the in-memory raster, or nil for artifacts loaded back from
// a manifest file.
func (a *Artifact) Image() image.Image {
	return a.img
}

// Generator encodes payloads and writes PNG artifacts into a single output
// directory.
type Generator struct {
	dir      string
	manifest *Manifest
	out      io.Writer
	log      *slog.Logger
}

// NewGenerator returns a Generator writing into dir. Status lines for each
// produced artifact go to out; pass io.Discard to silence them.
func NewGenerator(dir string, manifest *Manifest, out io.Writer, log *slog.Logger) *Generator {
	return &Generator{dir: dir, manifest: manifest, out: out, log: log}
}

// Generate encodes payload under cfg, renders it, and writes the PNG to
// <dir>/<name>. The symbol and raster are built fully before the file is
// created, so an oversized payload cannot leave a partial artifact behind.
func (g *Generator) Generate(payload string, cfg qr.Config, name string) (*Artifact, error) {
	sym, err := qr.Encode(payload, cfg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	img := qr.Render(sym)

	if err := g.writePNG(name, img); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	art := &Artifact{
		ID:         uuid.New().String(),
		Name:       name,
		Payload:    payload,
		Version:    sym.Version,
		Level:      qr.LevelName(cfg.Level),
		ModuleSize: cfg.ModuleSize,
		Border:     cfg.Border,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		CreatedAt:  time.Now().UTC(),
		img:        img,
	}
	if err := g.record(art); err != nil {
		return nil, err
	}

	fmt.Fprintf(g.out, "Generated %s\n", name)
	fmt.Fprintf(g.out, "Encoded text: %s\n", payload)
	fmt.Fprintf(g.out, "Image size: %dx%d\n", art.Width, art.Height)
	g.log.Info("artifact generated",
		"name", name, "version", sym.Version, "level", art.Level,
		"width", art.Width, "height", art.Height)
	return art, nil
}

// Resize writes a nearest-neighbor rescale of src as a new artifact named
// name. Artifacts reloaded from a manifest have no in-memory raster, so the
// source PNG is read back from the output directory first.
func (g *Generator) Resize(src *Artifact, width, height int, name string) (*Artifact, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("resize %s: invalid target dimensions %dx%d", name, width, height)
	}

	img := src.img
	if img == nil {
		loaded, err := g.loadPNG(src.Name)
		if err != nil {
			return nil, err
		}
		img = loaded
	}

	scaled := qr.ResizeNearest(img, width, height)
	if err := g.writePNG(name, scaled); err != nil {
		return nil, err
	}

	art := &Artifact{
		ID:        uuid.New().String(),
		Name:      name,
		Payload:   src.Payload,
		Width:     width,
		Height:    height,
		Source:    src.Name,
		CreatedAt: time.Now().UTC(),
		img:       scaled,
	}
	if err := g.record(art); err != nil {
		return nil, err
	}

	fmt.Fprintf(g.out, "Generated %s\n", name)
	fmt.Fprintf(g.out, "Image size: %dx%d\n", width, height)
	g.log.Info("artifact resized",
		"name", name, "source", src.Name, "width", width, "height", height)
	return art, nil
}

// --- helpers ----------------------------------------------------------------

func (g *Generator) writePNG(name string, img image.Image) error {
	path := filepath.Join(g.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := qr.EncodePNG(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func (g *Generator) loadPNG(name string) (image.Image, error) {
	path := filepath.Join(g.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func (g *Generator) record(art *Artifact) error {
	if err := g.manifest.Put(*art); err != nil {
		return fmt.Errorf("record %s: %w", art.Name, err)
	}
	return nil
}
