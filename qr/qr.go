// Package qr encodes text payloads into QR symbols and rasterizes them as
// black-on-white images.
package qr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// maxVersion is the largest symbol version the QR standard defines.
const maxVersion = 40

var (
	// ErrPayloadTooLarge is returned when a payload exceeds the capacity of
	// the requested symbol version, or of every version when growing is
	// allowed.
	ErrPayloadTooLarge = errors.New("payload too large for symbol capacity")

	// ErrEmptyPayload is returned when there is nothing to encode.
	ErrEmptyPayload = errors.New("empty payload")
)

// Level is the QR error correction level. Higher levels survive more damage
// at the cost of payload capacity.
type Level = qrcode.RecoveryLevel

const (
	LevelL Level = qrcode.Low     // ~7% recovery
	LevelM Level = qrcode.Medium  // ~15% recovery
	LevelQ Level = qrcode.High    // ~25% recovery
	LevelH Level = qrcode.Highest // ~30% recovery
)

// ParseLevel maps the single-letter level names L, M, Q and H
// (case-insensitive) to their Level values.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return LevelL, nil
	case "M":
		return LevelM, nil
	case "Q":
		return LevelQ, nil
	case "H":
		return LevelH, nil
	}
	return LevelL, fmt.Errorf("unknown error correction level %q", s)
}

// LevelName returns the single-letter name of l.
func LevelName(l Level) string {
	switch l {
	case LevelL:
		return "L"
	case LevelM:
		return "M"
	case LevelQ:
		return "Q"
	case LevelH:
		return "H"
	}
	return "?"
}

// Config controls how a payload is encoded and rasterized.
type Config struct {
	Version    int   // requested symbol version 1..40; 0 picks the smallest that fits
	Level      Level // error correction level
	ModuleSize int   // pixels per module
	Border     int   // quiet zone width in modules
	Fit        bool  // grow past Version when the payload does not fit it
}

// Validate checks the configuration ranges before encoding.
func (c Config) Validate() error {
	if c.Version < 0 || c.Version > maxVersion {
		return fmt.Errorf("version %d out of range 0..%d", c.Version, maxVersion)
	}
	if c.ModuleSize < 1 {
		return fmt.Errorf("module size %d, must be at least 1", c.ModuleSize)
	}
	if c.Border < 0 {
		return fmt.Errorf("border %d, must not be negative", c.Border)
	}
	return nil
}

// Symbol is an encoded QR code: the module matrix plus the configuration
// that produced it.
type Symbol struct {
	Payload string
	Config  Config
	Version int // symbol version actually used, 1..40

	modules [][]bool
}

// Encode builds the QR symbol for payload under cfg. With cfg.Version zero
// the smallest version that fits is chosen. A nonzero version is pinned
// exactly unless cfg.Fit is set, in which case it acts as a lower bound and
// larger payloads grow the symbol.
func Encode(payload string, cfg Config) (*Symbol, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	q, err := newCode(payload, cfg)
	if err != nil {
		return nil, err
	}
	// The quiet zone is rendered by this package, not the encoder.
	q.DisableBorder = true

	return &Symbol{
		Payload: payload,
		Config:  cfg,
		Version: q.VersionNumber,
		modules: q.Bitmap(),
	}, nil
}

func newCode(payload string, cfg Config) (*qrcode.QRCode, error) {
	if cfg.Version == 0 || cfg.Fit {
		q, err := qrcode.New(payload, cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("payload of %d bytes exceeds every version at level %s: %w",
				len(payload), LevelName(cfg.Level), ErrPayloadTooLarge)
		}
		if cfg.Version == 0 || q.VersionNumber >= cfg.Version {
			return q, nil
		}
		// The payload fits below the requested version; fall through and
		// pin the requested one.
	}

	q, err := qrcode.NewWithForcedVersion(payload, cfg.Version, cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("payload of %d bytes in version %d at level %s: %w",
			len(payload), cfg.Version, LevelName(cfg.Level), ErrPayloadTooLarge)
	}
	return q, nil
}

// Size returns the symbol's side length in modules (17 + 4*version).
func (s *Symbol) Size() int {
	return len(s.modules)
}

// Module reports whether the module at (x, y) is dark. Coordinates outside
// the symbol count as light, so callers can sample straight through the
// quiet zone.
func (s *Symbol) Module(x, y int) bool {
	if y < 0 || y >= len(s.modules) || x < 0 || x >= len(s.modules[y]) {
		return false
	}
	return s.modules[y][x]
}

// WithModuleSize returns a copy of the symbol that renders at px pixels per
// module. The module matrix is shared, not copied.
func (s *Symbol) WithModuleSize(px int) *Symbol {
	c := *s
	c.Config.ModuleSize = px
	return &c
}
