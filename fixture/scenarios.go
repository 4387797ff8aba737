package fixture

import (
	"fmt"

	"github.com/qrlab/qrgen/qr"
)

// Scenario is one fixed test image definition, optionally with downscaled
// copies derived from the rendered image.
type Scenario struct {
	Name    string
	Payload string
	Config  qr.Config
	Resizes []ResizeSpec
}

// ResizeSpec names a rescaled copy of a scenario's image.
type ResizeSpec struct {
	Name   string
	Width  int
	Height int
}

// DefaultScenarios returns the built-in decoder test images. The payloads
// exceed the capacity of the requested version 1 at level L, so fit growth
// lands on versions 2 and 3; the resulting files are 330x330, 62x62 and
// 50x50 pixels.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{
			Name:    "test_qr.png",
			Payload: "Hello, QR Code Decoder!",
			Config:  qr.Config{Version: 1, Level: qr.LevelL, ModuleSize: 10, Border: 4, Fit: true},
		},
		{
			Name:    "small_qr.png",
			Payload: "Small QR Test - WeChat Model Performance",
			Config:  qr.Config{Version: 1, Level: qr.LevelL, ModuleSize: 2, Border: 1, Fit: true},
			Resizes: []ResizeSpec{
				{Name: "tiny_qr.png", Width: 50, Height: 50},
			},
		},
	}
}

// Run generates every scenario in order and stops at the first failure, so
// an error never leaves later artifacts half-produced.
func Run(g *Generator, scenarios []Scenario) error {
	for _, sc := range scenarios {
		art, err := g.Generate(sc.Payload, sc.Config, sc.Name)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		for _, rs := range sc.Resizes {
			if _, err := g.Resize(art, rs.Width, rs.Height, rs.Name); err != nil {
				return fmt.Errorf("scenario %s: %w", rs.Name, err)
			}
		}
	}
	return nil
}
