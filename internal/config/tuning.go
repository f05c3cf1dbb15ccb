// Package config loads optional view-tuning overrides from JSON. Fields
// omitted from the file keep their built-in defaults, so partial configs
// are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/radarlab/radarview/internal/render"
)

// ViewConfig overrides the point-cloud imaging window and overlay spacing.
// All fields are optional; nil means "keep the default".
type ViewConfig struct {
	// Point-cloud imaging window, metres.
	XMinMeters       *float64 `json:"xmin_meters,omitempty"`
	XMaxMeters       *float64 `json:"xmax_meters,omitempty"`
	YMinMeters       *float64 `json:"ymin_meters,omitempty"`
	YMaxMeters       *float64 `json:"ymax_meters,omitempty"`
	ResolutionMeters *float64 `json:"resolution_meters,omitempty"`

	// Overlay range-ring spacing, metres.
	GridSeparationMeters *float64 `json:"grid_separation_meters,omitempty"`
}

// Load reads a ViewConfig from a JSON file. The path must carry a .json
// extension and stay under a sanity size cap.
func Load(path string) (*ViewConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("tuning file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat tuning file: %w", err)
	}
	const maxFileSize = 1 << 20
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("tuning file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read tuning file: %w", err)
	}

	var cfg ViewConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse tuning file %s: %w", cleanPath, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("tuning file %s: %w", cleanPath, err)
	}
	return &cfg, nil
}

func (c *ViewConfig) validate() error {
	if c.ResolutionMeters != nil && *c.ResolutionMeters <= 0 {
		return fmt.Errorf("resolution_meters must be positive, got %v", *c.ResolutionMeters)
	}
	if c.GridSeparationMeters != nil && *c.GridSeparationMeters <= 0 {
		return fmt.Errorf("grid_separation_meters must be positive, got %v", *c.GridSeparationMeters)
	}
	return nil
}

// ApplyWindow copies any set window fields onto the renderer.
func (c *ViewConfig) ApplyWindow(r *render.PointCloudRenderer) {
	if c == nil {
		return
	}
	if c.XMinMeters != nil {
		r.XMin = *c.XMinMeters
	}
	if c.XMaxMeters != nil {
		r.XMax = *c.XMaxMeters
	}
	if c.YMinMeters != nil {
		r.YMin = *c.YMinMeters
	}
	if c.YMaxMeters != nil {
		r.YMax = *c.YMaxMeters
	}
	if c.ResolutionMeters != nil {
		r.Res = *c.ResolutionMeters
	}
}
