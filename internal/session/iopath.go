// Package session orchestrates one recording's journey from container file
// to sinks: read, decode, render, overlay, fan out. Sessions in a batch run
// strictly sequentially and share only the display.
package session

import (
	"fmt"
	"path/filepath"
)

// Mode selects which record schema a stream carries.
type Mode int

const (
	ModeImage Mode = iota
	ModePointCloud
)

func (m Mode) String() string {
	switch m {
	case ModeImage:
		return "image"
	case ModePointCloud:
		return "point-cloud"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// IOPath describes one logical input stream and its optional video output.
// Descriptors are independent; one failing session does not corrupt the
// others.
type IOPath struct {
	RadarName  string
	InputPath  string
	OutputPath string // empty means display-only
	Mode       Mode
}

// BuildIOPaths derives descriptors from the CLI's directory and radar-name
// selectors, following the recording naming convention:
// <radar>_images.pbs / <radar>_points.pbs in, <radar>.mp4 /
// <radar>_points.mp4 out. An empty outputDir produces display-only paths.
func BuildIOPaths(inputDir, outputDir string, radarNames []string, pointCloud bool) []IOPath {
	paths := make([]IOPath, 0, len(radarNames))
	for _, name := range radarNames {
		p := IOPath{RadarName: name}
		if pointCloud {
			p.Mode = ModePointCloud
			p.InputPath = filepath.Join(inputDir, name+"_points.pbs")
			if outputDir != "" {
				p.OutputPath = filepath.Join(outputDir, name+"_points.mp4")
			}
		} else {
			p.Mode = ModeImage
			p.InputPath = filepath.Join(inputDir, name+"_images.pbs")
			if outputDir != "" {
				p.OutputPath = filepath.Join(outputDir, name+".mp4")
			}
		}
		paths = append(paths, p)
	}
	return paths
}
