package models

import "fmt"

// Resolution is one of the fixed output presets.
type Resolution string

const (
	Resolution360p  Resolution = "360p"
	Resolution480p  Resolution = "480p"
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
	Resolution1440p Resolution = "1440p"
	Resolution4K    Resolution = "4K"
)

type Dimensions struct {
	Width  int
	Height int
}

var resolutionDims = map[Resolution]Dimensions{
	Resolution360p:  {640, 360},
	Resolution480p:  {854, 480},
	Resolution720p:  {1280, 720},
	Resolution1080p: {1920, 1080},
	Resolution1440p: {2560, 1440},
	Resolution4K:    {3840, 2160},
}

var resolutionOrder = []Resolution{
	Resolution360p,
	Resolution480p,
	Resolution720p,
	Resolution1080p,
	Resolution1440p,
	Resolution4K,
}

// Dimensions returns the fixed pixel pair for a preset.
func (r Resolution) Dimensions() (Dimensions, bool) {
	d, ok := resolutionDims[r]
	return d, ok
}

func (r Resolution) Label() string {
	d, ok := resolutionDims[r]
	if !ok {
		return string(r)
	}
	return fmt.Sprintf("%s (%d×%d)", string(r), d.Width, d.Height)
}

// Resolutions lists the presets in ascending order.
func Resolutions() []Resolution {
	out := make([]Resolution, len(resolutionOrder))
	copy(out, resolutionOrder)
	return out
}

// ParseResolution maps a user supplied token to a preset.
func ParseResolution(token string) (Resolution, error) {
	r := Resolution(token)
	if _, ok := resolutionDims[r]; !ok {
		return "", NewInvalidParameter(fmt.Sprintf("unknown resolution %q", token))
	}
	return r, nil
}
