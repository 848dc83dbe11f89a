// Package pack defines the report pack data model, the canonical
// equality/normalization rules for its auxiliary data, and the parser that
// validates imported pack documents.
package pack

const (
	SourceJSON    = "json"
	SourceArchive = "archive"
)

const (
	ToolFreehand = "freehand"
	ToolArrow    = "arrow"
)

// MaxStrokesPerClip caps a clip's telestration list; the oldest strokes are
// dropped first when the cap is exceeded.
const MaxStrokesPerClip = 50

type Overlay struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// Clip identity is ID; every other field is replaceable on import.
type Clip struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Duration string    `json:"duration"`
	Tags     []string  `json:"tags"`
	Overlays []Overlay `json:"overlays"`
}

// Point coordinates are normalized to [0,1] relative to the video frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Stroke struct {
	ID     string  `json:"id"`
	Tool   string  `json:"tool"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
	Points []Point `json:"points"`
}

// ReportPack is the logical import unit extracted from a pack document or
// archive. The auxiliary maps are keyed by clip id and are never nil after a
// successful parse.
type ReportPack struct {
	Title        string
	Notes        string
	Match        string
	Owner        string
	Clips        []Clip
	Labels       map[string][]string
	Annotations  map[string]string
	Telestration map[string][]Stroke
	Source       string
}

// ClipIDs returns the pack's clip ids in queue order.
func (p *ReportPack) ClipIDs() []string {
	ids := make([]string, len(p.Clips))
	for i, c := range p.Clips {
		ids[i] = c.ID
	}
	return ids
}

// CapStrokes enforces MaxStrokesPerClip, dropping the oldest strokes first.
func CapStrokes(strokes []Stroke) []Stroke {
	if len(strokes) <= MaxStrokesPerClip {
		return strokes
	}
	return strokes[len(strokes)-MaxStrokesPerClip:]
}
