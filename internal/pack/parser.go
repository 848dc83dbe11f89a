package pack

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// FormatError reports a malformed or unrecognized pack payload. The message
// is surfaced verbatim to the user, so it must be actionable. Kind
// distinguishes a structurally broken payload from a recognizable document of
// the wrong kind (for example a bundle manifest offered as a report pack).
type FormatError struct {
	Kind    string
	Message string
}

const (
	ErrKindInvalid   = "invalid"
	ErrKindWrongKind = "wrong-kind"
)

func (e *FormatError) Error() string {
	return e.Message
}

func invalidf(format string, args ...any) *FormatError {
	return &FormatError{Kind: ErrKindInvalid, Message: fmt.Sprintf(format, args...)}
}

func wrongKindf(format string, args ...any) *FormatError {
	return &FormatError{Kind: ErrKindWrongKind, Message: fmt.Sprintf(format, args...)}
}

// Conventional archive member paths, checked in order.
var (
	reportPaths = []string{"report.json", "data/report.json", "pack/report.json"}
	notesPaths  = []string{"notes.json", "data/notes.json", "pack/notes.json"}
)

// Parse extracts a report pack from raw bytes. The filename's extension
// selects the parse path; without a recognized extension the JSON path runs
// first and the archive path is tried on failure.
func Parse(data []byte, filename string) (*ReportPack, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return ParseJSON(data)
	case ".zip", ".afmpack":
		return ParseArchive(data)
	}

	p, jsonErr := ParseJSON(data)
	if jsonErr == nil {
		return p, nil
	}
	if p, err := ParseArchive(data); err == nil {
		return p, nil
	}
	return nil, jsonErr
}

// ParseJSON validates a bare report pack document. Required string fields and
// a well-formed clip list are mandatory; the auxiliary maps degrade to empty
// when missing or invalid.
func ParseJSON(data []byte) (*ReportPack, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, invalidf("invalid JSON: %v", err)
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, invalidf("unrecognized pack format: expected a JSON object")
	}

	p := &ReportPack{Source: SourceJSON}

	for _, field := range []struct {
		name string
		dst  *string
	}{
		{"title", &p.Title},
		{"notes", &p.Notes},
		{"match", &p.Match},
		{"owner", &p.Owner},
	} {
		value, ok := obj[field.name].(string)
		if !ok {
			if reason, isManifest := detectManifest(obj); isManifest {
				return nil, reason
			}
			return nil, invalidf("report pack field %q is missing or not a string", field.name)
		}
		*field.dst = value
	}

	clips, ok := GuardClipList(obj["clips"])
	if !ok {
		if reason, isManifest := detectManifest(obj); isManifest {
			return nil, reason
		}
		return nil, invalidf("report pack %q list is missing or malformed", "clips")
	}
	p.Clips = clips

	p.Labels, p.Annotations, p.Telestration = guardAuxMaps(obj)
	return p, nil
}

// detectManifest recognizes the bundle manifest shape: a common user mistake
// is importing the manifest instead of the report document it describes. The
// check runs only after the primary shape has failed to match.
func detectManifest(obj map[string]any) (*FormatError, bool) {
	version, ok := obj["version"].(float64)
	if !ok || version != 1 {
		return nil, false
	}
	report, ok := obj["report"].(map[string]any)
	if !ok {
		return nil, false
	}
	if _, ok := report["title"].(string); !ok {
		return nil, false
	}
	if _, hasClips := obj["clips"]; hasClips {
		return nil, false
	}
	return wrongKindf("this file is a bundle manifest, not a report pack; import the report JSON file listed in the manifest instead"), true
}

// guardAuxMaps reads the optional labels/annotations/telestration maps,
// degrading each to empty when missing or invalid.
func guardAuxMaps(obj map[string]any) (map[string][]string, map[string]string, map[string][]Stroke) {
	labels, ok := GuardLabelMap(obj["labels"])
	if !ok {
		labels = map[string][]string{}
	}
	annotations, ok := GuardAnnotationMap(obj["annotations"])
	if !ok {
		annotations = map[string]string{}
	}
	telestration, ok := GuardTelestrationMap(obj["telestration"])
	if !ok {
		telestration = map[string][]Stroke{}
	}
	return labels, annotations, telestration
}

// ParseArchive opens a zip container, locates the report document at one of
// the conventional paths and parses it via the JSON path. A well-formed
// supplementary notes document replaces the report's auxiliary maps
// wholesale; a malformed one is ignored and the report remains usable.
func ParseArchive(data []byte) (*ReportPack, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, invalidf("not a readable archive: %v", err)
	}

	reportData, found := readArchiveMember(reader, reportPaths)
	if !found {
		return nil, invalidf("missing report document: archive contains none of %s", strings.Join(reportPaths, ", "))
	}

	p, err := ParseJSON(reportData)
	if err != nil {
		return nil, err
	}
	p.Source = SourceArchive

	if notesData, found := readArchiveMember(reader, notesPaths); found {
		applyNotesDocument(p, notesData)
	}

	return p, nil
}

func readArchiveMember(reader *zip.Reader, paths []string) ([]byte, bool) {
	for _, path := range paths {
		f, err := reader.Open(path)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			continue
		}
		return data, true
	}
	return nil, false
}

// applyNotesDocument replaces the pack's three auxiliary maps with the notes
// document's maps when the document is a well-formed object. Replacement is
// wholesale, not a merge; missing maps in a valid notes document become
// empty. Best-effort: any malformed notes document leaves the pack untouched.
func applyNotesDocument(p *ReportPack, data []byte) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return
	}

	labels, ok := GuardLabelMap(obj["labels"])
	if !ok {
		if _, present := obj["labels"]; present {
			return
		}
		labels = map[string][]string{}
	}
	annotations, ok := GuardAnnotationMap(obj["annotations"])
	if !ok {
		if _, present := obj["annotations"]; present {
			return
		}
		annotations = map[string]string{}
	}
	telestration, ok := GuardTelestrationMap(obj["telestration"])
	if !ok {
		if _, present := obj["telestration"]; present {
			return
		}
		telestration = map[string][]Stroke{}
	}

	p.Labels = labels
	p.Annotations = annotations
	p.Telestration = telestration
}
