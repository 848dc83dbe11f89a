package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ManifestVersion is the only bundle manifest version this agent writes. The
// import parser recognizes manifests of this version so it can tell the user
// they picked the wrong file.
const ManifestVersion = 1

const maxBaseNameLen = 80

// ShareSettings describe how the exported bundle is meant to be shared.
type ShareSettings struct {
	Link          string `json:"link"`
	Permission    string `json:"permission"`
	ExpiresAt     string `json:"expiresAt,omitempty"`
	AllowDownload bool   `json:"allowDownload"`
}

const (
	PermissionView    = "view"
	PermissionComment = "comment"
)

type ReportSummary struct {
	Title         string `json:"title"`
	Match         string `json:"match"`
	Owner         string `json:"owner"`
	ClipCount     int    `json:"clipCount"`
	TotalDuration string `json:"totalDuration"`
}

type ManifestFile struct {
	Filename      string `json:"filename"`
	SuggestedPath string `json:"suggestedPath"`
	Mime          string `json:"mime"`
	Description   string `json:"description"`
	Required      bool   `json:"required"`
}

// BundleManifest is the sidecar document written next to the report pack. It
// deliberately carries no clips.
type BundleManifest struct {
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	Share     ShareSettings  `json:"share"`
	Report    ReportSummary  `json:"report"`
	Files     []ManifestFile `json:"files"`
}

// Result reports where the bundle landed.
type Result struct {
	ReportPath   string `json:"report_path"`
	ManifestPath string `json:"manifest_path"`
	ClipCount    int    `json:"clip_count"`
}

// WriteBundle writes the report document and its manifest into outputDir.
// File names derive from the sanitized report title.
func WriteBundle(outputDir string, doc *Document, share ShareSettings) (*Result, error) {
	if err := ValidateOutputDir(outputDir); err != nil {
		return nil, err
	}

	base := reportBaseName(doc.Title)
	if base == "" {
		base = "report"
	}
	reportName := base + ".report.json"
	manifestName := base + ".manifest.json"

	manifest := &BundleManifest{
		Version:   ManifestVersion,
		CreatedAt: now().UTC(),
		Share:     share,
		Report: ReportSummary{
			Title:         doc.Title,
			Match:         doc.Match,
			Owner:         doc.Owner,
			ClipCount:     doc.ClipCount,
			TotalDuration: doc.TotalDuration,
		},
		Files: []ManifestFile{
			{
				Filename:      reportName,
				SuggestedPath: "report.json",
				Mime:          "application/json",
				Description:   "Report pack document",
				Required:      true,
			},
			{
				Filename:      manifestName,
				SuggestedPath: "manifest.json",
				Mime:          "application/json",
				Description:   "Bundle manifest",
				Required:      false,
			},
		},
	}

	reportPath := filepath.Join(outputDir, reportName)
	if err := writeJSONFile(reportPath, doc); err != nil {
		return nil, fmt.Errorf("writing report document: %w", err)
	}
	manifestPath := filepath.Join(outputDir, manifestName)
	if err := writeJSONFile(manifestPath, manifest); err != nil {
		return nil, fmt.Errorf("writing bundle manifest: %w", err)
	}

	return &Result{ReportPath: reportPath, ManifestPath: manifestPath, ClipCount: doc.ClipCount}, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// now is swapped in tests.
var now = time.Now
