package storage

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/raushankrgupta/product-page-extractor/models"
	"github.com/raushankrgupta/product-page-extractor/utils"
)

const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeJSON = "application/json"
)

// Artifact is one output file. Name is relative to the sink's root and may
// contain a directory part.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Sink persists the artifacts of one run
type Sink interface {
	Put(ctx context.Context, report *models.PageReport, artifacts []Artifact) error
	Name() string
}

// Names are the artifact names of one run. They share a single timestamp.
type Names struct {
	HTML      string
	Report    string
	ImagesDir string
}

// ArtifactNames builds <hostname>-<timestamp>.html, <hostname>-<timestamp>-data.json
// and the <hostname>-<timestamp>-images directory name.
func ArtifactNames(pageURL string, ts time.Time) Names {
	stem := utils.Hostname(pageURL) + "-" + FormatTimestamp(ts)
	return Names{
		HTML:      stem + ".html",
		Report:    stem + "-data.json",
		ImagesDir: stem + "-images",
	}
}

// FormatTimestamp renders ts as a UTC ISO 8601 string with millisecond
// precision and ':' replaced by '-' so it is safe in file names.
func FormatTimestamp(ts time.Time) string {
	return strings.ReplaceAll(ts.UTC().Format("2006-01-02T15:04:05.000Z"), ":", "-")
}

// HTMLArtifact wraps the saved page body
func HTMLArtifact(name, body string) Artifact {
	return Artifact{Name: name, ContentType: ContentTypeHTML, Data: []byte(body)}
}

// ReportArtifact renders report as indented JSON
func ReportArtifact(name string, report *models.PageReport) (Artifact, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return Artifact{}, eris.Wrap(err, "storage: marshal report")
	}
	return Artifact{Name: name, ContentType: ContentTypeJSON, Data: data}, nil
}
