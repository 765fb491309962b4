package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
	"sigs.k8s.io/yaml"
)

// DiffMetadata renders the differences between two manifests. It returns an
// empty string when they are equivalent.
func DiffMetadata(from, to *Metadata, useColor bool) (string, error) {
	fromYAML, err := yaml.Marshal(from)
	if err != nil {
		return "", fmt.Errorf("encoding old metadata: %w", err)
	}
	toYAML, err := yaml.Marshal(to)
	if err != nil {
		return "", fmt.Errorf("encoding new metadata: %w", err)
	}

	fromInput, err := parseYAMLInput("from", fromYAML)
	if err != nil {
		return "", fmt.Errorf("parsing old metadata: %w", err)
	}
	toInput, err := parseYAMLInput("to", toYAML)
	if err != nil {
		return "", fmt.Errorf("parsing new metadata: %w", err)
	}

	report, err := dyff.CompareInputFiles(fromInput, toInput)
	if err != nil {
		return "", fmt.Errorf("comparing metadata: %w", err)
	}
	if len(report.Diffs) == 0 {
		return "", nil
	}
	return renderReport(report, useColor)
}

func parseYAMLInput(name string, data []byte) (ytbx.InputFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ytbx.InputFile{Location: name}, nil
	}
	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}
	return ytbx.InputFile{Location: name, Documents: docs}, nil
}

func renderReport(report dyff.Report, useColor bool) (string, error) {
	var buf bytes.Buffer
	w := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}
	if err := w.WriteReport(io.Writer(&buf)); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
