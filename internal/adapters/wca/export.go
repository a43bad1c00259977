package wca

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hylla/nametag/internal/app"
)

// ResultsFile and CountriesFile are the extracted export file names.
const (
	ResultsFile   = "WCA_export_Results.tsv"
	CountriesFile = "WCA_export_Countries.tsv"
)

// ErrExportIncomplete and related errors describe export failures.
var (
	ErrExportIncomplete = errors.New("export archive incomplete")
	ErrExportMissing    = errors.New("export file missing")
)

var exportMembers = []string{ResultsFile, CountriesFile}

// DownloadExport fetches the results export archive and extracts the results
// and countries files into dir. Existing files are replaced only after the
// whole archive was read.
func (c *Client) DownloadExport(ctx context.Context, exportURL, dir string) ([]string, error) {
	if strings.TrimSpace(exportURL) == "" {
		exportURL = DefaultExportURL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "export-*.zip")
	if err != nil {
		return nil, fmt.Errorf("create temp archive: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	resp, err := c.get(ctx, exportURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return nil, fmt.Errorf("download export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp archive: %w", err)
	}
	return ExtractExport(tmp.Name(), dir)
}

// ExtractExport copies the required members of archivePath into dir.
// Member names match case-insensitively so both export naming schemes work.
func ExtractExport(archivePath, dir string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open export archive: %w", err)
	}
	defer zr.Close()

	found := map[string]*zip.File{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		base := path.Base(f.Name)
		for _, want := range exportMembers {
			if strings.EqualFold(base, want) {
				found[want] = f
			}
		}
	}

	staged := make([]string, 0, len(exportMembers))
	defer func() {
		for _, name := range staged {
			_ = os.Remove(name)
		}
	}()
	for _, want := range exportMembers {
		f, ok := found[want]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrExportIncomplete, want)
		}
		tmpPath, err := stageMember(f, dir, want)
		if err != nil {
			return nil, err
		}
		staged = append(staged, tmpPath)
	}

	out := make([]string, 0, len(exportMembers))
	for i, want := range exportMembers {
		dest := filepath.Join(dir, want)
		if err := os.Rename(staged[i], dest); err != nil {
			return nil, fmt.Errorf("install %s: %w", want, err)
		}
		out = append(out, dest)
	}
	staged = nil
	return out, nil
}

func stageMember(f *zip.File, dir, name string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.CreateTemp(dir, name+".*.part")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		_ = os.Remove(out.Name())
		return "", fmt.Errorf("extract %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(out.Name())
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return out.Name(), nil
}

// ExportDir serves extracted export files from a directory.
type ExportDir struct {
	Dir string
}

// OpenResults opens the results file.
func (d ExportDir) OpenResults() (io.ReadCloser, app.ExportFileInfo, error) {
	return d.open(ResultsFile)
}

// OpenCountries opens the countries file.
func (d ExportDir) OpenCountries() (io.ReadCloser, app.ExportFileInfo, error) {
	return d.open(CountriesFile)
}

// Exists reports whether both export files are present.
func (d ExportDir) Exists() bool {
	for _, name := range exportMembers {
		if _, err := os.Stat(filepath.Join(d.Dir, name)); err != nil {
			return false
		}
	}
	return true
}

func (d ExportDir) open(name string) (io.ReadCloser, app.ExportFileInfo, error) {
	full := filepath.Join(d.Dir, name)
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, app.ExportFileInfo{}, fmt.Errorf("%w: %s, run `nametag update`", ErrExportMissing, full)
		}
		return nil, app.ExportFileInfo{}, fmt.Errorf("open %s: %w", full, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, app.ExportFileInfo{}, fmt.Errorf("stat %s: %w", full, err)
	}
	return f, app.ExportFileInfo{Path: full, Size: info.Size(), ModTime: info.ModTime()}, nil
}
