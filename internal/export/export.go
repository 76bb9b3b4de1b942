package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/limaJavier/coursetimetable/pkg/model"
)

const (
	JSONFile = "timetable.json"
	CSVFile  = "timetable.csv"
	PDFFile  = "timetable.pdf"
)

// Files lists every artifact an Exporter writes
var Files = []string{JSONFile, CSVFile, PDFFile}

// Exporter writes the timetable as JSON, CSV and PDF files inside a directory. Every artifact is rendered and
// written to a temporary file before any previous file is replaced
type Exporter struct {
	dir      string
	pdf      *PDFRenderer
	previous map[string][]byte // Contents replaced by the last Commit, nil for files that did not exist
}

func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir, pdf: NewPDFRenderer()}
}

func (exporter *Exporter) Dir() string {
	return exporter.dir
}

// Clear makes sure the directory exists. Previous artifacts stay in place until Commit replaces them
func (exporter *Exporter) Clear(ctx context.Context) error {
	if err := os.MkdirAll(exporter.dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	return nil
}

func (exporter *Exporter) Commit(ctx context.Context, entries []model.ScheduleEntry) error {
	contents, err := exporter.render(entries)
	if err != nil {
		return err
	}

	//** Stage
	for _, file := range Files {
		if err := os.WriteFile(exporter.temporary(file), contents[file], 0o644); err != nil {
			exporter.removeTemporaries()
			return fmt.Errorf("write %v: %w", file, err)
		}
	}

	previous := make(map[string][]byte, len(Files))
	for _, file := range Files {
		content, err := os.ReadFile(exporter.path(file))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			exporter.removeTemporaries()
			return fmt.Errorf("read previous %v: %w", file, err)
		}
		previous[file] = content
	}

	//** Replace
	for i, file := range Files {
		if err := os.Rename(exporter.temporary(file), exporter.path(file)); err != nil {
			exporter.removeTemporaries()
			return errors.Join(fmt.Errorf("replace %v: %w", file, err), restore(exporter.dir, Files[:i], previous))
		}
	}

	exporter.previous = previous
	return nil
}

// Abort removes staged files of an unfinished Commit
func (exporter *Exporter) Abort(ctx context.Context) error {
	exporter.removeTemporaries()
	return nil
}

// Revert puts back the artifacts replaced by the last Commit
func (exporter *Exporter) Revert(ctx context.Context) error {
	if exporter.previous == nil {
		return nil
	}
	err := restore(exporter.dir, Files, exporter.previous)
	exporter.previous = nil
	return err
}

func (exporter *Exporter) render(entries []model.ScheduleEntry) (map[string][]byte, error) {
	rows := lo.Map(entries, func(entry model.ScheduleEntry, _ int) Row { return NewRow(entry) })

	jsonBytes, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	csvBytes, err := RenderCSV(rows)
	if err != nil {
		return nil, err
	}
	pdfBytes, err := exporter.pdf.Render(rows, "Weekly timetable")
	if err != nil {
		return nil, err
	}

	return map[string][]byte{JSONFile: jsonBytes, CSVFile: csvBytes, PDFFile: pdfBytes}, nil
}

func (exporter *Exporter) path(file string) string {
	return filepath.Join(exporter.dir, file)
}

func (exporter *Exporter) temporary(file string) string {
	return exporter.path(file) + ".tmp"
}

func (exporter *Exporter) removeTemporaries() {
	for _, file := range Files {
		_ = os.Remove(exporter.temporary(file))
	}
}

// restore writes back previous contents, removing files that did not exist before
func restore(dir string, files []string, previous map[string][]byte) error {
	var errs []error
	for _, file := range files {
		path := filepath.Join(dir, file)
		content := previous[file]
		if content == nil {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, fmt.Errorf("restore %v: %w", file, err))
			}
			continue
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("restore %v: %w", file, err))
		}
	}
	return errors.Join(errs...)
}
