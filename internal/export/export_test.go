package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/coursetimetable/pkg/model"
)

func identifier(t *testing.T, value any) model.Identifier {
	id, ok := model.NewIdentifier(value)
	require.True(t, ok)
	return id
}

func sampleEntries(t *testing.T) []model.ScheduleEntry {
	return []model.ScheduleEntry{
		{
			CourseId: identifier(t, 1), CourseCode: "CS101", CourseName: "Algorithms",
			FacultyId: identifier(t, "F1"), FacultyName: "Ada",
			ClassroomId: identifier(t, "R1"), ClassroomName: "Hall",
			TimeslotId: identifier(t, "T1"), TimeslotLabel: "Mon 9",
		},
		{
			CourseId: identifier(t, 2), CourseName: "Lógica",
			FacultyId: identifier(t, "F1"), FacultyName: "Ada",
			ClassroomId: identifier(t, "R1"), ClassroomName: "Hall",
			TimeslotId: identifier(t, "T2"), TimeslotLabel: "Mon 10",
		},
	}
}

func TestExporterCommitAndClear(t *testing.T) {
	//** Arrange
	dir := filepath.Join(t.TempDir(), "exports")
	exporter := NewExporter(dir)

	//** Act
	require.NoError(t, exporter.Clear(context.Background()), "clearing creates the directory")
	require.NoError(t, exporter.Commit(context.Background(), sampleEntries(t)))

	//** Assert
	jsonBytes, err := os.ReadFile(filepath.Join(dir, JSONFile))
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(jsonBytes, &decoded))
	require.Len(t, decoded, 2)
	assert.EqualValues(t, 1, decoded[0]["course_id"])
	assert.Equal(t, "Hall", decoded[0]["classroom"])

	csvBytes, err := os.ReadFile(filepath.Join(dir, CSVFile))
	require.NoError(t, err)
	rows := make([]Row, 0)
	require.NoError(t, gocsv.UnmarshalBytes(csvBytes, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "CS101", rows[0].CourseCode)
	assert.Equal(t, "2", rows[1].CourseID)

	pdfBytes, err := os.ReadFile(filepath.Join(dir, PDFFile))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")))

	//** Act
	require.NoError(t, exporter.Clear(context.Background()))

	//** Assert
	// Artifacts are only replaced by the next Commit
	for _, file := range Files {
		assert.FileExists(t, filepath.Join(dir, file))
	}
}

func TestFailedCommitKeepsPreviousArtifacts(t *testing.T) {
	//** Arrange
	dir := t.TempDir()
	exporter := NewExporter(dir)
	require.NoError(t, exporter.Commit(context.Background(), sampleEntries(t)))
	before := readArtifacts(t, dir, JSONFile, CSVFile)

	// A directory in place of the PDF cannot be replaced by a file
	require.NoError(t, os.Remove(filepath.Join(dir, PDFFile)))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, PDFFile, "locked"), 0o755))

	//** Act
	require.NoError(t, exporter.Clear(context.Background()))
	err := exporter.Commit(context.Background(), sampleEntries(t)[:1])

	//** Assert
	assert.Error(t, err)
	assert.Equal(t, before, readArtifacts(t, dir, JSONFile, CSVFile))
	for _, file := range Files {
		assert.NoFileExists(t, filepath.Join(dir, file+".tmp"))
	}
}

func TestRevertRestoresReplacedArtifacts(t *testing.T) {
	//** Arrange
	dir := t.TempDir()
	exporter := NewExporter(dir)
	require.NoError(t, exporter.Commit(context.Background(), sampleEntries(t)))
	before := readArtifacts(t, dir, Files...)
	require.NoError(t, exporter.Commit(context.Background(), sampleEntries(t)[:1]))
	require.NotEqual(t, before, readArtifacts(t, dir, Files...))

	//** Act
	require.NoError(t, exporter.Revert(context.Background()))

	//** Assert
	assert.Equal(t, before, readArtifacts(t, dir, Files...))
}

func TestRevertRemovesFirstArtifacts(t *testing.T) {
	//** Arrange
	dir := t.TempDir()
	exporter := NewExporter(dir)
	require.NoError(t, exporter.Commit(context.Background(), sampleEntries(t)))

	//** Act
	require.NoError(t, exporter.Revert(context.Background()))

	//** Assert
	for _, file := range Files {
		assert.NoFileExists(t, filepath.Join(dir, file))
	}
}

func readArtifacts(t *testing.T, dir string, files ...string) map[string]string {
	contents := make(map[string]string, len(files))
	for _, file := range files {
		content, err := os.ReadFile(filepath.Join(dir, file))
		require.NoError(t, err)
		contents[file] = string(content)
	}
	return contents
}

func TestRenderEmptyTimetable(t *testing.T) {
	csvBytes, err := RenderCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "timeslot,classroom,course_code,course,faculty,timeslot_id,classroom_id,course_id,faculty_id\n", string(csvBytes))

	pdfBytes, err := NewPDFRenderer().Render(nil, "")
	require.NoError(t, err)
	assert.NotEmpty(t, pdfBytes)
}

func TestPDFRendersEveryRow(t *testing.T) {
	rows := make([]Row, 0, 120)
	for range 120 {
		rows = append(rows, NewRow(sampleEntries(t)[0]))
	}

	long, err := NewPDFRenderer().Render(rows, "Weekly timetable")
	require.NoError(t, err)
	short, err := NewPDFRenderer().Render(rows[:1], "Weekly timetable")
	require.NoError(t, err)

	assert.Greater(t, len(long), len(short))
}
