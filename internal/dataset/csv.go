package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"

	"github.com/limaJavier/coursetimetable/pkg/model"
)

const (
	facultiesFile  = "faculties.csv"
	coursesFile    = "courses.csv"
	classroomsFile = "classrooms.csv"
	timeslotsFile  = "timeslots.csv"
)

//** CSV rows keep every cell as text. Empty cells are dropped before decoding so that defaults apply

type facultyRow struct {
	Id         string `csv:"id"`
	Name       string `csv:"name"`
	Department string `csv:"department"`
}

type classroomRow struct {
	Id       string `csv:"id"`
	Name     string `csv:"name"`
	Capacity string `csv:"capacity"`
	Type     string `csv:"type"`
}

type courseRow struct {
	Id              string `csv:"id"`
	Code            string `csv:"code"`
	Name            string `csv:"name"`
	FacultyId       string `csv:"faculty_id"`
	Size            string `csv:"size"`
	SessionsPerWeek string `csv:"sessions_per_week"`
}

type timeslotRow struct {
	Id        string `csv:"id"`
	Label     string `csv:"label"`
	DayOfWeek string `csv:"day_of_week"`
	SlotIndex string `csv:"slot_index"`
	StartTime string `csv:"start_time"`
	EndTime   string `csv:"end_time"`
}

// CSVStore keeps the dataset as four CSV files inside a directory
type CSVStore struct {
	dir string
}

func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

// Load reads every file present in the directory. Only a missing directory, or one without any of the files, yields
// ErrDatasetMissing
func (store *CSVStore) Load(ctx context.Context) (model.RawDataset, error) {
	if _, err := os.Stat(store.dir); errors.Is(err, fs.ErrNotExist) {
		return model.RawDataset{}, fmt.Errorf("%w: %v", model.ErrDatasetMissing, store.dir)
	}

	var (
		faculties  []*facultyRow
		classrooms []*classroomRow
		courses    []*courseRow
		timeslots  []*timeslotRow
	)

	found := 0
	for file, rows := range map[string]any{
		facultiesFile:  &faculties,
		classroomsFile: &classrooms,
		coursesFile:    &courses,
		timeslotsFile:  &timeslots,
	} {
		ok, err := readRows(filepath.Join(store.dir, file), rows)
		if err != nil {
			return model.RawDataset{}, err
		}
		if ok {
			found++
		}
	}
	if found == 0 {
		return model.RawDataset{}, fmt.Errorf("%w: no csv files in %v", model.ErrDatasetMissing, store.dir)
	}

	return model.DecodeRawDataset(map[string]any{
		"faculties": lo.Map(faculties, func(row *facultyRow, _ int) any {
			return document("id", row.Id, "name", row.Name, "department", row.Department)
		}),
		"classrooms": lo.Map(classrooms, func(row *classroomRow, _ int) any {
			return document("id", row.Id, "name", row.Name, "capacity", row.Capacity, "type", row.Type)
		}),
		"courses": lo.Map(courses, func(row *courseRow, _ int) any {
			return document(
				"id", row.Id, "code", row.Code, "name", row.Name, "faculty_id", row.FacultyId,
				"size", row.Size, "sessions_per_week", row.SessionsPerWeek,
			)
		}),
		"timeslots": lo.Map(timeslots, func(row *timeslotRow, _ int) any {
			return document(
				"id", row.Id, "label", row.Label, "day_of_week", row.DayOfWeek, "slot_index", row.SlotIndex,
				"start_time", row.StartTime, "end_time", row.EndTime,
			)
		}),
	})
}

// Save writes the four files, replacing any previous content
func (store *CSVStore) Save(ctx context.Context, dataset model.RawDataset) error {
	if err := os.MkdirAll(store.dir, 0o755); err != nil {
		return fmt.Errorf("create dataset directory: %w", err)
	}

	faculties := lo.Map(dataset.Faculties, func(faculty model.RawFaculty, _ int) *facultyRow {
		return &facultyRow{Id: text(faculty.Id), Name: faculty.Name, Department: faculty.Department}
	})
	classrooms := lo.Map(dataset.Classrooms, func(classroom model.RawClassroom, _ int) *classroomRow {
		return &classroomRow{
			Id:       text(classroom.Id),
			Name:     classroom.Name,
			Capacity: number(classroom.Capacity),
			Type:     classroom.Type,
		}
	})
	courses := lo.Map(dataset.Courses, func(course model.RawCourse, _ int) *courseRow {
		return &courseRow{
			Id:              text(course.Id),
			Code:            course.Code,
			Name:            course.Name,
			FacultyId:       text(lo.Ternary(course.FacultyId != nil, course.FacultyId, course.FacultyIdAlias)),
			Size:            number(course.Size),
			SessionsPerWeek: number(lo.Ternary(course.SessionsPerWeek != nil, course.SessionsPerWeek, course.RequiredSlots)),
		}
	})
	timeslots := lo.Map(dataset.Timeslots, func(timeslot model.RawTimeslot, _ int) *timeslotRow {
		return &timeslotRow{
			Id:        text(timeslot.Id),
			Label:     timeslot.Label,
			DayOfWeek: number(timeslot.DayOfWeek),
			SlotIndex: number(timeslot.SlotIndex),
			StartTime: timeslot.StartTime,
			EndTime:   timeslot.EndTime,
		}
	})

	for file, rows := range map[string]any{
		facultiesFile:  &faculties,
		classroomsFile: &classrooms,
		coursesFile:    &courses,
		timeslotsFile:  &timeslots,
	} {
		if err := writeRows(filepath.Join(store.dir, file), rows); err != nil {
			return err
		}
	}
	return nil
}

func readRows(path string, rows any) (bool, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	defer file.Close()

	if err := gocsv.UnmarshalFile(file, rows); err != nil && !errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return false, fmt.Errorf("cannot parse %v: %w", filepath.Base(path), err)
	}
	return true, nil
}

func writeRows(path string, rows any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("cannot write %v: %w", filepath.Base(path), err)
	}
	return nil
}

// document builds a record from key/value pairs, skipping blank values
func document(pairs ...string) map[string]any {
	record := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			record[pairs[i]] = pairs[i+1]
		}
	}
	return record
}

func text(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func number(value *int64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatInt(*value, 10)
}
