package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mitchellh/mapstructure"
)

//** Raw records as they arrive from a dataset source. Numeric fields are pointers so that absent values can be defaulted

type RawFaculty struct {
	Id         any    `mapstructure:"id" json:"id"`
	Name       string `mapstructure:"name" json:"name" validate:"required"`
	Department string `mapstructure:"department" json:"department,omitempty"`
}

type RawClassroom struct {
	Id       any    `mapstructure:"id" json:"id"`
	Name     string `mapstructure:"name" json:"name" validate:"required"`
	Capacity *int64 `mapstructure:"capacity" json:"capacity,omitempty" validate:"omitempty,gte=0"`
	Type     string `mapstructure:"type" json:"type,omitempty"`
}

type RawCourse struct {
	Id              any    `mapstructure:"id" json:"id"`
	Code            string `mapstructure:"code" json:"code,omitempty"`
	Name            string `mapstructure:"name" json:"name" validate:"required"`
	FacultyId       any    `mapstructure:"faculty_id" json:"faculty_id,omitempty"`
	FacultyIdAlias  any    `mapstructure:"facultyId" json:"facultyId,omitempty"`
	Size            *int64 `mapstructure:"size" json:"size,omitempty" validate:"omitempty,gte=0"`
	SessionsPerWeek *int64 `mapstructure:"sessions_per_week" json:"sessions_per_week,omitempty" validate:"omitempty,gte=1"`
	RequiredSlots   *int64 `mapstructure:"requiredSlots" json:"requiredSlots,omitempty" validate:"omitempty,gte=1"`
}

type RawTimeslot struct {
	Id        any    `mapstructure:"id" json:"id"`
	Label     string `mapstructure:"label" json:"label,omitempty"`
	DayOfWeek *int64 `mapstructure:"day_of_week" json:"day_of_week,omitempty" validate:"omitempty,gte=0,lte=6"`
	SlotIndex *int64 `mapstructure:"slot_index" json:"slot_index,omitempty" validate:"omitempty,gte=0"`
	StartTime string `mapstructure:"start_time" json:"start_time,omitempty"`
	EndTime   string `mapstructure:"end_time" json:"end_time,omitempty"`
}

type RawDataset struct {
	Faculties  []RawFaculty   `mapstructure:"faculties" json:"faculties" validate:"dive"`
	Courses    []RawCourse    `mapstructure:"courses" json:"courses" validate:"dive"`
	Classrooms []RawClassroom `mapstructure:"classrooms" json:"classrooms" validate:"dive"`
	Timeslots  []RawTimeslot  `mapstructure:"timeslots" json:"timeslots" validate:"dive"`
}

//** Normalized records. Every Id is a dense 1-based index following input order

type Faculty struct {
	Id         uint64
	OriginalId Identifier
	Name       string
	Department string
}

type Classroom struct {
	Id         uint64
	OriginalId Identifier
	Name       string
	Capacity   uint64
	Type       string
}

type Course struct {
	Id              uint64
	OriginalId      Identifier
	Code            string
	Name            string
	Faculty         uint64
	Size            uint64
	SessionsPerWeek uint64
}

type Timeslot struct {
	Id         uint64
	OriginalId Identifier
	Label      string
	DayOfWeek  *int64
	SlotIndex  *int64
	StartTime  string
	EndTime    string
}

type ModelInput struct {
	Faculties  []Faculty
	Courses    []Course
	Classrooms []Classroom
	Timeslots  []Timeslot

	// Identifier keys to dense indices
	FacultyIndex   map[string]uint64
	CourseIndex    map[string]uint64
	ClassroomIndex map[string]uint64
	TimeslotIndex  map[string]uint64
}

func (input ModelInput) Faculty(id uint64) Faculty {
	return input.Faculties[id-1]
}

func (input ModelInput) Course(id uint64) Course {
	return input.Courses[id-1]
}

func (input ModelInput) Classroom(id uint64) Classroom {
	return input.Classrooms[id-1]
}

func (input ModelInput) Timeslot(id uint64) Timeslot {
	return input.Timeslots[id-1]
}

// DecodeRawDataset decodes a generic JSON document into a RawDataset. Numeric strings are accepted for numeric fields
func DecodeRawDataset(document map[string]any) (RawDataset, error) {
	var dataset RawDataset
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &dataset,
	})
	if err != nil {
		return RawDataset{}, err
	}

	if err := decoder.Decode(document); err != nil {
		return RawDataset{}, fmt.Errorf("cannot decode dataset: %w", err)
	}
	return dataset, nil
}

// DatasetFromJson reads a dataset file. A missing file yields ErrDatasetMissing
func DatasetFromJson(file string) (RawDataset, error) {
	bytes, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return RawDataset{}, fmt.Errorf("%w: %v", ErrDatasetMissing, file)
	} else if err != nil {
		return RawDataset{}, err
	}

	return DatasetFromBytes(bytes)
}

func DatasetFromBytes(bytes []byte) (RawDataset, error) {
	var document map[string]any
	if err := json.Unmarshal(bytes, &document); err != nil {
		return RawDataset{}, fmt.Errorf("cannot parse dataset: %w", err)
	}
	return DecodeRawDataset(document)
}

// InputFromJson reads and normalizes a dataset file with the standard defaults
func InputFromJson(file string) (ModelInput, error) {
	dataset, err := DatasetFromJson(file)
	if err != nil {
		return ModelInput{}, err
	}
	return NewNormalizer(StandardDefaults()).Normalize(dataset)
}
