package model

import (
	"fmt"
	"strings"
)

type FacultyPolicy string

const (
	// Courses without a resolvable faculty are taught by the first faculty in input order
	FirstFacultyPolicy FacultyPolicy = "first"
	// Courses without a resolvable faculty fail the build
	StrictFacultyPolicy FacultyPolicy = "strict"
)

func ParseFacultyPolicy(value string) (FacultyPolicy, error) {
	switch policy := FacultyPolicy(strings.ToLower(strings.TrimSpace(value))); policy {
	case "", FirstFacultyPolicy:
		return FirstFacultyPolicy, nil
	case StrictFacultyPolicy:
		return StrictFacultyPolicy, nil
	default:
		return "", fmt.Errorf("unknown faculty policy \"%v\"", value)
	}
}

// Defaults are the values applied to absent optional fields
type Defaults struct {
	CourseSize        uint64
	SessionsPerWeek   uint64
	ClassroomCapacity uint64
	ClassroomType     string
	FacultyPolicy     FacultyPolicy
}

func StandardDefaults() Defaults {
	return Defaults{
		CourseSize:        30,
		SessionsPerWeek:   3,
		ClassroomCapacity: 50,
		ClassroomType:     "Lecture",
		FacultyPolicy:     FirstFacultyPolicy,
	}
}

var weekdays = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Normalizer maps raw records with arbitrary identifiers onto dense 1-based indices and applies defaults
type Normalizer struct {
	defaults Defaults
}

func NewNormalizer(defaults Defaults) *Normalizer {
	return &Normalizer{defaults: defaults}
}

func (normalizer *Normalizer) Normalize(raw RawDataset) (ModelInput, error) {
	input := ModelInput{
		Faculties:      make([]Faculty, 0, len(raw.Faculties)),
		Courses:        make([]Course, 0, len(raw.Courses)),
		Classrooms:     make([]Classroom, 0, len(raw.Classrooms)),
		Timeslots:      make([]Timeslot, 0, len(raw.Timeslots)),
		FacultyIndex:   make(map[string]uint64, len(raw.Faculties)),
		CourseIndex:    make(map[string]uint64, len(raw.Courses)),
		ClassroomIndex: make(map[string]uint64, len(raw.Classrooms)),
		TimeslotIndex:  make(map[string]uint64, len(raw.Timeslots)),
	}

	//** Faculties
	for position, rawFaculty := range raw.Faculties {
		id, err := register(input.FacultyIndex, "faculty", position, rawFaculty.Id)
		if err != nil {
			return ModelInput{}, err
		}
		input.Faculties = append(input.Faculties, Faculty{
			Id:         id,
			OriginalId: mustIdentifier(rawFaculty.Id),
			Name:       rawFaculty.Name,
			Department: rawFaculty.Department,
		})
	}

	//** Classrooms
	for position, rawClassroom := range raw.Classrooms {
		id, err := register(input.ClassroomIndex, "classroom", position, rawClassroom.Id)
		if err != nil {
			return ModelInput{}, err
		}

		capacity, err := nonNegative(rawClassroom.Capacity, normalizer.defaults.ClassroomCapacity)
		if err != nil {
			return ModelInput{}, newModelBuildError(entityName("classroom", rawClassroom.Id, rawClassroom.Name), "capacity %v", err)
		}

		classroomType := rawClassroom.Type
		if classroomType == "" {
			classroomType = normalizer.defaults.ClassroomType
		}

		input.Classrooms = append(input.Classrooms, Classroom{
			Id:         id,
			OriginalId: mustIdentifier(rawClassroom.Id),
			Name:       rawClassroom.Name,
			Capacity:   capacity,
			Type:       classroomType,
		})
	}

	//** Timeslots
	for position, rawTimeslot := range raw.Timeslots {
		id, err := register(input.TimeslotIndex, "timeslot", position, rawTimeslot.Id)
		if err != nil {
			return ModelInput{}, err
		}
		input.Timeslots = append(input.Timeslots, Timeslot{
			Id:         id,
			OriginalId: mustIdentifier(rawTimeslot.Id),
			Label:      timeslotLabel(rawTimeslot),
			DayOfWeek:  rawTimeslot.DayOfWeek,
			SlotIndex:  rawTimeslot.SlotIndex,
			StartTime:  rawTimeslot.StartTime,
			EndTime:    rawTimeslot.EndTime,
		})
	}

	//** Courses
	for position, rawCourse := range raw.Courses {
		id, err := register(input.CourseIndex, "course", position, rawCourse.Id)
		if err != nil {
			return ModelInput{}, err
		}
		entity := entityName("course", rawCourse.Id, rawCourse.Name)

		size, err := nonNegative(rawCourse.Size, normalizer.defaults.CourseSize)
		if err != nil {
			return ModelInput{}, newModelBuildError(entity, "size %v", err)
		}

		sessions := rawCourse.SessionsPerWeek
		if sessions == nil {
			sessions = rawCourse.RequiredSlots
		}
		sessionsPerWeek, err := nonNegative(sessions, normalizer.defaults.SessionsPerWeek)
		if err != nil {
			return ModelInput{}, newModelBuildError(entity, "sessions per week %v", err)
		} else if sessionsPerWeek == 0 {
			return ModelInput{}, newModelBuildError(entity, "sessions per week must be positive")
		}

		faculty, err := normalizer.resolveFaculty(input, rawCourse, entity)
		if err != nil {
			return ModelInput{}, err
		}

		input.Courses = append(input.Courses, Course{
			Id:              id,
			OriginalId:      mustIdentifier(rawCourse.Id),
			Code:            rawCourse.Code,
			Name:            rawCourse.Name,
			Faculty:         faculty,
			Size:            size,
			SessionsPerWeek: sessionsPerWeek,
		})
	}

	return input, nil
}

func (normalizer *Normalizer) resolveFaculty(input ModelInput, rawCourse RawCourse, entity string) (uint64, error) {
	reference := rawCourse.FacultyId
	if reference == nil {
		reference = rawCourse.FacultyIdAlias
	}

	if identifier, ok := NewIdentifier(reference); ok {
		if faculty, ok := input.FacultyIndex[identifier.Key()]; ok {
			return faculty, nil
		}
	}

	if normalizer.defaults.FacultyPolicy == StrictFacultyPolicy {
		if reference == nil {
			return 0, newModelBuildError(entity, "no faculty reference")
		}
		return 0, newModelBuildError(entity, "unknown faculty \"%v\"", reference)
	} else if len(input.Faculties) == 0 {
		return 0, newModelBuildError(entity, "no faculty to default to")
	}
	return input.Faculties[0].Id, nil
}

// register assigns the next dense index to value, rejecting missing and duplicate identifiers
func register(index map[string]uint64, kind string, position int, value any) (uint64, error) {
	identifier, ok := NewIdentifier(value)
	if !ok {
		return 0, newModelBuildError(fmt.Sprintf("%v #%d", kind, position+1), "missing identifier")
	}
	if _, ok := index[identifier.Key()]; ok {
		return 0, newModelBuildError(fmt.Sprintf("%v \"%v\"", kind, identifier), "duplicate identifier")
	}

	id := uint64(len(index) + 1)
	index[identifier.Key()] = id
	return id, nil
}

func mustIdentifier(value any) Identifier {
	identifier, _ := NewIdentifier(value)
	return identifier
}

func nonNegative(value *int64, fallback uint64) (uint64, error) {
	if value == nil {
		return fallback, nil
	} else if *value < 0 {
		return 0, fmt.Errorf("must not be negative: %d", *value)
	}
	return uint64(*value), nil
}

func entityName(kind string, id any, name string) string {
	if name == "" {
		return fmt.Sprintf("%v \"%v\"", kind, id)
	}
	return fmt.Sprintf("%v \"%v\" (%v)", kind, id, name)
}

func timeslotLabel(rawTimeslot RawTimeslot) string {
	if rawTimeslot.Label != "" {
		return rawTimeslot.Label
	}

	parts := make([]string, 0, 3)
	if day := rawTimeslot.DayOfWeek; day != nil {
		if *day >= 0 && int(*day) < len(weekdays) {
			parts = append(parts, weekdays[*day])
		} else {
			parts = append(parts, fmt.Sprintf("Day %d", *day))
		}
	}
	if rawTimeslot.SlotIndex != nil {
		parts = append(parts, fmt.Sprintf("slot %d", *rawTimeslot.SlotIndex+1))
	}
	if rawTimeslot.StartTime != "" || rawTimeslot.EndTime != "" {
		parts = append(parts, fmt.Sprintf("%v-%v", rawTimeslot.StartTime, rawTimeslot.EndTime))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%v", rawTimeslot.Id)
	}
	return strings.Join(parts, " ")
}
