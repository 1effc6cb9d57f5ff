package service

import (
	"context"
	"sort"

	"github.com/achievehub/achievehub/internal/adapters/repository"
	"github.com/achievehub/achievehub/internal/domain/errs"
	"github.com/achievehub/achievehub/internal/domain/model"
	"github.com/achievehub/achievehub/internal/domain/progress"
	"github.com/achievehub/achievehub/internal/domain/types"
)

// StudentSkill is a completed skill with its catalog name.
type StudentSkill struct {
	model.CompletedSkill
	SkillName string `json:"skillName,omitempty"`
	Category  string `json:"category,omitempty"`
}

// AdvisorStudent is one advisee with skill counts.
type AdvisorStudent struct {
	model.Student
	RequiredSkills  int `json:"requiredSkills"`
	CompletedSkills int `json:"completedSkills"`
}

// StudentProfile is a student with the required skill count for their year.
type StudentProfile struct {
	model.Student
	RequiredSkills int `json:"requiredSkills"`
}

// Summarize reconciles the student's completed skills against the required
// skills of their year level.
func (s *Service) Summarize(ctx context.Context, studentID string) (types.SkillSummary, error) {
	const op = "service.Summarize"
	studentID, err := required(op, "studentId", studentID)
	if err != nil {
		return types.SkillSummary{}, err
	}

	student, err := find[model.Student](ctx, s, op, repository.Students, studentID)
	if err != nil {
		return types.SkillSummary{}, err
	}
	level := progress.ResolveYearLevel(student, studentID, s.now().In(s.loc))

	req, err := s.requiredSkills(ctx, op, level)
	if err != nil {
		return types.SkillSummary{}, err
	}
	completed, err := repository.QueryRecords[model.CompletedSkill](ctx, s.store, repository.CompletedSkills, studentID)
	if err != nil {
		return types.SkillSummary{}, errs.StoreFailure(op, err)
	}
	return progress.Summarize(studentID, level, req, completed), nil
}

func (s *Service) requiredSkills(ctx context.Context, op string, level int) ([]model.Skill, error) {
	skills, err := repository.ScanRecords[model.Skill](ctx, s.store, repository.Skills,
		repository.Eq("isRequired", true), repository.Eq("yearLevel", level))
	if err != nil {
		return nil, errs.StoreFailure(op, err)
	}
	return progress.RequiredFor(skills, level), nil
}

// RequiredSkills lists the required skills of a year level.
func (s *Service) RequiredSkills(ctx context.Context, yearLevel int) ([]model.Skill, error) {
	const op = "service.RequiredSkills"
	if yearLevel < progress.MinYearLevel || yearLevel > progress.MaxYearLevel {
		return nil, errs.E(op, errs.Validation, errs.CodeInvalidInput, "yearLevel must be between 1 and 4").
			With("field", "yearLevel")
	}
	skills, err := s.requiredSkills(ctx, op, yearLevel)
	if err != nil {
		return nil, err
	}
	sortSkills(skills)
	return skills, nil
}

// AllSkills lists the skill catalog ordered by id.
func (s *Service) AllSkills(ctx context.Context) ([]model.Skill, error) {
	const op = "service.AllSkills"
	skills, err := repository.ScanRecords[model.Skill](ctx, s.store, repository.Skills)
	if err != nil {
		return nil, errs.StoreFailure(op, err)
	}
	sortSkills(skills)
	return skills, nil
}

func sortSkills(skills []model.Skill) {
	sort.Slice(skills, func(i, j int) bool { return skills[i].SkillID < skills[j].SkillID })
}

// StudentInfo returns the student record with the required skill count of
// their year level.
func (s *Service) StudentInfo(ctx context.Context, studentID string) (StudentProfile, error) {
	const op = "service.StudentInfo"
	student, err := load[model.Student](ctx, s, op, repository.Students, studentNotFound(op), studentID)
	if err != nil {
		return StudentProfile{}, err
	}
	student.YearLevel = progress.ResolveYearLevel(&student, studentID, s.now().In(s.loc))
	req, err := s.requiredSkills(ctx, op, student.YearLevel)
	if err != nil {
		return StudentProfile{}, err
	}
	return StudentProfile{Student: student, RequiredSkills: len(req)}, nil
}

// StudentSkills lists the student's completed skills with catalog names.
func (s *Service) StudentSkills(ctx context.Context, studentID string) ([]StudentSkill, error) {
	const op = "service.StudentSkills"
	studentID, err := required(op, "studentId", studentID)
	if err != nil {
		return nil, err
	}
	completed, err := repository.QueryRecords[model.CompletedSkill](ctx, s.store, repository.CompletedSkills, studentID)
	if err != nil {
		return nil, errs.StoreFailure(op, err)
	}
	out := make([]StudentSkill, 0, len(completed))
	for _, c := range completed {
		view := StudentSkill{CompletedSkill: c}
		skill, err := find[model.Skill](ctx, s, op, repository.Skills, c.SkillID)
		if err != nil {
			return nil, err
		}
		if skill != nil {
			view.SkillName = skill.Name
			view.Category = skill.Category
		}
		out = append(out, view)
	}
	return out, nil
}

// AdvisorStudents lists an advisor's students with required and completed
// skill counts.
func (s *Service) AdvisorStudents(ctx context.Context, advisorID string) ([]AdvisorStudent, error) {
	const op = "service.AdvisorStudents"
	advisorID, err := required(op, "advisorId", advisorID)
	if err != nil {
		return nil, err
	}
	students, err := repository.ScanRecords[model.Student](ctx, s.store, repository.Students, repository.Eq("advisorId", advisorID))
	if err != nil {
		return nil, errs.StoreFailure(op, err)
	}
	catalog, err := repository.ScanRecords[model.Skill](ctx, s.store, repository.Skills, repository.Eq("isRequired", true))
	if err != nil {
		return nil, errs.StoreFailure(op, err)
	}

	now := s.now().In(s.loc)
	out := make([]AdvisorStudent, 0, len(students))
	for _, st := range students {
		st.YearLevel = progress.ResolveYearLevel(&st, st.StudentID, now)
		completed, err := repository.QueryRecords[model.CompletedSkill](ctx, s.store, repository.CompletedSkills, st.StudentID)
		if err != nil {
			return nil, errs.StoreFailure(op, err)
		}
		out = append(out, AdvisorStudent{
			Student:         st,
			RequiredSkills:  len(progress.RequiredFor(catalog, st.YearLevel)),
			CompletedSkills: len(completed),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}
