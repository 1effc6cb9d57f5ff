// Package progress reconciles a student's completed skills against the
// required skills of their year level.
package progress

import (
	"sort"
	"strconv"
	"time"

	"github.com/achievehub/achievehub/internal/domain/model"
	"github.com/achievehub/achievehub/internal/domain/types"
)

// Year level bounds.
const (
	MinYearLevel = 1
	MaxYearLevel = 4
)

// DefaultRequiredActivities is reported for skills that do not declare a count.
const DefaultRequiredActivities = 3

const (
	buddhistEraOffset = 543
	admissionBase     = 2500
)

// YearLevelFromStudentID derives a year level from the two-digit admission
// year prefix of a student ID (Buddhist era, e.g. "66" is BE 2566). The
// current year is taken from now. IDs without a numeric prefix yield 1.
func YearLevelFromStudentID(studentID string, now time.Time) int {
	if len(studentID) < 2 {
		return MinYearLevel
	}
	prefix, err := strconv.Atoi(studentID[:2])
	if err != nil || prefix < 0 {
		return MinYearLevel
	}
	currentBE := now.Year() + buddhistEraOffset
	return clamp(currentBE - (admissionBase + prefix) + 1)
}

// ResolveYearLevel prefers the declared year level and falls back to the
// student ID heuristic.
func ResolveYearLevel(student *model.Student, studentID string, now time.Time) int {
	if student != nil && student.YearLevel > 0 {
		return clamp(student.YearLevel)
	}
	return YearLevelFromStudentID(studentID, now)
}

func clamp(level int) int {
	if level < MinYearLevel {
		return MinYearLevel
	}
	if level > MaxYearLevel {
		return MaxYearLevel
	}
	return level
}

// RequiredFor filters the catalog to required skills of a year level.
func RequiredFor(catalog []model.Skill, yearLevel int) []model.Skill {
	out := make([]model.Skill, 0, len(catalog))
	for _, s := range catalog {
		if s.IsRequired && s.YearLevel == yearLevel {
			out = append(out, s)
		}
	}
	return out
}

// Summarize tallies completed skills against the required set. Pending
// skills are ordered by skill ID.
func Summarize(studentID string, yearLevel int, required []model.Skill, completed []model.CompletedSkill) types.SkillSummary {
	done := make(map[string]struct{}, len(completed))
	for _, c := range completed {
		if c.SkillID != "" {
			done[c.SkillID] = struct{}{}
		}
	}

	req := make(map[string]model.Skill, len(required))
	for _, s := range required {
		req[s.SkillID] = s
	}

	sum := types.SkillSummary{
		StudentID:           studentID,
		YearLevel:           yearLevel,
		TotalRequiredSkills: len(req),
		PendingSkills:       []types.PendingSkill{},
	}
	for id := range done {
		if _, ok := req[id]; ok {
			sum.CompletedRequiredSkills++
		} else {
			sum.CompletedOptionalSkills++
		}
	}
	for id, s := range req {
		if _, ok := done[id]; ok {
			continue
		}
		n := s.RequiredActivities
		if n <= 0 {
			n = DefaultRequiredActivities
		}
		sum.PendingSkills = append(sum.PendingSkills, types.PendingSkill{
			ID:                 id,
			Name:               s.Name,
			Category:           s.Category,
			RequiredActivities: n,
		})
	}
	sort.Slice(sum.PendingSkills, func(i, j int) bool {
		return sum.PendingSkills[i].ID < sum.PendingSkills[j].ID
	})
	return sum
}
