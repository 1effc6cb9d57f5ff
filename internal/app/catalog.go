package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/achievehub/achievehub/internal/adapters/repository"
	"github.com/achievehub/achievehub/internal/domain/classify"
	"github.com/achievehub/achievehub/internal/domain/errs"
	"github.com/achievehub/achievehub/internal/domain/model"
	"github.com/achievehub/achievehub/internal/domain/types"
	"github.com/achievehub/achievehub/pkg/logger"
)

// StringList decodes either a JSON array of strings or one comma separated string.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var joined *string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	*l = nil
	if joined == nil {
		return nil
	}
	for _, part := range strings.Split(*joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

var levelAliases = map[string]string{
	"basic":        model.LevelBasic,
	"พื้นฐาน":      model.LevelBasic,
	"intermediate": model.LevelIntermediate,
	"กลาง":         model.LevelIntermediate,
	"ปานกลาง":      model.LevelIntermediate,
	"advanced":     model.LevelAdvanced,
	"ขั้นสูง":      model.LevelAdvanced,
}

// ActivityInput creates an activity.
type ActivityInput struct {
	Name                   string     `json:"name" validate:"required"`
	Description            string     `json:"description"`
	StartDateTime          string     `json:"startDateTime" validate:"required"`
	EndDateTime            string     `json:"endDateTime" validate:"required"`
	LocationID             string     `json:"locationId"`
	Location               string     `json:"location"`
	PLO                    StringList `json:"plo"`
	PLODescriptions        StringList `json:"ploDescriptions"`
	SkillCategory          string     `json:"skillCategory"`
	SkillID                string     `json:"skillId"`
	Level                  string     `json:"level"`
	SuitableYearLevel      int        `json:"suitableYearLevel" validate:"omitempty,min=1,max=4"`
	RequiredActivities     int        `json:"requiredActivities" validate:"omitempty,min=0"`
	PrerequisiteActivities StringList `json:"prerequisiteActivities"`
	QRCode                 string     `json:"qrCode"`
	ImageURL               string     `json:"imageUrl" validate:"omitempty,url"`
	CreatedBy              string     `json:"createdBy"`
}

// ActivityPatch corrects an existing activity. Nil fields are left unchanged.
type ActivityPatch struct {
	Name              *string     `json:"name" validate:"omitempty,min=1"`
	Description       *string     `json:"description"`
	StartDateTime     *string     `json:"startDateTime"`
	EndDateTime       *string     `json:"endDateTime"`
	LocationID        *string     `json:"locationId"`
	Location          *string     `json:"location"`
	PLO               *StringList `json:"plo"`
	SkillCategory     *string     `json:"skillCategory"`
	Level             *string     `json:"level"`
	SuitableYearLevel *int        `json:"suitableYearLevel" validate:"omitempty,min=1,max=4"`
	QRCode            *string     `json:"qrCode"`
	ImageURL          *string     `json:"imageUrl" validate:"omitempty,url"`
}

// ActivityFilter narrows ListActivities.
type ActivityFilter struct {
	SkillType     string
	PLO           string
	ActivityGroup string
	IncludePast   bool
}

// ActivityDetail is an activity with its outcome codes, venue and skill resolved.
type ActivityDetail struct {
	model.Activity
	PLODetails []model.PLO     `json:"ploDetails"`
	Venue      *model.Location `json:"venue,omitempty"`
	Skill      *model.Skill    `json:"skill,omitempty"`
}

// Participant is one row of ActivityParticipants.
type Participant struct {
	model.Participation
	StudentName       string `json:"studentName"`
	StudentYear       int    `json:"studentYear"`
	StudentDepartment string `json:"studentDepartment"`
}

// ParticipantList is the participant roster of an activity.
type ParticipantList struct {
	ActivityID   string                 `json:"activityId"`
	ActivityName string                 `json:"activityName"`
	Statistics   types.ParticipantStats `json:"statistics"`
	Participants []Participant          `json:"participants"`
}

// StudentActivity is one participation with its activity.
type StudentActivity struct {
	Participation model.Participation `json:"participation"`
	Activity      *model.Activity     `json:"activity,omitempty"`
}

func normalizeLevel(op, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if lvl, ok := levelAliases[strings.ToLower(raw)]; ok {
		return lvl, nil
	}
	return "", errs.E(op, errs.Validation, errs.CodeInvalidInput, "level must be basic, intermediate or advanced").
		With("field", "level")
}

// category derives the stored category: outcome codes first, then the
// supplied label, both in canonical form.
func category(codes []string, supplied string) string {
	if c := classify.ComputeCategory(codes); c != "" {
		return c
	}
	return classify.NormalizeCategory(supplied)
}

func (s *Service) shortID(prefix string, n int) string {
	raw := strings.ToUpper(strings.ReplaceAll(s.newID(), "-", ""))
	if len(raw) > n {
		raw = raw[:n]
	}
	return prefix + raw
}

func (s *Service) checkSpan(op, start, end string) error {
	st, err := s.parseTime(op, "startDateTime", start)
	if err != nil {
		return err
	}
	en, err := s.parseTime(op, "endDateTime", end)
	if err != nil {
		return err
	}
	if !en.After(st) {
		return errs.E(op, errs.Validation, errs.CodeInvalidInput, "endDateTime must be after startDateTime").
			With("field", "endDateTime")
	}
	return nil
}

func (s *Service) venue(ctx context.Context, op, locationID string) (model.Location, error) {
	return load[model.Location](ctx, s, op, repository.Locations,
		errs.E(op, errs.NotFound, errs.CodeNotFound, "location not found").With("field", "locationId"), locationID)
}

// checkQRFree fails when another activity than self already uses code.
func (s *Service) checkQRFree(ctx context.Context, op, code, self string) error {
	dup, err := repository.ScanRecords[model.Activity](ctx, s.store, repository.Activities, repository.Eq("qrCode", code))
	if err != nil {
		return errs.StoreFailure(op, err)
	}
	for _, a := range dup {
		if a.ActivityID != self {
			return errs.E(op, errs.StateConflict, errs.CodeDuplicateCode, "qrCode is already used by another activity").
				With("field", "qrCode").
				With("activityId", a.ActivityID)
		}
	}
	return nil
}

const maxIDAttempts = 3

// CreateActivity validates and stores a new activity.
func (s *Service) CreateActivity(ctx context.Context, in ActivityInput) (model.Activity, error) {
	const op = "service.CreateActivity"
	name, err := required(op, "name", in.Name)
	if err != nil {
		return model.Activity{}, err
	}
	if err := s.checkSpan(op, in.StartDateTime, in.EndDateTime); err != nil {
		return model.Activity{}, err
	}
	level, err := normalizeLevel(op, in.Level)
	if err != nil {
		return model.Activity{}, err
	}

	codes := classify.NormalizeCodes(in.PLO)
	now := s.stamp()
	a := model.Activity{
		Name:                   name,
		Description:            strings.TrimSpace(in.Description),
		StartDateTime:          strings.TrimSpace(in.StartDateTime),
		EndDateTime:            strings.TrimSpace(in.EndDateTime),
		LocationID:             strings.TrimSpace(in.LocationID),
		Location:               strings.TrimSpace(in.Location),
		PLO:                    codes,
		PLODescriptions:        in.PLODescriptions,
		SkillCategory:          category(codes, in.SkillCategory),
		SkillID:                strings.TrimSpace(in.SkillID),
		Level:                  level,
		SuitableYearLevel:      in.SuitableYearLevel,
		RequiredActivities:     in.RequiredActivities,
		PrerequisiteActivities: in.PrerequisiteActivities,
		QRCode:                 strings.TrimSpace(in.QRCode),
		ImageURL:               strings.TrimSpace(in.ImageURL),
		CreatedBy:              strings.TrimSpace(in.CreatedBy),
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if a.SkillID != "" {
		skill, err := load[model.Skill](ctx, s, op, repository.Skills, skillNotFound(op), a.SkillID)
		if err != nil {
			return model.Activity{}, err
		}
		a.SkillName = skill.Name
		a.ActivityGroup = skill.Subcategory
		if a.SuitableYearLevel == 0 {
			a.SuitableYearLevel = skill.YearLevel
		}
		if a.RequiredActivities == 0 {
			a.RequiredActivities = skill.RequiredActivities
		}
		if a.SkillCategory == "" {
			a.SkillCategory = classify.NormalizeCategory(skill.Category)
		}
	}
	if a.LocationID != "" {
		venue, err := s.venue(ctx, op, a.LocationID)
		if err != nil {
			return model.Activity{}, err
		}
		if a.Location == "" {
			a.Location = venue.LocationName
		}
	}
	if a.QRCode != "" {
		if err := s.checkQRFree(ctx, op, a.QRCode, ""); err != nil {
			return model.Activity{}, err
		}
	}

	autoQR := a.QRCode == ""
	for attempt := 0; ; attempt++ {
		a.ActivityID = s.shortID("A", 7)
		if autoQR {
			a.QRCode = s.shortID("QR", 8)
		}
		err = repository.PutRecord(ctx, s.store, repository.Activities, a, repository.IfNotExists())
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrAlreadyExists) || attempt+1 >= maxIDAttempts {
			return model.Activity{}, errs.StoreFailure(op, err)
		}
	}

	s.logger.Info(ctx, "activity created",
		logger.String("activityId", a.ActivityID),
		logger.String("skillCategory", a.SkillCategory))
	return a, nil
}

// UpdateActivity applies an administrative correction.
func (s *Service) UpdateActivity(ctx context.Context, activityID string, patch ActivityPatch) (model.Activity, error) {
	const op = "service.UpdateActivity"
	current, err := load[model.Activity](ctx, s, op, repository.Activities, activityNotFound(op), activityID)
	if err != nil {
		return model.Activity{}, err
	}

	changes := map[string]any{}
	setString := func(attr string, v *string) {
		if v != nil {
			changes[attr] = strings.TrimSpace(*v)
		}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return model.Activity{}, errs.E(op, errs.Validation, errs.CodeInvalidInput, "name must not be empty").With("field", "name")
	}
	setString("name", patch.Name)
	setString("description", patch.Description)
	setString("locationId", patch.LocationID)
	setString("location", patch.Location)
	setString("imageUrl", patch.ImageURL)

	if patch.LocationID != nil {
		if id := strings.TrimSpace(*patch.LocationID); id != "" {
			venue, err := s.venue(ctx, op, id)
			if err != nil {
				return model.Activity{}, err
			}
			if patch.Location == nil {
				changes["location"] = venue.LocationName
			}
		}
	}
	if patch.QRCode != nil {
		code := strings.TrimSpace(*patch.QRCode)
		if code == "" {
			return model.Activity{}, errs.E(op, errs.Validation, errs.CodeInvalidInput, "qrCode must not be empty").With("field", "qrCode")
		}
		if code != current.QRCode {
			if err := s.checkQRFree(ctx, op, code, current.ActivityID); err != nil {
				return model.Activity{}, err
			}
		}
		changes["qrCode"] = code
	}

	start, end := current.StartDateTime, current.EndDateTime
	if patch.StartDateTime != nil {
		start = strings.TrimSpace(*patch.StartDateTime)
		changes["startDateTime"] = start
	}
	if patch.EndDateTime != nil {
		end = strings.TrimSpace(*patch.EndDateTime)
		changes["endDateTime"] = end
	}
	if patch.StartDateTime != nil || patch.EndDateTime != nil {
		if err := s.checkSpan(op, start, end); err != nil {
			return model.Activity{}, err
		}
	}
	if patch.Level != nil {
		level, err := normalizeLevel(op, *patch.Level)
		if err != nil {
			return model.Activity{}, err
		}
		changes["level"] = level
	}
	if patch.SuitableYearLevel != nil {
		changes["suitableYearLevel"] = *patch.SuitableYearLevel
	}

	codes := current.PLO
	if patch.PLO != nil {
		codes = classify.NormalizeCodes(*patch.PLO)
		changes["plo"] = codes
	}
	if patch.PLO != nil || patch.SkillCategory != nil {
		var supplied string
		switch {
		case patch.SkillCategory != nil:
			supplied = *patch.SkillCategory
		case current.SkillID != "":
			// New codes without a label: fall back to the linked skill.
			skill, err := find[model.Skill](ctx, s, op, repository.Skills, current.SkillID)
			if err != nil {
				return model.Activity{}, err
			}
			if skill != nil {
				supplied = skill.Category
			}
		}
		changes["skillCategory"] = category(codes, supplied)
	}

	if len(changes) == 0 {
		return model.Activity{}, errs.E(op, errs.Validation, errs.CodeInvalidInput, "no fields to update")
	}
	changes["updatedAt"] = s.stamp()

	key, err := s.key(op, repository.Activities, activityID)
	if err != nil {
		return model.Activity{}, err
	}
	updated, err := repository.UpdateRecord[model.Activity](ctx, s.store, repository.Activities, key, changes)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.Activity{}, activityNotFound(op)
	case err != nil:
		return model.Activity{}, errs.StoreFailure(op, err)
	}
	return updated, nil
}

// ListActivities returns activities ordered by start time. Unless
// IncludePast is set only activities that have not started are listed.
// The skill type filter is matched in canonical form.
func (s *Service) ListActivities(ctx context.Context, f ActivityFilter) ([]model.Activity, error) {
	const op = "service.ListActivities"
	var filters []repository.Condition
	if code := strings.ToUpper(strings.TrimSpace(f.PLO)); code != "" {
		filters = append(filters, repository.Contains("plo", code))
	}
	if group := strings.TrimSpace(f.ActivityGroup); group != "" {
		filters = append(filters, repository.Eq("activityGroup", group))
	}
	all, err := repository.ScanRecords[model.Activity](ctx, s.store, repository.Activities, filters...)
	if err != nil {
		return nil, errs.StoreFailure(op, err)
	}

	wantType := classify.NormalizeCategory(f.SkillType)
	if wantType == "all" {
		wantType = ""
	}
	now := s.now()
	type row struct {
		a     model.Activity
		start time.Time
	}
	rows := make([]row, 0, len(all))
	for _, a := range all {
		if wantType != "" && classify.NormalizeCategory(a.SkillCategory) != wantType {
			continue
		}
		start, err := s.parseTime(op, "startDateTime", a.StartDateTime)
		if err != nil && !f.IncludePast {
			continue
		}
		if !f.IncludePast && !start.After(now) {
			continue
		}
		rows = append(rows, row{a: a, start: start})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].start.Before(rows[j].start) })

	out := make([]model.Activity, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.a)
	}
	return out, nil
}

// ActivityDetail resolves an activity's outcome codes, venue and skill.
func (s *Service) ActivityDetail(ctx context.Context, activityID string) (ActivityDetail, error) {
	const op = "service.ActivityDetail"
	a, err := load[model.Activity](ctx, s, op, repository.Activities, activityNotFound(op), activityID)
	if err != nil {
		return ActivityDetail{}, err
	}
	d := ActivityDetail{Activity: a, PLODetails: make([]model.PLO, 0, len(a.PLO))}
	for _, code := range a.PLO {
		plo, err := find[model.PLO](ctx, s, op, repository.PLOs, code)
		if err != nil {
			return ActivityDetail{}, err
		}
		if plo == nil {
			plo = &model.PLO{PLO: code}
		}
		d.PLODetails = append(d.PLODetails, *plo)
	}
	if a.LocationID != "" {
		if d.Venue, err = find[model.Location](ctx, s, op, repository.Locations, a.LocationID); err != nil {
			return ActivityDetail{}, err
		}
	}
	if a.SkillID != "" {
		if d.Skill, err = find[model.Skill](ctx, s, op, repository.Skills, a.SkillID); err != nil {
			return ActivityDetail{}, err
		}
	}
	return d, nil
}

// ActivityParticipants lists an activity's participants, newest first, with
// stage counts.
func (s *Service) ActivityParticipants(ctx context.Context, activityID string) (ParticipantList, error) {
	const op = "service.ActivityParticipants"
	a, err := load[model.Activity](ctx, s, op, repository.Activities, activityNotFound(op), activityID)
	if err != nil {
		return ParticipantList{}, err
	}
	parts, err := repository.ScanRecords[model.Participation](ctx, s.store, repository.ActivityParticipations,
		repository.Eq("activityId", a.ActivityID))
	if err != nil {
		return ParticipantList{}, errs.StoreFailure(op, err)
	}

	res := ParticipantList{ActivityID: a.ActivityID, ActivityName: a.Name, Participants: make([]Participant, 0, len(parts))}
	for _, p := range parts {
		row := Participant{Participation: p}
		student, err := find[model.Student](ctx, s, op, repository.Students, p.StudentID)
		if err != nil {
			return ParticipantList{}, err
		}
		if student != nil {
			row.StudentName = student.Name
			row.StudentYear = student.YearLevel
			row.StudentDepartment = student.Department
		}
		res.Participants = append(res.Participants, row)

		res.Statistics.TotalRegistered++
		if p.IsConfirmed {
			res.Statistics.TotalConfirmed++
		}
		if p.SurveyCompleted {
			res.Statistics.TotalSurveyCompleted++
		}
	}
	res.Statistics.TotalPending = res.Statistics.TotalRegistered - res.Statistics.TotalConfirmed

	registered := func(p Participant) time.Time {
		t, _ := s.parseTime(op, "registeredAt", p.RegisteredAt)
		return t
	}
	sort.SliceStable(res.Participants, func(i, j int) bool {
		return registered(res.Participants[i]).After(registered(res.Participants[j]))
	})
	return res, nil
}

// StudentActivities lists a student's participations with their activities.
func (s *Service) StudentActivities(ctx context.Context, studentID string) ([]StudentActivity, error) {
	const op = "service.StudentActivities"
	studentID, err := required(op, "studentId", studentID)
	if err != nil {
		return nil, err
	}
	parts, err := repository.QueryRecords[model.Participation](ctx, s.store, repository.ActivityParticipations, studentID)
	if err != nil {
		return nil, errs.StoreFailure(op, err)
	}
	out := make([]StudentActivity, 0, len(parts))
	for _, p := range parts {
		a, err := find[model.Activity](ctx, s, op, repository.Activities, p.ActivityID)
		if err != nil {
			return nil, err
		}
		out = append(out, StudentActivity{Participation: p, Activity: a})
	}
	return out, nil
}
