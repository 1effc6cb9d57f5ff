package service

import (
	"context"
	"errors"
	"strings"

	"github.com/achievehub/achievehub/internal/adapters/repository"
	"github.com/achievehub/achievehub/internal/domain/eligibility"
	"github.com/achievehub/achievehub/internal/domain/errs"
	"github.com/achievehub/achievehub/internal/domain/model"
	"github.com/achievehub/achievehub/internal/domain/scoring"
	"github.com/achievehub/achievehub/internal/domain/types"
	"github.com/achievehub/achievehub/pkg/logger"
	"github.com/achievehub/achievehub/pkg/metrics"
)

// QuizSet is the question sheet served to a student.
type QuizSet struct {
	SkillID        string               `json:"skillId"`
	SkillName      string               `json:"skillName"`
	Questions      []model.QuizQuestion `json:"questions"`
	TotalQuestions int                  `json:"totalQuestions"`
	TimeLimit      int                  `json:"timeLimit"`
	PassingScore   int                  `json:"passingScore"`
}

func skillNotFound(op string) *errs.Error {
	return errs.E(op, errs.NotFound, errs.CodeSkillNotFound, "skill not found")
}

// CheckQuizEligibility reports whether the student has confirmed attendance
// at enough activities tied to the skill.
func (s *Service) CheckQuizEligibility(ctx context.Context, studentID, skillID string) (types.QuizEligibility, error) {
	const op = "service.CheckQuizEligibility"
	var res types.QuizEligibility
	studentID, err := required(op, "studentId", studentID)
	if err != nil {
		return res, err
	}
	if _, err := load[model.Skill](ctx, s, op, repository.Skills, skillNotFound(op), skillID); err != nil {
		return res, err
	}

	n, err := s.confirmedForSkill(ctx, op, studentID, skillID)
	if err != nil {
		return res, err
	}
	return types.QuizEligibility{
		SkillID:             skillID,
		StudentID:           studentID,
		Eligible:            n >= s.quizRequired,
		ConfirmedActivities: n,
		RequiredActivities:  s.quizRequired,
	}, nil
}

// confirmedForSkill counts the student's confirmed participations in
// activities whose skill is skillID.
func (s *Service) confirmedForSkill(ctx context.Context, op, studentID, skillID string) (int, error) {
	parts, err := repository.QueryRecords[model.Participation](ctx, s.store, repository.ActivityParticipations, studentID)
	if err != nil {
		return 0, errs.StoreFailure(op, err)
	}
	if len(parts) == 0 {
		return 0, nil
	}
	activities, err := repository.ScanRecords[model.Activity](ctx, s.store, repository.Activities, repository.Eq("skillId", skillID))
	if err != nil {
		return 0, errs.StoreFailure(op, err)
	}
	tied := make(map[string]struct{}, len(activities))
	for _, a := range activities {
		tied[a.ActivityID] = struct{}{}
	}

	n := 0
	for _, p := range parts {
		if _, ok := tied[p.ActivityID]; ok && p.IsConfirmed {
			n++
		}
	}
	return n, nil
}

// QuizQuestions samples questions for a skill without their answers. When
// studentID is given the student must be eligible.
func (s *Service) QuizQuestions(ctx context.Context, skillID, studentID string) (QuizSet, error) {
	const op = "service.QuizQuestions"
	skill, err := load[model.Skill](ctx, s, op, repository.Skills, skillNotFound(op), skillID)
	if err != nil {
		return QuizSet{}, err
	}

	if studentID = strings.TrimSpace(studentID); studentID != "" {
		n, err := s.confirmedForSkill(ctx, op, studentID, skillID)
		if err != nil {
			return QuizSet{}, err
		}
		if n < s.quizRequired {
			return QuizSet{}, errs.E(op, errs.Forbidden, errs.CodeNotEligible, "not enough confirmed activities for this skill").
				With("confirmedActivities", n).
				With("requiredActivities", s.quizRequired)
		}
	}

	questions, err := repository.ScanRecords[model.QuizQuestion](ctx, s.store, repository.QuizQuestions, repository.Eq("skillId", skillID))
	if err != nil {
		return QuizSet{}, errs.StoreFailure(op, err)
	}
	s.shuffle(len(questions), func(i, j int) { questions[i], questions[j] = questions[j], questions[i] })
	if len(questions) > s.quizQuestionCount {
		questions = questions[:s.quizQuestionCount]
	}
	for i := range questions {
		questions[i].CorrectAnswer = ""
	}

	return QuizSet{
		SkillID:        skill.SkillID,
		SkillName:      skill.Name,
		Questions:      questions,
		TotalQuestions: len(questions),
		TimeLimit:      s.quizTimeLimit,
		PassingScore:   s.grader.PassScore(skill),
	}, nil
}

// SubmitQuiz grades answers, logs the attempt and on a pass records the
// completed skill. A stored score is only ever raised.
func (s *Service) SubmitQuiz(ctx context.Context, studentID, skillID string, answers []scoring.Answer, startedAt string) (types.QuizResult, error) {
	const op = "service.SubmitQuiz"
	studentID, err := required(op, "studentId", studentID)
	if err != nil {
		return types.QuizResult{}, err
	}
	if len(answers) == 0 {
		return types.QuizResult{}, errs.E(op, errs.Validation, errs.CodeInvalidInput, "answers are required").With("field", "answers")
	}
	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		if strings.TrimSpace(a.QuestionID) == "" {
			return types.QuizResult{}, errs.E(op, errs.Validation, errs.CodeInvalidInput, "every answer needs a questionId")
		}
		if _, dup := seen[a.QuestionID]; dup {
			return types.QuizResult{}, errs.E(op, errs.Validation, errs.CodeInvalidInput, "question answered twice").
				With("questionId", a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}
	}

	skill, err := load[model.Skill](ctx, s, op, repository.Skills, skillNotFound(op), skillID)
	if err != nil {
		return types.QuizResult{}, err
	}

	bank := make(map[string]model.QuizQuestion, len(answers))
	for id := range seen {
		q, err := find[model.QuizQuestion](ctx, s, op, repository.QuizQuestions, id)
		if err != nil {
			return types.QuizResult{}, err
		}
		if q != nil {
			bank[id] = *q
		}
	}
	graded := s.grader.Grade(skill, bank, answers)

	completedAt := s.stamp()
	if strings.TrimSpace(startedAt) == "" {
		startedAt = completedAt
	}
	attempt := model.QuizAttempt{
		AttemptID:      s.newID(),
		StudentID:      studentID,
		SkillID:        skill.SkillID,
		Answers:        graded.Answers,
		Score:          graded.Score,
		TotalQuestions: graded.Total,
		CorrectAnswers: graded.Correct,
		IsPassed:       graded.Passed,
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
	}
	if err := repository.PutRecord(ctx, s.store, repository.QuizAttempts, attempt); err != nil {
		return types.QuizResult{}, errs.StoreFailure(op, err)
	}
	metrics.RecordQuizAttempt(graded.Passed)

	if graded.Passed {
		if err := s.recordCompletedSkill(ctx, op, studentID, skill.SkillID, graded.Score); err != nil {
			return types.QuizResult{}, err
		}
	}

	s.logger.Info(ctx, "quiz graded",
		logger.String("studentId", studentID),
		logger.String("skillId", skill.SkillID),
		logger.Int("score", graded.Score),
		logger.Bool("passed", graded.Passed))

	return types.QuizResult{
		AttemptID:      attempt.AttemptID,
		Score:          graded.Score,
		TotalQuestions: graded.Total,
		CorrectAnswers: graded.Correct,
		IsPassed:       graded.Passed,
		PassingScore:   graded.PassScore,
		SkillReceived:  graded.Passed,
	}, nil
}

// recordCompletedSkill creates the completed skill or raises its score.
func (s *Service) recordCompletedSkill(ctx context.Context, op, studentID, skillID string, score int) error {
	today := eligibility.FormatDate(s.now(), s.loc)
	rec := model.CompletedSkill{
		StudentID:     studentID,
		SkillID:       skillID,
		Evidence:      scoring.Evidence(score),
		FinalScore:    score,
		CompletedDate: today,
		VerifiedDate:  today,
	}
	err := repository.PutRecord(ctx, s.store, repository.CompletedSkills, rec, repository.IfNotExists())
	if err == nil {
		metrics.RecordCompletedSkillWrite()
		return nil
	}
	if !errors.Is(err, repository.ErrAlreadyExists) {
		return errs.StoreFailure(op, err)
	}

	key, err := s.key(op, repository.CompletedSkills, studentID, skillID)
	if err != nil {
		return err
	}
	_, err = s.store.Update(ctx, repository.CompletedSkills, key,
		map[string]any{"finalScore": score, "evidence": rec.Evidence, "verifiedDate": today},
		repository.Lt("finalScore", score))
	switch {
	case err == nil:
		metrics.RecordCompletedSkillWrite()
	case isCondition(err):
		// Stored score is already at least as high.
	default:
		return errs.StoreFailure(op, err)
	}
	return nil
}
