// Package types contains response shapes shared by the service and transport layers.
package types

// PendingSkill is a required skill the student has not completed yet.
type PendingSkill struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Category           string `json:"category"`
	RequiredActivities int    `json:"requiredActivities"`
}

// SkillSummary is the required-vs-completed tally for one student.
type SkillSummary struct {
	StudentID               string         `json:"studentId"`
	YearLevel               int            `json:"yearLevel"`
	TotalRequiredSkills     int            `json:"totalRequiredSkills"`
	CompletedRequiredSkills int            `json:"completedRequiredSkills"`
	CompletedOptionalSkills int            `json:"completedOptionalSkills"`
	PendingSkills           []PendingSkill `json:"pendingSkills"`
}

// ParticipantStats counts participations of one activity by stage.
type ParticipantStats struct {
	TotalRegistered      int `json:"totalRegistered"`
	TotalConfirmed       int `json:"totalConfirmed"`
	TotalPending         int `json:"totalPending"`
	TotalSurveyCompleted int `json:"totalSurveyCompleted"`
}

// QuizResult is returned after grading a quiz.
type QuizResult struct {
	AttemptID      string `json:"attemptId"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	CorrectAnswers int    `json:"correctAnswers"`
	IsPassed       bool   `json:"isPassed"`
	PassingScore   int    `json:"passingScore"`
	SkillReceived  bool   `json:"skillReceived"`
}

// QuizEligibility reports progress toward unlocking a skill quiz.
type QuizEligibility struct {
	SkillID             string `json:"skillId"`
	StudentID           string `json:"studentId"`
	Eligible            bool   `json:"eligible"`
	ConfirmedActivities int    `json:"confirmedActivities"`
	RequiredActivities  int    `json:"requiredActivities"`
}
