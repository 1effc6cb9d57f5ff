// Package model contains the records persisted in the key-value tables and
// passed between layers.
//
// Field tags carry both the store attribute name (dynamodbav) and the JSON
// name so a single canonical encoding applies to every response.
package model

// Activity levels.
const (
	LevelBasic        = "basic"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Confirmation methods.
const (
	ConfirmQR  = "qr"
	ConfirmGeo = "geo"
)

// CertificateIssued is the only certificate status currently written.
const CertificateIssued = "issued"

// Activity is an event students register for.
type Activity struct {
	ActivityID             string   `dynamodbav:"activityId" json:"activityId"`
	Name                   string   `dynamodbav:"name" json:"name"`
	Description            string   `dynamodbav:"description,omitempty" json:"description,omitempty"`
	StartDateTime          string   `dynamodbav:"startDateTime" json:"startDateTime"`
	EndDateTime            string   `dynamodbav:"endDateTime" json:"endDateTime"`
	LocationID             string   `dynamodbav:"locationId,omitempty" json:"locationId,omitempty"`
	Location               string   `dynamodbav:"location,omitempty" json:"location,omitempty"`
	PLO                    []string `dynamodbav:"plo,omitempty" json:"plo"`
	PLODescriptions        []string `dynamodbav:"ploDescriptions,omitempty" json:"ploDescriptions,omitempty"`
	SkillCategory          string   `dynamodbav:"skillCategory,omitempty" json:"skillCategory"`
	QRCode                 string   `dynamodbav:"qrCode,omitempty" json:"qrCode,omitempty"`
	SkillID                string   `dynamodbav:"skillId,omitempty" json:"skillId,omitempty"`
	SkillName              string   `dynamodbav:"skillName,omitempty" json:"skillName,omitempty"`
	ActivityGroup          string   `dynamodbav:"activityGroup,omitempty" json:"activityGroup,omitempty"`
	Level                  string   `dynamodbav:"level,omitempty" json:"level,omitempty"`
	SuitableYearLevel      int      `dynamodbav:"suitableYearLevel,omitempty" json:"suitableYearLevel,omitempty"`
	RequiredActivities     int      `dynamodbav:"requiredActivities,omitempty" json:"requiredActivities,omitempty"`
	PrerequisiteActivities []string `dynamodbav:"prerequisiteActivities,omitempty" json:"prerequisiteActivities,omitempty"`
	ImageURL               string   `dynamodbav:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatedBy              string   `dynamodbav:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt              string   `dynamodbav:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt              string   `dynamodbav:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Student is read-only catalog data.
type Student struct {
	StudentID  string `dynamodbav:"studentId" json:"studentId"`
	Name       string `dynamodbav:"name" json:"name"`
	YearLevel  int    `dynamodbav:"yearLevel,omitempty" json:"yearLevel,omitempty"`
	Department string `dynamodbav:"department,omitempty" json:"department,omitempty"`
	AdvisorID  string `dynamodbav:"advisorId,omitempty" json:"advisorId,omitempty"`
	Email      string `dynamodbav:"email,omitempty" json:"email,omitempty"`
}

// Skill is catalog data describing a verifiable skill.
type Skill struct {
	SkillID            string `dynamodbav:"skillId" json:"skillId"`
	Name               string `dynamodbav:"name" json:"name"`
	Description        string `dynamodbav:"description,omitempty" json:"description,omitempty"`
	Category           string `dynamodbav:"category,omitempty" json:"category,omitempty"`
	Subcategory        string `dynamodbav:"subcategory,omitempty" json:"subcategory,omitempty"`
	IsRequired         bool   `dynamodbav:"isRequired" json:"isRequired"`
	YearLevel          int    `dynamodbav:"yearLevel,omitempty" json:"yearLevel,omitempty"`
	PassScore          int    `dynamodbav:"passScore,omitempty" json:"passScore,omitempty"`
	RequiredActivities int    `dynamodbav:"requiredActivities,omitempty" json:"requiredActivities,omitempty"`
}

// PLO describes one outcome code.
type PLO struct {
	PLO           string `dynamodbav:"plo" json:"plo"`
	FullName      string `dynamodbav:"ploFullName,omitempty" json:"ploFullName,omitempty"`
	Description   string `dynamodbav:"description,omitempty" json:"description,omitempty"`
	SkillCategory string `dynamodbav:"skillCategory,omitempty" json:"skillCategory,omitempty"`
}

// Participation links a student to an activity. Flags only move false -> true.
type Participation struct {
	StudentID            string  `dynamodbav:"studentId" json:"studentId"`
	ActivityID           string  `dynamodbav:"activityId" json:"activityId"`
	ParticipationID      string  `dynamodbav:"participationId" json:"participationId"`
	IsConfirmed          bool    `dynamodbav:"isConfirmed" json:"isConfirmed"`
	SurveyCompleted      bool    `dynamodbav:"surveyCompleted" json:"surveyCompleted"`
	CertificateClaimed   bool    `dynamodbav:"certificateClaimed" json:"certificateClaimed"`
	RegisteredAt         string  `dynamodbav:"registeredAt" json:"registeredAt"`
	ConfirmedAt          string  `dynamodbav:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	SurveyCompletedAt    string  `dynamodbav:"surveyCompletedAt,omitempty" json:"surveyCompletedAt,omitempty"`
	CertificateClaimedAt string  `dynamodbav:"certificateClaimedAt,omitempty" json:"certificateClaimedAt,omitempty"`
	ConfirmMethod        string  `dynamodbav:"confirmMethod,omitempty" json:"confirmMethod,omitempty"`
	ConfirmLat           float64 `dynamodbav:"confirmLat,omitempty" json:"confirmLat,omitempty"`
	ConfirmLon           float64 `dynamodbav:"confirmLon,omitempty" json:"confirmLon,omitempty"`
	CreatedAt            string  `dynamodbav:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt            string  `dynamodbav:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// CompletedSkill records a verified skill. FinalScore never decreases.
type CompletedSkill struct {
	StudentID     string `dynamodbav:"studentId" json:"studentId"`
	SkillID       string `dynamodbav:"skillId" json:"skillId"`
	Evidence      string `dynamodbav:"evidence,omitempty" json:"evidence,omitempty"`
	FinalScore    int    `dynamodbav:"finalScore" json:"finalScore"`
	CompletedDate string `dynamodbav:"completedDate,omitempty" json:"completedDate,omitempty"`
	VerifiedDate  string `dynamodbav:"verifiedDate,omitempty" json:"verifiedDate,omitempty"`
}

// Certificate is created at most once per (student, activity).
type Certificate struct {
	StudentID     string `dynamodbav:"studentId" json:"studentId"`
	ActivityID    string `dynamodbav:"activityId" json:"activityId"`
	CertificateID string `dynamodbav:"certificateId" json:"certificateId"`
	IssuedAt      string `dynamodbav:"issuedAt" json:"issuedAt"`
	Status        string `dynamodbav:"status" json:"status"`
}

// Ratings are the five survey dimensions, each 1..5.
type Ratings struct {
	OverallSatisfaction int `dynamodbav:"overall_satisfaction" json:"overall_satisfaction"`
	ContentQuality      int `dynamodbav:"content_quality" json:"content_quality"`
	InstructorQuality   int `dynamodbav:"instructor_quality" json:"instructor_quality"`
	Organization        int `dynamodbav:"organization" json:"organization"`
	Recommendation      int `dynamodbav:"recommendation" json:"recommendation"`
}

// Assessment is an appended survey response.
type Assessment struct {
	AssessmentID string  `dynamodbav:"assessmentId" json:"assessmentId"`
	StudentID    string  `dynamodbav:"studentId" json:"studentId"`
	ActivityID   string  `dynamodbav:"activityId" json:"activityId"`
	Ratings      Ratings `dynamodbav:"ratings" json:"ratings"`
	AverageScore float64 `dynamodbav:"averageScore" json:"averageScore"`
	Comments     string  `dynamodbav:"comments,omitempty" json:"comments,omitempty"`
	SubmittedAt  string  `dynamodbav:"submittedAt" json:"submittedAt"`
}

// QuizQuestion belongs to one skill.
type QuizQuestion struct {
	QuestionID    string   `dynamodbav:"questionId" json:"questionId"`
	SkillID       string   `dynamodbav:"skillId" json:"skillId"`
	Question      string   `dynamodbav:"question" json:"question"`
	Options       []string `dynamodbav:"options" json:"options"`
	CorrectAnswer string   `dynamodbav:"correctAnswer" json:"correctAnswer,omitempty"`
	Difficulty    string   `dynamodbav:"difficulty,omitempty" json:"difficulty,omitempty"`
}

// AnswerResult is the graded outcome for one question.
type AnswerResult struct {
	QuestionID     string `dynamodbav:"questionId" json:"questionId"`
	SelectedAnswer string `dynamodbav:"selectedAnswer" json:"selectedAnswer"`
	CorrectAnswer  string `dynamodbav:"correctAnswer" json:"correctAnswer"`
	IsCorrect      bool   `dynamodbav:"isCorrect" json:"isCorrect"`
}

// QuizAttempt is an append-only log entry.
type QuizAttempt struct {
	AttemptID      string         `dynamodbav:"attemptId" json:"attemptId"`
	StudentID      string         `dynamodbav:"studentId" json:"studentId"`
	SkillID        string         `dynamodbav:"skillId" json:"skillId"`
	Answers        []AnswerResult `dynamodbav:"answers" json:"answers"`
	Score          int            `dynamodbav:"score" json:"score"`
	TotalQuestions int            `dynamodbav:"totalQuestions" json:"totalQuestions"`
	CorrectAnswers int            `dynamodbav:"correctAnswers" json:"correctAnswers"`
	IsPassed       bool           `dynamodbav:"isPassed" json:"isPassed"`
	StartedAt      string         `dynamodbav:"startedAt" json:"startedAt"`
	CompletedAt    string         `dynamodbav:"completedAt" json:"completedAt"`
}

// User is a login identity. PasswordHash is a bcrypt hash and never leaves the service.
type User struct {
	UserID       string `dynamodbav:"userId" json:"userId"`
	Name         string `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Role         string `dynamodbav:"role" json:"role"`
	StudentID    string `dynamodbav:"studentId,omitempty" json:"studentId,omitempty"`
	PasswordHash string `dynamodbav:"passwordHash" json:"-"`
}

// Location is a venue with a geofence.
type Location struct {
	LocationID   string  `dynamodbav:"locationId" json:"locationId"`
	LocationName string  `dynamodbav:"locationName" json:"locationName"`
	Latitude     float64 `dynamodbav:"latitude" json:"latitude"`
	Longitude    float64 `dynamodbav:"longitude" json:"longitude"`
	RadiusMeters float64 `dynamodbav:"radiusMeters,omitempty" json:"radiusMeters,omitempty"`
}
