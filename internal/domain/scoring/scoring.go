// Package scoring grades skill-verification quizzes.
package scoring

import (
	"fmt"
	"strings"

	"github.com/achievehub/achievehub/internal/domain/model"
)

// DefaultPassScore applies when a skill does not declare its own threshold.
const DefaultPassScore = 70

const maxScoreValue = 100

// Answer is one submitted choice.
type Answer struct {
	QuestionID     string `json:"questionId" validate:"required"`
	SelectedAnswer string `json:"selectedAnswer"`
}

// Result is the outcome of grading a set of answers.
type Result struct {
	Answers   []model.AnswerResult
	Correct   int
	Total     int
	Score     int
	PassScore int
	Passed    bool
}

// Option applies a configuration option to a Grader.
type Option func(*Grader)

// WithDefaultPassScore overrides the threshold used when a skill sets none.
func WithDefaultPassScore(score int) Option {
	return func(g *Grader) {
		if score > 0 && score <= maxScoreValue {
			g.defaultPassScore = score
		}
	}
}

// Grader grades answers against stored questions.
type Grader struct {
	defaultPassScore int
}

// NewGrader creates a Grader with configuration options.
func NewGrader(opts ...Option) *Grader {
	g := &Grader{defaultPassScore: DefaultPassScore}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PassScore returns the threshold for skill.
func (g *Grader) PassScore(skill model.Skill) int {
	if skill.PassScore > 0 && skill.PassScore <= maxScoreValue {
		return skill.PassScore
	}
	return g.defaultPassScore
}

// Grade compares each answer with its question's correct answer. Answers to
// unknown questions, or to questions of another skill, count as incorrect.
// Every submitted answer counts toward the total. The correct answer is
// only recorded for questions of the graded skill.
func (g *Grader) Grade(skill model.Skill, questions map[string]model.QuizQuestion, answers []Answer) Result {
	res := Result{
		Answers:   make([]model.AnswerResult, 0, len(answers)),
		Total:     len(answers),
		PassScore: g.PassScore(skill),
	}
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if ok && q.SkillID != "" && skill.SkillID != "" && q.SkillID != skill.SkillID {
			ok = false
		}
		ar := model.AnswerResult{QuestionID: a.QuestionID, SelectedAnswer: a.SelectedAnswer}
		if ok {
			ar.CorrectAnswer = q.CorrectAnswer
			ar.IsCorrect = Matches(a.SelectedAnswer, q.CorrectAnswer)
		}
		if ar.IsCorrect {
			res.Correct++
		}
		res.Answers = append(res.Answers, ar)
	}
	res.Score = Score(res.Correct, res.Total)
	res.Passed = res.Score >= res.PassScore
	return res
}

// Matches compares two answers after trimming and lower-casing. Blank
// answers never match.
func Matches(selected, correct string) bool {
	s := normalize(selected)
	c := normalize(correct)
	return s != "" && c != "" && s == c
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Score is floor(100 * correct / total), zero when total is zero.
func Score(correct, total int) int {
	if total <= 0 || correct <= 0 {
		return 0
	}
	if correct >= total {
		return maxScoreValue
	}
	return maxScoreValue * correct / total
}

// Evidence describes how a completed skill was earned.
func Evidence(score int) string {
	return fmt.Sprintf("quiz-attempt-score-%d%%", score)
}
