package scoring_test

import (
	"testing"

	"github.com/achievehub/achievehub/internal/domain/model"
	"github.com/achievehub/achievehub/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func questionBank() map[string]model.QuizQuestion {
	return map[string]model.QuizQuestion{
		"Q1": {QuestionID: "Q1", SkillID: "SK1", CorrectAnswer: "A"},
		"Q2": {QuestionID: "Q2", SkillID: "SK1", CorrectAnswer: "Binary search"},
		"Q3": {QuestionID: "Q3", SkillID: "SK1", CorrectAnswer: "c"},
		"QX": {QuestionID: "QX", SkillID: "SK2", CorrectAnswer: "a"},
	}
}

func TestScore(t *testing.T) {
	Convey("Given correct and total counts", t, func() {
		Convey("Score rounds down", func() {
			So(scoring.Score(2, 3), ShouldEqual, 66)
			So(scoring.Score(1, 3), ShouldEqual, 33)
			So(scoring.Score(7, 10), ShouldEqual, 70)
			So(scoring.Score(3, 3), ShouldEqual, 100)
		})

		Convey("Score equals floor(100*c/t) for every split", func() {
			for total := 1; total <= 15; total++ {
				for correct := 0; correct <= total; correct++ {
					So(scoring.Score(correct, total), ShouldEqual, (100*correct)/total)
				}
			}
		})

		Convey("An empty quiz scores zero", func() {
			So(scoring.Score(0, 0), ShouldEqual, 0)
		})
	})
}

func TestMatches(t *testing.T) {
	Convey("Given submitted and stored answers", t, func() {
		So(scoring.Matches(" a ", "A"), ShouldBeTrue)
		So(scoring.Matches("BINARY SEARCH", "binary search"), ShouldBeTrue)

		Convey("The whole answer is compared, not its first letter", func() {
			So(scoring.Matches("binary search", "b"), ShouldBeFalse)
			So(scoring.Matches("b", "binary search"), ShouldBeFalse)
		})

		Convey("Blank answers never match", func() {
			So(scoring.Matches("", ""), ShouldBeFalse)
			So(scoring.Matches("  ", "a"), ShouldBeFalse)
		})
	})
}

func TestGrade(t *testing.T) {
	Convey("Given a grader with the default threshold", t, func() {
		g := scoring.NewGrader()
		skill := model.Skill{SkillID: "SK1"}

		Convey("Three of three correct passes", func() {
			res := g.Grade(skill, questionBank(), []scoring.Answer{
				{QuestionID: "Q1", SelectedAnswer: "a"},
				{QuestionID: "Q2", SelectedAnswer: " binary SEARCH"},
				{QuestionID: "Q3", SelectedAnswer: "C"},
			})
			So(res.Correct, ShouldEqual, 3)
			So(res.Score, ShouldEqual, 100)
			So(res.Passed, ShouldBeTrue)
			So(res.PassScore, ShouldEqual, 70)
			So(res.Answers, ShouldHaveLength, 3)
		})

		Convey("Two of three scores 66 and fails", func() {
			res := g.Grade(skill, questionBank(), []scoring.Answer{
				{QuestionID: "Q1", SelectedAnswer: "a"},
				{QuestionID: "Q2", SelectedAnswer: "linear search"},
				{QuestionID: "Q3", SelectedAnswer: "c"},
			})
			So(res.Score, ShouldEqual, 66)
			So(res.Passed, ShouldBeFalse)
			So(res.Answers[1].IsCorrect, ShouldBeFalse)
			So(res.Answers[1].CorrectAnswer, ShouldEqual, "Binary search")
		})

		Convey("Unknown questions and questions of other skills count as wrong", func() {
			res := g.Grade(skill, questionBank(), []scoring.Answer{
				{QuestionID: "Q1", SelectedAnswer: "a"},
				{QuestionID: "missing", SelectedAnswer: "a"},
				{QuestionID: "QX", SelectedAnswer: "a"},
			})
			So(res.Total, ShouldEqual, 3)
			So(res.Correct, ShouldEqual, 1)
			So(res.Score, ShouldEqual, 33)
			So(res.Answers[1].CorrectAnswer, ShouldBeEmpty)
			So(res.Answers[2].IsCorrect, ShouldBeFalse)
			So(res.Answers[2].CorrectAnswer, ShouldBeEmpty)
		})

		Convey("A skill threshold overrides the default", func() {
			strict := model.Skill{SkillID: "SK1", PassScore: 90}
			res := g.Grade(strict, questionBank(), []scoring.Answer{
				{QuestionID: "Q1", SelectedAnswer: "a"},
				{QuestionID: "Q2", SelectedAnswer: "binary search"},
				{QuestionID: "Q3", SelectedAnswer: "x"},
			})
			So(res.PassScore, ShouldEqual, 90)
			So(res.Passed, ShouldBeFalse)
		})

		Convey("The default threshold is configurable", func() {
			lenient := scoring.NewGrader(scoring.WithDefaultPassScore(60))
			So(lenient.PassScore(skill), ShouldEqual, 60)
			So(scoring.NewGrader(scoring.WithDefaultPassScore(0)).PassScore(skill), ShouldEqual, 70)
		})
	})
}

func TestEvidence(t *testing.T) {
	Convey("Evidence records the score", t, func() {
		So(scoring.Evidence(85), ShouldEqual, "quiz-attempt-score-85%")
	})
}
