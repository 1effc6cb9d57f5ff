package service_test

import (
	"testing"

	"github.com/achievehub/achievehub/internal/adapters/repository"
	"github.com/achievehub/achievehub/internal/domain/errs"
	"github.com/achievehub/achievehub/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func seedCatalog(f *fixture) {
	f.put(repository.Skills, model.Skill{SkillID: "S1", Name: "Teamwork", Category: "soft skill", IsRequired: true, YearLevel: 2, RequiredActivities: 2})
	f.put(repository.Skills, model.Skill{SkillID: "S2", Name: "SQL", Category: "hard skill", IsRequired: true, YearLevel: 2})
	f.put(repository.Skills, model.Skill{SkillID: "S3", Name: "Statistics", Category: "hard skill", IsRequired: true, YearLevel: 2})
	f.put(repository.Skills, model.Skill{SkillID: "S4", Name: "Photography", Category: "soft skill", YearLevel: 2})
	f.put(repository.Skills, model.Skill{SkillID: "S5", Name: "Thesis", Category: "hard skill", IsRequired: true, YearLevel: 4})

	f.put(repository.Students, model.Student{StudentID: "6601001", Name: "Somchai", YearLevel: 2, AdvisorID: "T1"})
	f.put(repository.Students, model.Student{StudentID: "6401002", Name: "Suda", AdvisorID: "T1"})
	f.put(repository.Students, model.Student{StudentID: "6601003", Name: "Other", YearLevel: 1, AdvisorID: "T2"})

	for _, id := range []string{"S1", "S3", "S4"} {
		f.put(repository.CompletedSkills, model.CompletedSkill{StudentID: "6601001", SkillID: id, FinalScore: 80})
	}
}

func TestSummarize(t *testing.T) {
	Convey("Given three required year-2 skills and a student who completed two plus one optional", t, func() {
		f := newFixture()
		f.at("2025-06-01T00:00:00Z")
		seedCatalog(f)

		Convey("The summary counts 2 required, 1 optional and 1 pending", func() {
			sum, err := f.svc.Summarize(f.ctx, "6601001")
			So(err, ShouldBeNil)
			So(sum.YearLevel, ShouldEqual, 2)
			So(sum.TotalRequiredSkills, ShouldEqual, 3)
			So(sum.CompletedRequiredSkills, ShouldEqual, 2)
			So(sum.CompletedOptionalSkills, ShouldEqual, 1)
			So(sum.PendingSkills, ShouldHaveLength, 1)
			So(sum.PendingSkills[0].ID, ShouldEqual, "S2")
			So(sum.PendingSkills[0].Name, ShouldEqual, "SQL")
			So(sum.PendingSkills[0].RequiredActivities, ShouldEqual, 3)
		})

		Convey("A student without a declared year falls back to the id prefix", func() {
			sum, err := f.svc.Summarize(f.ctx, "6401002")
			So(err, ShouldBeNil)
			So(sum.YearLevel, ShouldEqual, 4)
			So(sum.TotalRequiredSkills, ShouldEqual, 1)
			So(sum.PendingSkills[0].ID, ShouldEqual, "S5")
		})

		Convey("An unknown student still gets a summary", func() {
			sum, err := f.svc.Summarize(f.ctx, "6801999")
			So(err, ShouldBeNil)
			So(sum.YearLevel, ShouldEqual, 1)
			So(sum.CompletedRequiredSkills, ShouldEqual, 0)
		})
	})
}

func TestSkillQueries(t *testing.T) {
	Convey("Given a skill catalog", t, func() {
		f := newFixture()
		f.at("2025-06-01T00:00:00Z")
		seedCatalog(f)

		Convey("Required skills are listed per year level", func() {
			skills, err := f.svc.RequiredSkills(f.ctx, 2)
			So(err, ShouldBeNil)
			So(skills, ShouldHaveLength, 3)
			So(skills[0].SkillID, ShouldEqual, "S1")

			_, err = f.svc.RequiredSkills(f.ctx, 5)
			So(hasCode(err, errs.Validation, errs.CodeInvalidInput), ShouldBeTrue)
		})

		Convey("All skills are ordered by id", func() {
			skills, err := f.svc.AllSkills(f.ctx)
			So(err, ShouldBeNil)
			So(skills, ShouldHaveLength, 5)
			So(skills[4].SkillID, ShouldEqual, "S5")
		})

		Convey("Student skills carry catalog names", func() {
			skills, err := f.svc.StudentSkills(f.ctx, "6601001")
			So(err, ShouldBeNil)
			So(skills, ShouldHaveLength, 3)
			names := map[string]string{}
			for _, s := range skills {
				names[s.SkillID] = s.SkillName
			}
			So(names["S3"], ShouldEqual, "Statistics")
		})

		Convey("Student info reports the required count of their year", func() {
			info, err := f.svc.StudentInfo(f.ctx, "6601001")
			So(err, ShouldBeNil)
			So(info.Name, ShouldEqual, "Somchai")
			So(info.RequiredSkills, ShouldEqual, 3)

			_, err = f.svc.StudentInfo(f.ctx, "0000000")
			So(hasCode(err, errs.NotFound, errs.CodeStudentNotFound), ShouldBeTrue)
		})

		Convey("Advisors see their own students", func() {
			list, err := f.svc.AdvisorStudents(f.ctx, "T1")
			So(err, ShouldBeNil)
			So(list, ShouldHaveLength, 2)
			So(list[0].StudentID, ShouldEqual, "6401002")
			So(list[0].YearLevel, ShouldEqual, 4)
			So(list[0].RequiredSkills, ShouldEqual, 1)
			So(list[1].CompletedSkills, ShouldEqual, 3)
			So(list[1].RequiredSkills, ShouldEqual, 3)
		})
	})
}
