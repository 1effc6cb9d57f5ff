package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/achievehub/achievehub/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSkillSummaryJSON(t *testing.T) {
	Convey("Given a skill summary", t, func() {
		s := types.SkillSummary{
			StudentID:               "6512345678",
			YearLevel:               2,
			TotalRequiredSkills:     3,
			CompletedRequiredSkills: 2,
			CompletedOptionalSkills: 1,
			PendingSkills:           []types.PendingSkill{{ID: "S3", Name: "Teamwork", Category: "soft skill", RequiredActivities: 3}},
		}

		Convey("When encoded", func() {
			raw, err := json.Marshal(s)
			So(err, ShouldBeNil)

			var out map[string]any
			So(json.Unmarshal(raw, &out), ShouldBeNil)

			Convey("Then it uses the camelCase field names clients expect", func() {
				So(out["totalRequiredSkills"], ShouldEqual, 3)
				So(out["completedRequiredSkills"], ShouldEqual, 2)
				So(out["completedOptionalSkills"], ShouldEqual, 1)
				pending := out["pendingSkills"].([]any)
				So(pending, ShouldHaveLength, 1)
				So(pending[0].(map[string]any)["id"], ShouldEqual, "S3")
			})
		})
	})
}
