package normalize_test

import (
	"testing"

	"github.com/okian/resumeinsight/internal/domain/model"
	"github.com/okian/resumeinsight/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizeLegacy(t *testing.T) {
	Convey("Given legacy text with a verdict line", t, func() {
		raw := "Candidate summary.\nFinal Verdict: Strong Candidate\nMore notes."
		res := normalize.Normalize(model.LegacyText{Raw: raw})

		Convey("Then the verdict should be extracted and styled positive", func() {
			So(res.Legacy, ShouldBeTrue)
			So(res.Data.Summary, ShouldEqual, raw)
			So(res.HasVerdict, ShouldBeTrue)
			So(res.Verdict, ShouldEqual, "Strong Candidate")
			So(res.Bucket, ShouldEqual, normalize.Positive)
		})
	})

	Convey("Given legacy text without a verdict line", t, func() {
		res := normalize.Normalize(model.LegacyText{Raw: "Just a summary."})

		Convey("Then the verdict should be absent and unstyled", func() {
			So(res.HasVerdict, ShouldBeFalse)
			So(res.Verdict, ShouldEqual, "")
			So(res.Bucket, ShouldEqual, normalize.Unstyled)
		})
	})

	Convey("Given a markdown-decorated verdict", t, func() {
		verdict, ok := normalize.ExtractVerdict("## Analysis\nFINAL VERDICT: **Average** _fit_ `ok` ~~x~~")

		Convey("Then decoration should be stripped", func() {
			So(ok, ShouldBeTrue)
			So(verdict, ShouldEqual, "Average fit ok x")
		})
	})

	Convey("Given a verdict marker with nothing after it but decoration", t, func() {
		_, ok := normalize.ExtractVerdict("final verdict: **")

		Convey("Then the verdict should be absent", func() {
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given several verdict lines", t, func() {
		verdict, ok := normalize.ExtractVerdict("final verdict - weak\nFinal verdict: strong")

		Convey("Then the first match should win", func() {
			So(ok, ShouldBeTrue)
			So(verdict, ShouldEqual, "- weak")
		})
	})
}

func TestNormalizeStructured(t *testing.T) {
	Convey("Given a structured payload", t, func() {
		payload := model.Structured{
			Verdict: "Weak",
			Scores:  model.Scores{model.FinalScore: 42},
		}
		res := normalize.Normalize(payload)

		Convey("Then fields should be used directly", func() {
			So(res.Legacy, ShouldBeFalse)
			So(res.Data.Scores[model.FinalScore], ShouldEqual, 42)
			So(res.Verdict, ShouldEqual, "Weak")
			So(res.Bucket, ShouldEqual, normalize.Negative)
		})
	})

	Convey("Given a structured payload without verdict", t, func() {
		res := normalize.Normalize(model.Structured{Summary: "x"})

		Convey("Then the verdict should be absent", func() {
			So(res.HasVerdict, ShouldBeFalse)
			So(res.Bucket, ShouldEqual, normalize.Unstyled)
		})
	})

	Convey("Given a nil payload", t, func() {
		res := normalize.Normalize(nil)

		Convey("Then the result should be empty", func() {
			So(res.HasVerdict, ShouldBeFalse)
			So(res.Data.Summary, ShouldEqual, "")
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given verdict strings", t, func() {
		cases := []struct {
			verdict string
			ok      bool
			want    normalize.Bucket
		}{
			{"STRONG", true, normalize.Positive},
			{"Strong but average formatting", true, normalize.Positive},
			{"average", true, normalize.Caution},
			{"weak on average", true, normalize.Caution},
			{"Weak", true, normalize.Negative},
			{"Needs review", true, normalize.Info},
			{"", false, normalize.Unstyled},
		}

		Convey("Then buckets should follow the priority order", func() {
			for _, c := range cases {
				So(normalize.Classify(c.verdict, c.ok), ShouldEqual, c.want)
			}
		})
	})

	Convey("Given bucket names", t, func() {
		So(normalize.Positive.String(), ShouldEqual, "positive")
		So(normalize.Unstyled.String(), ShouldEqual, "unstyled")
	})
}
