package scoring_test

import (
	"testing"

	scoring "github.com/okian/lanes/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTables(t *testing.T) {
	Convey("Given the individual table", t, func() {
		tbl := scoring.Individual

		Convey("Then first place earns the most", func() {
			So(tbl.Points(1), ShouldEqual, 20)
			for p := 2; p <= tbl.Len(); p++ {
				So(tbl.Points(p), ShouldBeLessThan, tbl.Points(1))
			}
		})

		Convey("Then the table is non-increasing and ends at 1", func() {
			for p := 2; p <= tbl.Len(); p++ {
				So(tbl.Points(p), ShouldBeLessThanOrEqualTo, tbl.Points(p-1))
			}
			So(tbl.Points(16), ShouldEqual, 1)
		})

		Convey("Then out of range placements score zero", func() {
			So(tbl.Points(17), ShouldEqual, 0)
			So(tbl.Points(0), ShouldEqual, 0)
			So(tbl.Points(-3), ShouldEqual, 0)
		})
	})

	Convey("Given the relay table", t, func() {
		tbl := scoring.Relay
		So(tbl.Len(), ShouldEqual, 16)
		So(tbl.Points(1), ShouldEqual, 40)
		So(tbl.Points(9), ShouldEqual, 20)
		So(tbl.Points(16), ShouldEqual, 2)
		So(tbl.Points(17), ShouldEqual, 0)
	})
}
