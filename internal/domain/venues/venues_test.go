package venues_test

import (
	"errors"
	"testing"

	"github.com/okian/courtview/internal/domain/table"
	"github.com/okian/courtview/internal/domain/venues"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromTable(t *testing.T) {
	Convey("Given a venues result set", t, func() {
		cols := []table.Column{}
		for _, n := range []string{"venue_id", "venue_name", "city_name", "country_name", "country_code", "timezone", "complex_name"} {
			cols = append(cols, table.Column{Name: n, Kind: table.KindString})
		}
		tbl := table.Table{
			Columns: cols,
			Rows: [][]any{
				{"sr:venue:1", "Centre Court", "London", "United Kingdom", "GBR", "Europe/London", "All England Club"},
				{"sr:venue:2", "Court Philippe Chatrier", "Paris", "France", "FRA", nil, "Roland Garros"},
			},
		}

		Convey("When decoding it", func() {
			recs, err := venues.FromTable(tbl)

			Convey("Then every row should be kept in order", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 2)
				So(recs[0].ComplexName, ShouldEqual, "All England Club")
				So(recs[1].VenueName, ShouldEqual, "Court Philippe Chatrier")
				So(recs[1].Timezone, ShouldEqual, "")
			})
		})

		Convey("When a column is missing", func() {
			tbl.Columns = tbl.Columns[:6]
			_, err := venues.FromTable(tbl)
			So(errors.Is(err, venues.ErrMissingColumn), ShouldBeTrue)
		})
	})

	Convey("Given an empty result set", t, func() {
		recs, err := venues.FromTable(table.Empty())
		So(err, ShouldBeNil)
		So(len(recs), ShouldEqual, 0)
	})
}
