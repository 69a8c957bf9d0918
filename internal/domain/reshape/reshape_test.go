package reshape_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/wuimap/internal/domain/model"
	"github.com/okian/wuimap/internal/domain/reshape"
	. "github.com/smartystreets/goconvey/convey"
)

func date(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func exampleTable() model.WideTable {
	return model.WideTable{
		DateColumn: "date",
		Countries:  []string{"A", "B"},
		Rows: []model.WideRow{
			{Date: date(2020, time.January), Values: []model.Cell{model.Float(0.5), model.Float(0.9)}},
			{Date: date(2020, time.February), Values: []model.Cell{model.Float(1.5), model.Null()}},
		},
	}
}

func TestMelt(t *testing.T) {
	Convey("Given a wide table with one blank cell", t, func() {
		ds := reshape.Melt(exampleTable())

		Convey("Then every non-blank cell becomes exactly one record", func() {
			So(ds.Len(), ShouldEqual, 3)
			So(ds.Countries, ShouldResemble, []string{"A", "B"})
		})

		Convey("And records are ordered by date then column", func() {
			So(ds.Records[0].Country, ShouldEqual, "A")
			So(ds.Records[0].Month, ShouldEqual, "2020-01")
			So(ds.Records[1].Country, ShouldEqual, "B")
			So(ds.Records[1].Value, ShouldEqual, 0.9)
			So(ds.Records[2].Country, ShouldEqual, "A")
			So(ds.Records[2].Month, ShouldEqual, "2020-02")
			So(ds.Records[2].Value, ShouldEqual, 1.5)
		})

		Convey("And the blank cell is absent rather than zero", func() {
			for _, r := range ds.Records {
				So(r.Country == "B" && r.Month == "2020-02", ShouldBeFalse)
			}
		})
	})

	Convey("Given a complete table of C countries and M months", t, func() {
		countries := []string{"USA", "DEU", "JPN", "BRA"}
		table := model.WideTable{DateColumn: "date", Countries: countries}
		for m := 1; m <= 12; m++ {
			values := make([]model.Cell, len(countries))
			for i := range values {
				values[i] = model.Float(float64(m*10 + i))
			}
			table.Rows = append(table.Rows, model.WideRow{Date: date(2021, time.Month(m)), Values: values})
		}

		Convey("Then melting yields C x M records", func() {
			So(reshape.Melt(table).Len(), ShouldEqual, len(countries)*12)
		})
	})

	Convey("Given an empty table", t, func() {
		ds := reshape.Melt(model.WideTable{})

		Convey("Then no records are produced", func() {
			So(ds.Len(), ShouldEqual, 0)
		})
	})
}

func TestMonths(t *testing.T) {
	Convey("Given a dataset whose rows are not in date order", t, func() {
		table := model.WideTable{
			Countries: []string{"A"},
			Rows: []model.WideRow{
				{Date: date(2020, time.March), Values: []model.Cell{model.Float(1)}},
				{Date: date(2020, time.January), Values: []model.Cell{model.Float(2)}},
				{Date: date(2020, time.February), Values: []model.Cell{model.Float(3)}},
			},
		}
		ds := reshape.Melt(table)

		Convey("When ordering months by sort", func() {
			months := reshape.Months(ds, reshape.OrderSorted)

			Convey("Then months are ascending", func() {
				So(months, ShouldResemble, []string{"2020-01", "2020-02", "2020-03"})
			})
		})

		Convey("When ordering months by source", func() {
			months := reshape.Months(ds, reshape.OrderSource)

			Convey("Then months keep first-seen order", func() {
				So(months, ShouldResemble, []string{"2020-03", "2020-01", "2020-02"})
			})
		})
	})

	Convey("Given month order strings", t, func() {
		Convey("Then known values parse", func() {
			o, err := reshape.ParseMonthOrder("Source")
			So(err, ShouldBeNil)
			So(o, ShouldEqual, reshape.OrderSource)

			o, err = reshape.ParseMonthOrder("")
			So(err, ShouldBeNil)
			So(o, ShouldEqual, reshape.OrderSorted)
		})

		Convey("And unknown values fail", func() {
			_, err := reshape.ParseMonthOrder("random")
			So(errors.Is(err, reshape.ErrUnknownMonthOrder), ShouldBeTrue)
		})
	})
}

func TestGroupingAndSeries(t *testing.T) {
	Convey("Given the example dataset", t, func() {
		ds := reshape.Melt(exampleTable())

		Convey("Then grouping by month splits the records", func() {
			groups := reshape.GroupByMonth(ds)
			So(len(groups["2020-01"]), ShouldEqual, 2)
			So(len(groups["2020-02"]), ShouldEqual, 1)
		})

		Convey("And a country series follows dataset order", func() {
			series := reshape.Series(ds, "A")
			So(len(series), ShouldEqual, 2)
			So(series[0].Value, ShouldEqual, 0.5)
			So(series[1].Value, ShouldEqual, 1.5)
			So(reshape.Series(ds, "ZZZ"), ShouldBeEmpty)
		})
	})
}
