package model_test

import (
	"testing"
	"time"

	"github.com/okian/wuimap/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMonthKeys(t *testing.T) {
	Convey("Given dates within the same month", t, func() {
		a := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
		b := time.Date(2020, 3, 31, 23, 59, 0, 0, time.UTC)

		Convey("Then they share a month key", func() {
			So(model.MonthKey(a), ShouldEqual, "2020-03")
			So(model.MonthKey(b), ShouldEqual, model.MonthKey(a))
		})

		Convey("Then the key renders as a month label", func() {
			So(model.MonthLabel(model.MonthKey(a)), ShouldEqual, "March 2020")
		})
	})

	Convey("Given a key that is not a month", t, func() {
		Convey("Then the label is the key itself", func() {
			So(model.MonthLabel("Q1-2020"), ShouldEqual, "Q1-2020")
		})
	})
}

func TestWideTableCells(t *testing.T) {
	Convey("Given a table of two rows by three countries", t, func() {
		table := model.WideTable{
			Countries: []string{"USA", "GBR", "FRA"},
			Rows: []model.WideRow{
				{Values: []model.Cell{model.Float(1), model.Null(), model.Float(0)}},
				{Values: []model.Cell{model.Null(), model.Null(), model.Float(2)}},
			},
		}

		Convey("Then it has six cells", func() {
			So(table.Cells(), ShouldEqual, 6)
		})

		Convey("Then a zero value is distinct from a null", func() {
			So(table.Rows[0].Values[2].Valid, ShouldBeTrue)
			So(table.Rows[0].Values[1].Valid, ShouldBeFalse)
		})
	})
}
