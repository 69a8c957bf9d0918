package chart

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/okian/wuimap/internal/domain/frames"
	"github.com/okian/wuimap/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCountry(t *testing.T) {
	Convey("Given a dataset with one country series", t, func() {
		ds := model.Dataset{Countries: []string{"USA"}}
		for m := 1; m <= 6; m++ {
			d := time.Date(2020, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
			ds.Records = append(ds.Records, model.Record{
				Date: d, Month: model.MonthKey(d), Country: "USA", Value: 0.3 * float64(m),
			})
		}
		scale := frames.ColorScale{Min: 0.3, Max: 1.3}

		Convey("When the chart is drawn", func() {
			var buf bytes.Buffer
			n, err := Country(&buf, ds, "usa", scale)

			Convey("Then a PNG image is written", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, int64(buf.Len()))
				img, err := png.Decode(&buf)
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the country is unknown", func() {
			var buf bytes.Buffer
			_, err := Country(&buf, ds, "GBR", scale)

			Convey("Then ErrUnknownCountry is returned", func() {
				So(errors.Is(err, ErrUnknownCountry), ShouldBeTrue)
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}
