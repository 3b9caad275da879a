package bizdate_test

import (
	"testing"
	"time"

	"github.com/okian/salesboard/internal/domain/bizdate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalendar(t *testing.T) {
	Convey("Given a calendar fixed to Europe/Amsterdam", t, func() {
		cal, err := bizdate.New("Europe/Amsterdam")
		So(err, ShouldBeNil)

		Convey("When the host clock is in a different timezone", func() {
			// 23:30 UTC on Jan 31 is already Feb 1 in Amsterdam.
			utc := time.Date(2026, 1, 31, 23, 30, 0, 0, time.UTC)

			Convey("Then day and month boundaries follow the business zone", func() {
				So(cal.DayOfMonth(utc), ShouldEqual, 1)
				So(cal.MonthKey(utc), ShouldEqual, "2026-02")
				So(cal.DaysInMonth(utc), ShouldEqual, 28)
			})
		})

		Convey("When asking for month lengths", func() {
			So(cal.DaysInMonth(time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)), ShouldEqual, 30)
			So(cal.DaysInMonth(time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)), ShouldEqual, 31)
			So(cal.DaysInMonth(time.Date(2028, 2, 10, 12, 0, 0, 0, time.UTC)), ShouldEqual, 29)
		})

		Convey("When comparing days across zones", func() {
			a := time.Date(2026, 8, 25, 22, 30, 0, 0, time.UTC)  // Aug 26 00:30 local
			b := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)   // Aug 26 local
			myc := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) // Aug 25 local

			So(cal.SameDay(a, b), ShouldBeTrue)
			So(cal.SameDay(a, myc), ShouldBeFalse)
		})

		Convey("When asking for weekdays near a day boundary", func() {
			// Monday 23:00 UTC is Tuesday 01:00 in Amsterdam (CEST).
			mondayLateUTC := time.Date(2026, 8, 24, 23, 0, 0, 0, time.UTC)
			So(cal.Weekday(mondayLateUTC), ShouldEqual, time.Tuesday)
		})

		Convey("When computing month and day starts", func() {
			ts := time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC)
			start := cal.StartOfMonth(ts)
			So(start.Day(), ShouldEqual, 1)
			So(start.Hour(), ShouldEqual, 0)
			So(start.Location().String(), ShouldEqual, "Europe/Amsterdam")

			day := cal.StartOfDay(ts)
			So(day.Hour(), ShouldEqual, 0)
			So(cal.SameDay(day, ts), ShouldBeTrue)
		})
	})

	Convey("Given an empty timezone name", t, func() {
		cal, err := bizdate.New("")
		So(err, ShouldBeNil)
		So(cal.Location().String(), ShouldEqual, bizdate.DefaultTimezone)
	})

	Convey("Given an invalid timezone name", t, func() {
		_, err := bizdate.New("Not/AZone")
		So(err, ShouldNotBeNil)
		So(func() { bizdate.MustNew("Not/AZone") }, ShouldPanic)
	})
}
