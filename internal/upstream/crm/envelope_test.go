package crm

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParsePage(t *testing.T) {
	Convey("Given the observed upstream envelope shapes", t, func() {
		Convey("When parsing an offset/total items envelope", func() {
			p, err := ParsePage([]byte(`{"items":[{"id":1},{"id":2}],"total":40}`))
			So(err, ShouldBeNil)
			So(len(p.Items), ShouldEqual, 2)
			So(p.Total, ShouldEqual, 40)
			So(p.HasTotal, ShouldBeTrue)
			So(p.IsLast, ShouldBeFalse)
		})

		Convey("When parsing an empty items envelope", func() {
			p, err := ParsePage([]byte(`{"items":[],"total":0}`))
			So(err, ShouldBeNil)
			So(p.IsLast, ShouldBeTrue)
		})

		Convey("When parsing a content/last envelope", func() {
			p, err := ParsePage([]byte(`{"content":[{"a":1}],"last":false}`))
			So(err, ShouldBeNil)
			So(len(p.Items), ShouldEqual, 1)
			So(p.IsLast, ShouldBeFalse)
			So(p.HasTotal, ShouldBeFalse)
		})

		Convey("When parsing a final content/last envelope", func() {
			p, err := ParsePage([]byte(`{"content":[{"a":1}],"last":true}`))
			So(err, ShouldBeNil)
			So(p.IsLast, ShouldBeTrue)
		})

		Convey("When parsing a bare array", func() {
			p, err := ParsePage([]byte(`[{"a":1},{"a":2},{"a":3}]`))
			So(err, ShouldBeNil)
			So(len(p.Items), ShouldEqual, 3)
			So(p.IsLast, ShouldBeTrue)
		})

		Convey("When parsing garbage", func() {
			_, err := ParsePage([]byte(`not json`))
			So(err, ShouldNotBeNil)
		})
	})
}
