package kvstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/salesboard/internal/adapters/kvstore"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	Convey("Given an in-memory store with a fake clock", t, func() {
		now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
		store := kvstore.NewMemoryStore(kvstore.WithClock(func() time.Time { return now }))
		ctx := context.Background()

		Convey("When setting and getting a key", func() {
			So(store.Set(ctx, "k", []byte("v"), 0), ShouldBeNil)
			val, ok, err := store.Get(ctx, "k")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(string(val), ShouldEqual, "v")
		})

		Convey("When getting a missing key", func() {
			_, ok, err := store.Get(ctx, "missing")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When a key has a TTL", func() {
			So(store.Set(ctx, "k", []byte("v"), time.Minute), ShouldBeNil)

			Convey("Then it is readable before expiry", func() {
				now = now.Add(59 * time.Second)
				_, ok, _ := store.Get(ctx, "k")
				So(ok, ShouldBeTrue)
			})

			Convey("Then it is gone at expiry", func() {
				now = now.Add(time.Minute)
				_, ok, _ := store.Get(ctx, "k")
				So(ok, ShouldBeFalse)
				So(store.Len(), ShouldEqual, 0)
			})
		})

		Convey("When deleting a key", func() {
			So(store.Set(ctx, "k", []byte("v"), 0), ShouldBeNil)
			So(store.Del(ctx, "k"), ShouldBeNil)
			_, ok, _ := store.Get(ctx, "k")
			So(ok, ShouldBeFalse)

			Convey("Then deleting a missing key is not an error", func() {
				So(store.Del(ctx, "k"), ShouldBeNil)
			})
		})

		Convey("When the caller mutates a returned value", func() {
			So(store.Set(ctx, "k", []byte("abc"), 0), ShouldBeNil)
			val, _, _ := store.Get(ctx, "k")
			val[0] = 'z'
			again, _, _ := store.Get(ctx, "k")
			So(string(again), ShouldEqual, "abc")
		})
	})
}
