package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/salesboard/internal/adapters/http/api"
	"github.com/okian/salesboard/internal/domain/model"
	"github.com/okian/salesboard/internal/upstream/credentials"
	"github.com/smartystreets/goconvey/convey"
)

type fakeDeps struct {
	board    *model.Board
	buildErr error
	clearErr error
	cleared  int
}

func (f *fakeDeps) BuildLeaderboard(_ context.Context) (*model.Board, error) {
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return f.board, nil
}

func (f *fakeDeps) ClearCache(_ context.Context) error {
	f.cleared++
	return f.clearErr
}

func newTestServer(deps *fakeDeps) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(mux)
	return httptest.NewServer(mux)
}

func TestLeaderboardEndpoint(t *testing.T) {
	convey.Convey("Given an API server", t, func() {
		board := &model.Board{
			Entries: []model.LeaderboardEntry{
				{MemberID: 1, Name: "Ada", Deals: 2, Points: 1200},
				{MemberID: 2, Name: "Ben", Deals: 1, Points: 600},
			},
			Totals:      model.TeamTotals{Deals: 3, Points: 1800},
			LastUpdated: time.Date(2025, time.June, 17, 12, 0, 0, 0, time.UTC),
		}
		deps := &fakeDeps{board: board}
		srv := newTestServer(deps)
		defer srv.Close()

		convey.Convey("When requesting GET /leaderboard", func() {
			resp, err := http.Get(srv.URL + "/leaderboard")

			convey.Convey("Then it returns the board as JSON", func() {
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = resp.Body.Close() }()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(resp.Header.Get("Content-Type"), convey.ShouldContainSubstring, "application/json")

				var got model.Board
				convey.So(json.NewDecoder(resp.Body).Decode(&got), convey.ShouldBeNil)
				convey.So(len(got.Entries), convey.ShouldEqual, 2)
				convey.So(got.Entries[0].Name, convey.ShouldEqual, "Ada")
				convey.So(got.Totals.Points, convey.ShouldEqual, 1800)
			})
		})

		convey.Convey("When using a non-GET method", func() {
			resp, err := http.Post(srv.URL+"/leaderboard", "application/json", nil)

			convey.Convey("Then it rejects with 405", func() {
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = resp.Body.Close() }()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		convey.Convey("When the upstream session is gone", func() {
			deps.buildErr = fmt.Errorf("fetch: %w", credentials.ErrNotAuthenticated)
			resp, err := http.Get(srv.URL + "/leaderboard")

			convey.Convey("Then it answers 503", func() {
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = resp.Body.Close() }()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		convey.Convey("When the build fails for another reason", func() {
			deps.buildErr = fmt.Errorf("upstream exploded")
			resp, err := http.Get(srv.URL + "/leaderboard")

			convey.Convey("Then it answers 502", func() {
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = resp.Body.Close() }()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadGateway)

				var body map[string]string
				convey.So(json.NewDecoder(resp.Body).Decode(&body), convey.ShouldBeNil)
				convey.So(body["code"], convey.ShouldEqual, "upstream_error")
			})
		})
	})
}

func TestCacheEndpoint(t *testing.T) {
	convey.Convey("Given an API server", t, func() {
		deps := &fakeDeps{board: &model.Board{}}
		srv := newTestServer(deps)
		defer srv.Close()

		convey.Convey("When requesting DELETE /cache", func() {
			req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/cache", nil)
			resp, err := http.DefaultClient.Do(req)

			convey.Convey("Then the caches are dropped", func() {
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = resp.Body.Close() }()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(deps.cleared, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When using GET instead of DELETE", func() {
			resp, err := http.Get(srv.URL + "/cache")

			convey.Convey("Then it rejects with 405", func() {
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = resp.Body.Close() }()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusMethodNotAllowed)
				convey.So(deps.cleared, convey.ShouldEqual, 0)
			})
		})
	})
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	convey.Convey("Given an API server", t, func() {
		deps := &fakeDeps{board: &model.Board{}}
		srv := newTestServer(deps)
		defer srv.Close()

		convey.Convey("When requesting GET /healthz", func() {
			resp, err := http.Get(srv.URL + "/healthz")

			convey.Convey("Then it reports ok", func() {
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = resp.Body.Close() }()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

				var body map[string]string
				convey.So(json.NewDecoder(resp.Body).Decode(&body), convey.ShouldBeNil)
				convey.So(body["status"], convey.ShouldEqual, "ok")
			})
		})

		convey.Convey("When requesting GET /metrics", func() {
			resp, err := http.Get(srv.URL + "/metrics")

			convey.Convey("Then it serves the Prometheus exposition", func() {
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = resp.Body.Close() }()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}
