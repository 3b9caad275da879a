package main

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/okian/salesboard/internal/activity"
	"github.com/okian/salesboard/internal/adapters/http/api"
	"github.com/okian/salesboard/internal/adapters/kvstore"
	app "github.com/okian/salesboard/internal/app"
	"github.com/okian/salesboard/internal/config"
	"github.com/okian/salesboard/internal/domain/bizdate"
	"github.com/okian/salesboard/internal/domain/classify"
	"github.com/okian/salesboard/internal/domain/model"
	"github.com/okian/salesboard/internal/domain/score"
	"github.com/okian/salesboard/internal/scan"
	"github.com/okian/salesboard/internal/upstream/credentials"
	"github.com/okian/salesboard/internal/upstream/crm"
	"github.com/okian/salesboard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestMainWiring(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		ctx := context.Background()

		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("SALESBOARD_ADDR", ":8080")
			_ = os.Setenv("SALESBOARD_SCAN_CONCURRENCY", "2")
			defer func() {
				_ = os.Unsetenv("SALESBOARD_ADDR")
				_ = os.Unsetenv("SALESBOARD_SCAN_CONCURRENCY")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ScanConcurrency, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When wiring the full service with defaults", func() {
			cfg := config.New()
			cal := bizdate.MustNew(cfg.BusinessTimezone)
			kv := kvstore.NewMemoryStore()

			creds := credentials.NewStore(kv, credentials.Static("test-token"))
			client := crm.NewClient(crm.NewFetcher("http://localhost:0", creds))

			scanner := scan.New(client, kv, cal)
			activities := activity.NewService(activity.NewFetcher(client), classify.New(cal), kv, cal)
			engine := score.New(cal, score.WithWeights(cfg.Weights))

			svc := app.New([]model.TeamMember{}, cal, scanner, activities, engine, kv)

			convey.Convey("Then the API server registers routes on a mux", func() {
				convey.So(svc, convey.ShouldNotBeNil)
				mux := http.NewServeMux()
				api.NewServer(svc).Register(mux)

				req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
				handler, pattern := mux.Handler(req)
				convey.So(handler, convey.ShouldNotBeNil)
				convey.So(pattern, convey.ShouldEqual, "/healthz")
			})
		})

		convey.Convey("When converting member target overrides", func() {
			cfg := config.New()
			cfg.TargetOverrides = map[string]map[string]int{
				"101":      {"deals": 4},
				"not-anid": {"deals": 1},
			}

			out := memberOverrides(ctx, cfg, logger.Get())

			convey.Convey("Then numeric ids convert and junk is skipped", func() {
				convey.So(len(out), convey.ShouldEqual, 1)
				convey.So(out[101]["deals"], convey.ShouldEqual, 4)
			})
		})
	})
}
