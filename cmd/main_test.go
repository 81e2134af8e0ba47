package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/troxeldj/greek-god-arena/internal/config"
	"github.com/troxeldj/greek-god-arena/pkg/logger"
	"github.com/troxeldj/greek-god-arena/pkg/metrics"
)

func init() {
	_ = logger.Init()
}

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			t.Setenv("ARENA_ADDR", ":8081")
			t.Setenv("ARENA_QUEUE_SIZE", "64")
			t.Setenv("ARENA_WORKER_COUNT", "3")
			t.Setenv("ARENA_WINNING_SCORE", "5")

			convey.Convey("Then the overrides are applied", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.WinningScore, convey.ShouldEqual, 5)
			})

			convey.Convey("And the service is built from them", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)

				svc, err := buildService(context.Background(), cfg, logger.Get())
				convey.So(err, convey.ShouldBeNil)

				stats := svc.GetStats()
				convey.So(stats["winningScore"], convey.ShouldEqual, 5)
				convey.So(stats["workerCount"], convey.ShouldEqual, 3)
				convey.So(stats["queueSize"], convey.ShouldEqual, 64)
				convey.So(stats["rosterSize"], convey.ShouldBeGreaterThan, 1)
			})
		})

		convey.Convey("When the roster path does not exist", func() {
			cfg := config.New()
			cfg.RosterPath = filepath.Join(t.TempDir(), "missing.yaml")

			convey.Convey("Then building the service fails", func() {
				svc, err := buildService(context.Background(), cfg, logger.Get())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(svc, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the roster file is custom", func() {
			path := filepath.Join(t.TempDir(), "roster.yaml")
			err := os.WriteFile(path, []byte(`
contestants:
  - {id: kronos, name: Kronos, attributes: {strength: 9, wisdom: 4}}
  - {id: rhea, name: Rhea, attributes: {strength: 6, wisdom: 8}}
`), 0o600)
			convey.So(err, convey.ShouldBeNil)

			cfg := config.New()
			cfg.RosterPath = path

			convey.Convey("Then the service serves that roster", func() {
				svc, err := buildService(context.Background(), cfg, logger.Get())
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.Roster(context.Background()), convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			t.Setenv("ARENA_WINNING_SCORE", "0")

			convey.Convey("Then loading fails", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestMainRoutes(t *testing.T) {
	convey.Convey("Given the application mux", t, func() {
		ctx := context.Background()
		cfg := config.New()
		svc, err := buildService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		srv := httptest.NewServer(newMux(ctx, svc, cfg))
		defer srv.Close()

		get := func(path string) *http.Response {
			resp, err := http.Get(srv.URL + path)
			convey.So(err, convey.ShouldBeNil)
			return resp
		}

		convey.Convey("Then the game page is served at the root", func() {
			resp := get("/")
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(resp.Header.Get("Content-Type"), convey.ShouldContainSubstring, "text/html")
		})

		convey.Convey("Then the API docs are served", func() {
			resp := get("/openapi.yaml")
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the roster is served as JSON", func() {
			resp := get("/roster")
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			var body []map[string]any
			convey.So(json.NewDecoder(resp.Body).Decode(&body), convey.ShouldBeNil)
			convey.So(len(body), convey.ShouldBeGreaterThan, 1)
		})

		convey.Convey("Then a session can be opened", func() {
			resp, err := http.Post(srv.URL+"/sessions", "application/json", strings.NewReader("{}"))
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)
			convey.So(resp.Header.Get("Location"), convey.ShouldStartWith, "/sessions/")
		})

		convey.Convey("Then metrics are exposed", func() {
			resp := get("/healthz")
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestMainMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		ctx := context.Background()
		svc, err := buildService(ctx, config.New(), logger.Get())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then a single update does not panic", func() {
			convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			convey.So(metrics.GetRegistry(), convey.ShouldNotBeNil)
		})

		convey.Convey("Then the updater loops stop with their context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{}, 2)
			go func() { startSystemMetricsUpdater(ctx); done <- struct{}{} }()
			go func() { startServiceMetricsUpdater(ctx, svc); done <- struct{}{} }()
			cancel()

			for range 2 {
				select {
				case <-done:
				case <-time.After(time.Second):
					t.Fatal("metrics updater did not stop")
				}
			}
		})
	})
}
