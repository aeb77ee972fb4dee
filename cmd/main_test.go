package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/contribgrid/internal/adapters/http/api"
	"github.com/okian/contribgrid/internal/adapters/http/swagger"
	app "github.com/okian/contribgrid/internal/app"
	"github.com/okian/contribgrid/internal/config"
	"github.com/okian/contribgrid/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		_ = os.Setenv(k, v)
	}
	t.Cleanup(func() {
		for k := range kv {
			_ = os.Unsetenv(k)
		}
	})
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			setEnv(t, map[string]string{
				"CONTRIBGRID_ADDR":             ":8080",
				"CONTRIBGRID_INPUT_QUEUE_SIZE": "1000",
				"CONTRIBGRID_FRAME_RATE":       "30",
			})

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.InputQueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.FrameRate, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When testing service creation from config", func() {
			opts, err := app.OptionsFromConfig(config.New())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the service and HTTP server should be creatable", func() {
				svc := app.New(opts...)
				convey.So(svc, convey.ShouldNotBeNil)
				convey.So(api.NewServer(svc, svc), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the metrics updaters run until their context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			svc := app.New()

			convey.Convey("Then they return without panicking", func() {
				convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
				convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When updating metrics once", func() {
			svc := app.New()

			convey.Convey("Then it should not panic", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a fully wired mux over a running service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.SyntheticSeed = 7
		cfg.FrameRate = 200
		opts, err := app.OptionsFromConfig(cfg)
		convey.So(err, convey.ShouldBeNil)

		svc := app.New(opts...)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		swagger.Register(ctx, mux)
		api.NewServer(svc, svc).Register(mux)

		_, err = svc.Handoff().Wait(ctx)
		convey.So(err, convey.ShouldBeNil)

		get := func(path string) int {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w.Code
		}

		convey.Convey("Then every route family answers", func() {
			convey.So(get("/healthz"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/model?cells=false"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml"), convey.ShouldEqual, http.StatusOK)

			deadline := time.Now().Add(3 * time.Second)
			for get("/cells/1") != http.StatusOK && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			convey.So(get("/cells/1"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/cells/999"), convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given invalid configuration", t, func() {
		setEnv(t, map[string]string{"CONTRIBGRID_SOURCE": "svn"})

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}
