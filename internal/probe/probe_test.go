package probe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/contribgrid/internal/adapters/http/api"
	"github.com/okian/contribgrid/internal/adapters/source/synthetic"
	service "github.com/okian/contribgrid/internal/app"
	"github.com/okian/contribgrid/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig(url string) *Config {
	return &Config{
		BaseURL:        url,
		NumGrabs:       60,
		Workers:        4,
		Timeout:        2 * time.Second,
		ReadyTimeout:   5 * time.Second,
		VerifyTimeout:  5 * time.Second,
		DuplicateRatio: 0.2,
		Seed:           3,
	}
}

func TestRunAgainstService(t *testing.T) {
	Convey("Given a running grid service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		svc := service.New(
			service.WithSource(synthetic.New(synthetic.WithSeed(5), synthetic.WithWeeks(4))),
			service.WithFrameRate(200),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When the probe runs", func() {
			cfg := testConfig(srv.URL)
			cfg.OutputFile = filepath.Join(t.TempDir(), "out", "grabs.json")
			stats, err := Run(ctx, cfg)

			Convey("Then every accepted grab is applied", func() {
				So(err, ShouldBeNil)
				So(stats.CellCount, ShouldEqual, 28)
				So(stats.GrabsGenerated, ShouldEqual, 60)
				So(stats.GrabsSubmitted, ShouldEqual, 60)
				So(stats.GrabsAccepted+stats.GrabsDuplicate+stats.GrabsBackpressure+stats.GrabsFailed, ShouldEqual, 60)
				So(stats.GrabsFailed, ShouldEqual, 0)
				So(stats.GrabsAccepted, ShouldBeGreaterThan, 0)
				So(stats.DaysVerified, ShouldBeGreaterThan, 0)
			})

			Convey("Then the generated grabs are saved", func() {
				raw, err := os.ReadFile(cfg.OutputFile)
				So(err, ShouldBeNil)
				var grabs []Grab
				So(json.Unmarshal(raw, &grabs), ShouldBeNil)
				So(grabs, ShouldHaveLength, 60)
				for _, g := range grabs {
					So(g.DayIndex, ShouldBeBetweenOrEqual, 1, 28)
					So(g.RequestID, ShouldNotBeEmpty)
				}
			})
		})
	})
}

func stubServer(model string, healthStatus int) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(healthStatus)
	})
	mux.HandleFunc("GET /model", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(model))
	})
	return httptest.NewServer(mux)
}

func TestRunFailures(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service whose model failed", t, func() {
		srv := stubServer(`{"state":"failed","error":"rate limited","cell_count":0}`, http.StatusOK)
		defer srv.Close()

		_, err := Run(ctx, testConfig(srv.URL))

		Convey("Then the probe reports the failure", func() {
			So(errors.Is(err, ErrModelFailed), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "rate limited")
		})
	})

	Convey("Given a service that never finishes loading", t, func() {
		srv := stubServer(`{"state":"loading"}`, http.StatusOK)
		defer srv.Close()
		cfg := testConfig(srv.URL)
		cfg.ReadyTimeout = 200 * time.Millisecond

		_, err := Run(ctx, cfg)

		Convey("Then the probe gives up", func() {
			So(errors.Is(err, ErrNotReady), ShouldBeTrue)
		})
	})

	Convey("Given an unhealthy service", t, func() {
		srv := stubServer(`{}`, http.StatusServiceUnavailable)
		defer srv.Close()

		_, err := Run(ctx, testConfig(srv.URL))

		Convey("Then health check fails first", func() {
			So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
		})
	})

	Convey("Given a ready but empty model", t, func() {
		srv := stubServer(`{"state":"ready","cell_count":0}`, http.StatusOK)
		defer srv.Close()

		stats, err := Run(ctx, testConfig(srv.URL))

		Convey("Then nothing is submitted", func() {
			So(err, ShouldBeNil)
			So(stats.GrabsSubmitted, ShouldEqual, 0)
		})
	})

	Convey("Given a model body that is not json", t, func() {
		srv := stubServer(`<html>`, http.StatusOK)
		defer srv.Close()

		_, err := Run(ctx, testConfig(srv.URL))

		Convey("Then the response is rejected", func() {
			So(errors.Is(err, ErrBadResponse), ShouldBeTrue)
		})
	})
}

func TestGenerateGrabs(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		cfg := &Config{NumGrabs: 200, DuplicateRatio: 0.5, Seed: 11}
		stats := &Stats{}
		grabs := generateGrabs(context.Background(), cfg, 7, stats)

		Convey("Then days stay in range and some IDs repeat", func() {
			So(grabs, ShouldHaveLength, 200)
			So(stats.GrabsGenerated, ShouldEqual, 200)
			ids := map[string]struct{}{}
			for _, g := range grabs {
				So(g.DayIndex, ShouldBeBetweenOrEqual, 1, 7)
				So(g.Orientation.W, ShouldBeGreaterThan, 0)
				ids[g.RequestID] = struct{}{}
			}
			So(len(ids), ShouldBeLessThan, 200)
		})

		Convey("Then the same seed reproduces positions", func() {
			again := generateGrabs(context.Background(), cfg, 7, &Stats{})
			for i := range grabs {
				So(again[i].DayIndex, ShouldEqual, grabs[i].DayIndex)
				So(again[i].Position, ShouldResemble, grabs[i].Position)
			}
		})
	})
}
