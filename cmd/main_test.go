package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	app "github.com/okian/lanes/internal/app"
	"github.com/okian/lanes/internal/config"
	"github.com/okian/lanes/internal/domain/types"
	"github.com/okian/lanes/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	convey.Convey("Given an invalid queue size in the environment", t, func() {
		_ = os.Setenv("LANES_QUEUE_SIZE", "0")
		defer func() { _ = os.Unsetenv("LANES_QUEUE_SIZE") }()

		convey.Convey("Then run fails before serving", func() {
			err := run(context.Background())
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestApplyLogLevel(t *testing.T) {
	convey.Convey("Given configured log levels", t, func() {
		convey.Convey("Then valid and unknown levels are both applied without panicking", func() {
			convey.So(func() { applyLogLevel(context.Background(), logger.Get(), "debug") }, convey.ShouldNotPanic)
			convey.So(func() { applyLogLevel(context.Background(), logger.Get(), "loud") }, convey.ShouldNotPanic)
		})
	})
}

func TestServiceEndToEnd(t *testing.T) {
	convey.Convey("Given the full HTTP stack over a started service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		svc := app.New(app.WithWorkerCount(2), app.WithQueueSize(100))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		srv := httptest.NewServer(newMux(ctx, svc))
		defer srv.Close()

		strokes := []string{"Back", "Breast", "Fly", "Free"}
		for athlete := 1; athlete <= 4; athlete++ {
			for i, stroke := range strokes {
				body := fmt.Sprintf(`{"id":%d,"athlete_id":%d,"athlete_name":"A%d","team_id":1,"team_name":"Stanford","season":2024,"event":"100 %s","seconds":%d}`,
					athlete*10+i, athlete, athlete, stroke, 50+athlete+i)
				resp, err := http.Post(srv.URL+"/times", "application/json", strings.NewReader(body))
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusAccepted)
			}
		}

		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if n, _ := svc.GetStats()["records"].(int); n == 16 {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}

		convey.Convey("When the medley relay is requested", func() {
			resp, err := http.Get(srv.URL + "/rankings?event=relay_medley&teams=1:2024&scoring=scored")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then one squad of four strokes is returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(resp.Header.Get("X-Request-ID"), convey.ShouldNotBeEmpty)
				var res types.Rankings
				convey.So(json.NewDecoder(resp.Body).Decode(&res), convey.ShouldBeNil)
				convey.So(res.Title, convey.ShouldEqual, "Medley Relay")
				convey.So(len(res.Rows), convey.ShouldEqual, 4)
				convey.So(res.Rows[0].Stroke, convey.ShouldEqual, "Back")
				convey.So(res.Rows[3].Stroke, convey.ShouldEqual, "Free")
			})
		})

		convey.Convey("When the docs and metrics are requested", func() {
			docs, err := http.Get(srv.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			_ = docs.Body.Close()
			health, err := http.Get(srv.URL + "/healthz")
			convey.So(err, convey.ShouldBeNil)
			text, _ := io.ReadAll(health.Body)
			_ = health.Body.Close()

			convey.Convey("Then both are served", func() {
				convey.So(docs.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(health.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(string(text), convey.ShouldContainSubstring, "lanes_")
			})
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given a short-lived context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then the updater returns when it ends", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
