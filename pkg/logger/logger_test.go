package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	ctx := context.Background()

	Convey("Given a logger writing text to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf)), ShouldBeNil)

		Convey("When logging at info", func() {
			Get().Info(ctx, "record stored", Int64("time_id", 42), String("event", "100 Free"))

			Convey("Then the fields and caller appear", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "record stored")
				So(out, ShouldContainSubstring, "time_id=42")
				So(out, ShouldContainSubstring, `event="100 Free"`)
				So(out, ShouldContainSubstring, "logger_test.go:")
			})
		})

		Convey("When logging at debug with the default level", func() {
			Get().Debug(ctx, "hidden")
			So(buf.String(), ShouldBeEmpty)
		})

		Convey("When the level is lowered", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			Get().Debug(ctx, "visible")
			So(buf.String(), ShouldContainSubstring, "visible")
			So(SetLevelString("info"), ShouldBeNil)
		})

		Convey("When a named logger is used", func() {
			Named("ingest").Warn(ctx, "queue full")
			So(buf.String(), ShouldContainSubstring, "logger=ingest")
		})
	})

	Convey("Given a JSON logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf), WithJSON()), ShouldBeNil)
		Get().Error(ctx, "insert failed", Error(errors.New("boom")), Float64("seconds", 22.1))

		Convey("Then each line is a JSON object", func() {
			var line map[string]any
			So(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line), ShouldBeNil)
			So(line["msg"], ShouldEqual, "insert failed")
			So(line["error"], ShouldEqual, "boom")
			So(line["seconds"], ShouldEqual, 22.1)
		})
	})

	Convey("Unknown levels are rejected", t, func() {
		err := SetLevelString("loud")
		So(errors.Is(err, ErrUnknownLevel), ShouldBeTrue)
	})
}
