package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/okian/lanes/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
			convey.So(cfg.DefaultTopN, convey.ShouldEqual, 8)
			convey.So(cfg.MaxTopN, convey.ShouldEqual, 16)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with out of range values", t, func() {
		cases := map[string]func(c *config.Config){
			"queue_size":         func(c *config.Config) { c.QueueSize = 0 },
			"worker_count":       func(c *config.Config) { c.WorkerCount = -1 },
			"engine_parallelism": func(c *config.Config) { c.EngineParallelism = 0 },
			"max_top_n":          func(c *config.Config) { c.MaxTopN = 17 },
			"default_top_n":      func(c *config.Config) { c.DefaultTopN = 12; c.MaxTopN = 8 },
			"log_format":         func(c *config.Config) { c.LogFormat = "xml" },
		}
		for field, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, field)
		}
	})
}
