package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/seiseki/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"SEISEKI_CONFIG",
		"SEISEKI_LOG_LEVEL",
		"SEISEKI_QUEUE_THRESHOLD",
		"SEISEKI_WORKER_COUNT",
		"SEISEKI_STORE_DRIVER",
		"SEISEKI_STORE_PATH",
		"SEISEKI_KAI_BASE_URL",
		"SEISEKI_KAI_TOKEN",
		"SEISEKI_KAI_SERVICE",
		"SEISEKI_ARTEMIS_DSN",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.QueueThreshold, convey.ShouldEqual, 500)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
				convey.So(cfg.KaiService, convey.ShouldEqual, "FLO")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SEISEKI_LOG_LEVEL", "debug")
			_ = os.Setenv("SEISEKI_QUEUE_THRESHOLD", "100")
			_ = os.Setenv("SEISEKI_STORE_DRIVER", "sqlite")
			_ = os.Setenv("SEISEKI_STORE_PATH", "/tmp/scores.db")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.QueueThreshold, convey.ShouldEqual, 100)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.StorePath, convey.ShouldEqual, "/tmp/scores.db")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			clearConfigEnvVars()

			tmp, err := os.CreateTemp(t.TempDir(), "seiseki-*.yaml")
			convey.So(err, convey.ShouldBeNil)
			_, err = tmp.WriteString("queue_threshold: 250\nworker_count: 4\n")
			convey.So(err, convey.ShouldBeNil)
			convey.So(tmp.Close(), convey.ShouldBeNil)

			_ = os.Setenv("SEISEKI_CONFIG", tmp.Name())
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.QueueThreshold, convey.ShouldEqual, 250)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When env overrides the file", func() {
			clearConfigEnvVars()

			tmp, err := os.CreateTemp(t.TempDir(), "seiseki-*.yaml")
			convey.So(err, convey.ShouldBeNil)
			_, err = tmp.WriteString("queue_threshold: 250\n")
			convey.So(err, convey.ShouldBeNil)
			convey.So(tmp.Close(), convey.ShouldBeNil)

			_ = os.Setenv("SEISEKI_CONFIG", tmp.Name())
			_ = os.Setenv("SEISEKI_QUEUE_THRESHOLD", "50")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.QueueThreshold, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When validation fails", func() {
			clearConfigEnvVars()

			_ = os.Setenv("SEISEKI_STORE_DRIVER", "mongodb")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then the loader rejects the config", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
