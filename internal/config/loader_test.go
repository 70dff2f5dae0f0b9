package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/resumeinsight/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, "http://127.0.0.1:8000")
				convey.So(cfg.AnimationDurationMS, convey.ShouldEqual, 800)
				convey.So(cfg.ExpandDurationMS, convey.ShouldEqual, 350)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RESUMEINSIGHT_BASE_URL", "https://insights.example.com")
			_ = os.Setenv("RESUMEINSIGHT_QUEUE_SIZE", "64")
			_ = os.Setenv("RESUMEINSIGHT_DISCARD_STALE_HISTORY", "true")
			_ = os.Setenv("RESUMEINSIGHT_REFETCH_ONLY_WHEN_VISIBLE", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, "https://insights.example.com")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.DiscardStaleHistory, convey.ShouldBeTrue)
				convey.So(cfg.RefetchOnlyWhenVisible, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
base_url: "http://10.0.0.5:8000"
animation_duration_ms: 500
max_upload_bytes: 2048
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("RESUMEINSIGHT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge the file with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, "http://10.0.0.5:8000")
				convey.So(cfg.AnimationDurationMS, convey.ShouldEqual, 500)
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, 2048)
				convey.So(cfg.FrameIntervalMS, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
base_url: "http://10.0.0.5:8000"
queue_size: 32
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("RESUMEINSIGHT_CONFIG", tmpFile)
			_ = os.Setenv("RESUMEINSIGHT_QUEUE_SIZE", "128")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, "http://10.0.0.5:8000")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 128)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("RESUMEINSIGHT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("RESUMEINSIGHT_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an empty base url", func() {
			_ = os.Setenv("RESUMEINSIGHT_BASE_URL", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"RESUMEINSIGHT_CONFIG",
		"RESUMEINSIGHT_BASE_URL",
		"RESUMEINSIGHT_QUEUE_SIZE",
		"RESUMEINSIGHT_DISCARD_STALE_HISTORY",
		"RESUMEINSIGHT_REFETCH_ONLY_WHEN_VISIBLE",
	} {
		_ = os.Unsetenv(key)
	}
}
