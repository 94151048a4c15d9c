package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/hangout/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigDefaults(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("Then recommendation defaults should match the product behaviour", func() {
			convey.So(cfg.RecommendTopK, convey.ShouldEqual, 3)
			convey.So(cfg.FriendCandidateLimit, convey.ShouldEqual, 20)
			convey.So(cfg.ClassifierModel, convey.ShouldEqual, "gpt-4o-mini")
			convey.So(cfg.ClassifierTimeout(), convey.ShouldEqual, 15*time.Second)
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
		})

		convey.Convey("Then the classifier should be disabled without a key", func() {
			convey.So(cfg.ClassifierEnabled(), convey.ShouldBeFalse)
			cfg.ClassifierAPIKey = "sk-test"
			convey.So(cfg.ClassifierEnabled(), convey.ShouldBeTrue)
		})

		convey.Convey("Then it should validate", func() {
			convey.So(cfg.Validate(context.Background()), convey.ShouldBeNil)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given invalid configs", t, func() {
		ctx := context.Background()
		cases := map[string]func(*config.Config){
			"empty addr":           func(c *config.Config) { c.Addr = "" },
			"zero top k":           func(c *config.Config) { c.RecommendTopK = 0 },
			"negative friends":     func(c *config.Config) { c.FriendCandidateLimit = -1 },
			"zero events limit":    func(c *config.Config) { c.MaxEventsLimit = 0 },
			"zero timeout":         func(c *config.Config) { c.ClassifierTimeoutMS = 0 },
			"zero search rate cap": func(c *config.Config) { c.SearchRateLimit = 0 },
			"unknown log format":   func(c *config.Config) { c.LogFormat = "xml" },
		}
		for name, mutate := range cases {
			convey.Convey("When "+name, func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given a classifier API key", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.ClassifierAPIKey = "sk-test"

		convey.Convey("When the base URL has no host", func() {
			cfg.ClassifierBaseURL = "not a url"
			err := cfg.Validate(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, config.ErrInvalidClassifier), convey.ShouldBeTrue)
		})

		convey.Convey("When the model is empty", func() {
			cfg.ClassifierModel = ""
			convey.So(errors.Is(cfg.Validate(ctx), config.ErrInvalidClassifier), convey.ShouldBeTrue)
		})

		convey.Convey("When the defaults are kept", func() {
			convey.So(cfg.Validate(ctx), convey.ShouldBeNil)
		})
	})
}
