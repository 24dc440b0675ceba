package config_test

import (
	"testing"
	"time"

	"github.com/okian/dorsum/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":3000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			convey.So(cfg.TailscaleBin, convey.ShouldEqual, "tailscale")
			convey.So(cfg.StatusTimeoutMS, convey.ShouldEqual, 5000)
			convey.So(cfg.StatusTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.CertificatesDir, convey.ShouldEqual, "/etc/dorsum/certificates")
			convey.So(cfg.Certificates, convey.ShouldResemble, []string{"dorsum-root.crt", "letsdane.crt"})
			convey.So(cfg.ProfileOrganization, convey.ShouldEqual, "dorsum")
			convey.So(cfg.ProfileIdentifierPrefix, convey.ShouldEqual, "sh.dorsum")
		})

		convey.Convey("And the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
