package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_EnvOverrides(t *testing.T) {
	t.Run("addr and sizes", func(t *testing.T) {
		t.Setenv("PHOTOFEED_ADDR", ":9999")
		t.Setenv("PHOTOFEED_PAGE_SIZE", "6")
		t.Setenv("PHOTOFEED_QUOTA_BYTES", "1024")

		cfg := &Config{Addr: DefaultAddr, PageSize: DefaultPageSize, QuotaBytes: DefaultQuotaBytes}
		cfg.applyEnvOverrides()

		assert.Equal(t, ":9999", cfg.Addr)
		assert.Equal(t, 6, cfg.PageSize)
		assert.Equal(t, int64(1024), cfg.QuotaBytes)
	})

	t.Run("invalid numbers keep defaults", func(t *testing.T) {
		t.Setenv("PHOTOFEED_PAGE_SIZE", "banana")
		t.Setenv("PHOTOFEED_QUOTA_BYTES", "-5")

		cfg := &Config{PageSize: DefaultPageSize, QuotaBytes: DefaultQuotaBytes}
		cfg.applyEnvOverrides()

		assert.Equal(t, DefaultPageSize, cfg.PageSize)
		assert.Equal(t, int64(DefaultQuotaBytes), cfg.QuotaBytes)
	})

	t.Run("static coordinate needs both halves", func(t *testing.T) {
		t.Setenv("PHOTOFEED_LAT", "47.37")
		t.Setenv("PHOTOFEED_LNG", "")

		cfg := &Config{}
		cfg.applyEnvOverrides()
		_, _, ok := cfg.StaticCoordinate()
		assert.False(t, ok)

		t.Setenv("PHOTOFEED_LNG", "8.54")
		cfg.applyEnvOverrides()
		lat, lng, ok := cfg.StaticCoordinate()
		require.True(t, ok)
		assert.Equal(t, 47.37, lat)
		assert.Equal(t, 8.54, lng)
	})
}

func TestConfig_DerivedPathsAndDurations(t *testing.T) {
	cfg := &Config{
		DataDir:           "/tmp/photofeed-test",
		RevealDelayMS:     3000,
		LocationTimeoutMS: 5000,
		LocationMaxAgeMS:  60000,
	}

	assert.Equal(t, "/tmp/photofeed-test/gallery.json", cfg.GalleryPath())
	assert.Equal(t, "/tmp/photofeed-test/images", cfg.ImagesDir())
	assert.Equal(t, 3*time.Second, cfg.RevealDelay())
	assert.Equal(t, 5*time.Second, cfg.LocationTimeout())
	assert.Equal(t, time.Minute, cfg.LocationMaxAge())
}
