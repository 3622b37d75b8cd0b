package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meridianlabs/backoffice/pkg"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.False(t, IsEmpty("x"))
}

func TestGetTraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetTraceID(c)
	assert.Error(t, err)

	c.Set(pkg.TraceId, "abc-123")
	traceID, err := GetTraceID(c)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", traceID)
}

func TestParseStructEnv(t *testing.T) {
	type cfg struct {
		Port    string `mapstructure:"TEST_UTILS_PORT"`
		DBAddr  string `mapstructure:"TEST_UTILS_DB_ADDR"`
		Retries int    `mapstructure:"TEST_UTILS_RETRIES"`
	}
	t.Setenv("TEST_UTILS_PORT", "8080")
	t.Setenv("TEST_UTILS_DB_ADDR", "postgres://localhost:5432/app")
	t.Setenv("TEST_UTILS_RETRIES", "3")
	viper.Reset()
	viper.AutomaticEnv()

	var c cfg
	require.NoError(t, ParseStructEnv(&c))
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "postgres://localhost:5432/app", c.DBAddr)
	assert.Equal(t, 3, c.Retries)
}

func TestFormatConfigErrors(t *testing.T) {
	type cfg struct {
		Port string `validate:"required"`
		Addr string `validate:"required"`
	}
	err := validator.New().Struct(cfg{})
	require.Error(t, err)

	formatted := FormatConfigErrors(zap.NewNop(), err, cfg{})
	assert.ErrorContains(t, formatted, "2 field(s)")

	plain := assert.AnError
	assert.Same(t, plain, FormatConfigErrors(zap.NewNop(), plain, cfg{}))
}
