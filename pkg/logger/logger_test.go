package logger

import (
	"testing"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name        string
		lvl         string
		format      string
		expectedErr string
		enabled     zapcore.Level
	}{
		{name: "console info", lvl: "info", enabled: zapcore.InfoLevel},
		{name: "json debug", lvl: "debug", format: "json", enabled: zapcore.DebugLevel},
		{name: "upper case level", lvl: "ERROR", format: "console", enabled: zapcore.ErrorLevel},
		{name: "warning alias", lvl: "warning", enabled: zapcore.WarnLevel},
		{name: "unknown level", lvl: "verbose", expectedErr: "unsupported log lvl: verbose"},
		{name: "unknown format", lvl: "info", format: "xml", expectedErr: "unsupported log format: xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(&config.Config{LogLvl: tt.lvl, LogFormat: tt.format})

			if tt.expectedErr != "" {
				require.EqualError(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, zap.L().Core().Enabled(tt.enabled))
			assert.False(t, zap.L().Core().Enabled(tt.enabled-1))
		})
	}
}
