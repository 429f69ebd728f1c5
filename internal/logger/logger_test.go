package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetup_LevelAndModuleField(t *testing.T) {
	var buf bytes.Buffer
	Setup("warn", &buf)
	defer Setup("info", nil)

	For("engine").Info("hidden")
	For("engine").Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "module=engine")
	assert.Equal(t, logrus.WarnLevel, Root().GetLevel())
}

func TestSetup_UnknownLevelFallsBackToInfo(t *testing.T) {
	Setup("chatty", nil)
	defer Setup("info", nil)

	assert.Equal(t, logrus.InfoLevel, Root().GetLevel())
}
