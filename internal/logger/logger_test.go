package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger.Logger)
	suite.True(logger.Core().Enabled(zapcore.InfoLevel))
	suite.False(logger.Core().Enabled(zapcore.DebugLevel))
}

func (suite *LoggerTestSuite) TestNewLoggerWithLevel() {
	logger, err := NewLoggerWithLevel("debug")
	suite.NoError(err)
	suite.True(logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLoggerWithLevel("not-a-level")
	suite.NoError(err)
	suite.True(logger.Core().Enabled(zapcore.InfoLevel))
	suite.False(logger.Core().Enabled(zapcore.DebugLevel))
}

func (suite *LoggerTestSuite) TestLoggerSyncNilLogger() {
	logger := &Logger{Logger: nil}
	suite.NoError(logger.Sync())
}

func (suite *LoggerTestSuite) TestNopLogger() {
	logger := NewNopLogger()
	logger.Info("dropped", zap.String("symbol", "EURUSD"))
	suite.NoError(logger.Sync())
}
