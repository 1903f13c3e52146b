package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerUsesJSONFormatter(t *testing.T) {
	l := NewLogger()
	if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected JSON formatter, got %T", l.Formatter)
	}
}

func TestNewLoggerHonorsLogLevelEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	if NewLogger().GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level from LOG_LEVEL")
	}
	t.Setenv("LOG_LEVEL", "")
	if NewLogger().GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info default")
	}
}

func TestNewLoggerWithService(t *testing.T) {
	l := NewLoggerWithService("star-collector")
	entry := l.WithField("endpoint", "/api/v1/favourites")
	if entry == nil {
		t.Fatalf("expected non-nil entry")
	}
}
