// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newSlogCapture(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	buf := captureLogs(t)
	return slog.New(NewSlogHandler(Logger())), buf
}

func TestSlogHandler_Levels(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "debug"},
		{slog.LevelInfo, "info"},
		{slog.LevelWarn, "warn"},
		{slog.LevelError, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			logger, buf := newSlogCapture(t)
			logger.Log(context.Background(), tt.level, "msg")
			m := decodeLine(t, buf)
			if m["level"] != tt.want {
				t.Errorf("level = %v, want %s", m["level"], tt.want)
			}
		})
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	_ = captureLogs(t)
	h := NewSlogHandler(Logger())
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestSlogHandler_Attrs(t *testing.T) {
	logger, buf := newSlogCapture(t)
	logger.With("service", "sync").Info("restarting",
		"attempt", 3,
		"ok", true,
		"backoff", 2*time.Second,
		"err", errors.New("boom"),
	)

	m := decodeLine(t, buf)
	if m["service"] != "sync" {
		t.Errorf("service = %v", m["service"])
	}
	if m["attempt"] != float64(3) {
		t.Errorf("attempt = %v", m["attempt"])
	}
	if m["ok"] != true {
		t.Errorf("ok = %v", m["ok"])
	}
	if m["err"] != "boom" {
		t.Errorf("err = %v", m["err"])
	}
	if m["message"] != "restarting" {
		t.Errorf("message = %v", m["message"])
	}
}

func TestSlogHandler_Groups(t *testing.T) {
	logger, buf := newSlogCapture(t)
	logger.WithGroup("tree").WithGroup("child").Info("x", "name", "api")

	m := decodeLine(t, buf)
	if m["tree.child.name"] != "api" {
		t.Errorf("grouped key missing: %v", m)
	}
}

func TestSlogHandler_GroupAttr(t *testing.T) {
	logger, buf := newSlogCapture(t)
	logger.Info("x", slog.Group("req", slog.String("method", "POST")))

	m := decodeLine(t, buf)
	if m["req.method"] != "POST" {
		t.Errorf("group attr missing: %v", m)
	}
}

func TestNewSlogLogger(t *testing.T) {
	buf := captureLogs(t)
	NewSlogLogger().Warn("service failed")

	m := decodeLine(t, buf)
	if m["component"] != "supervisor" {
		t.Errorf("component = %v", m["component"])
	}
}
