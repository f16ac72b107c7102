// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLvlFromStringKnownLevels(t *testing.T) {
	lvl, err := LvlFromString("info")
	require.NoError(t, err)
	require.Equal(t, LevelInfo, lvl)

	lvl, err = LvlFromString("warn")
	require.NoError(t, err)
	require.Equal(t, LevelWarn, lvl)

	lvl, err = LvlFromString("error")
	require.NoError(t, err)
	require.Equal(t, LevelError, lvl)
}

func TestLvlFromStringUnknown(t *testing.T) {
	_, err := LvlFromString("not-a-level")
	require.Error(t, err)
}

func TestLvlFilterHandlerDropsBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	filtered := LvlFilterHandler(LevelWarn, base)
	l := slog.New(filtered)

	l.Debug("should be dropped")
	require.Empty(t, buf.String())

	l.Warn("should appear")
	require.True(t, strings.Contains(buf.String(), "should appear"))
}

func TestNewTerminalHandlerRendersLevelNames(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewTerminalHandler(&buf))
	l.Log(context.Background(), LevelCrit, "panic condition")

	require.Contains(t, buf.String(), "CRIT")
}

func TestDiscardHandlerDropsEverything(t *testing.T) {
	l := slog.New(DiscardHandler())
	l.Error("nobody sees this")
}
