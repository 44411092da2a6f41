//go:build !debug
// +build !debug

package optrace

import "log/slog"

func checkStep(*slog.Logger, *resolvedStep, CVec3s, []RayStatus, Real) {}
