// Package pkg provides shared utilities for the softi2c bus stack.
//
// This package contains common functionality used by the bus core, the
// controller HALs and the tools, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error values for bus-level failures
//   - Classification of controller driver errno values
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with bus-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentBus, "channel opened", "path", "/dev/i2c-1")
//
// # Errors
//
// Bus errors are defined as sentinel values. Driver errors are never
// rewritten; [FaultOf] only labels them:
//
//	if errors.Is(err, pkg.ErrNotFound) {
//	    // No such adapter
//	}
//	pkg.LogWarn(pkg.ComponentTransfer, "transfer failed", "fault", pkg.FaultOf(err))
package pkg
