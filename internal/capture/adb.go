package capture

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	adbProbeTimeout   = 5 * time.Second
	adbCaptureTimeout = 10 * time.Second
)

// ADB captures tablet screenshots over USB via the adb binary. The zero
// value targets whatever single device is attached; Serial pins a specific
// one.
type ADB struct {
	Serial string
}

func (a *ADB) args(extra ...string) []string {
	var args []string
	if a.Serial != "" {
		args = append(args, "-s", a.Serial)
	}
	return append(args, extra...)
}

// Available reports whether the adb binary can be run at all.
func (a *ADB) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, adbProbeTimeout)
	defer cancel()
	return exec.CommandContext(ctx, "adb", "version").Run() == nil
}

// DeviceConnected reports whether at least one device shows up in
// `adb devices` with the "device" state.
func (a *ADB) DeviceConnected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, adbProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "adb", a.args("devices")...).Output()
	if err != nil {
		return false
	}
	return hasConnectedDevice(string(out))
}

// hasConnectedDevice parses `adb devices` output, skipping the
// "List of devices attached" header.
func hasConnectedDevice(out string) bool {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return false
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "device" {
			return true
		}
	}
	return false
}

// Screencap captures the device screen as PNG bytes using
// `adb exec-out screencap -p`.
func (a *ADB) Screencap(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, adbCaptureTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "adb", a.args("exec-out", "screencap", "-p")...).Output()
	if err != nil {
		return nil, fmt.Errorf("adb screencap: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("adb screencap: empty output")
	}
	return out, nil
}
