//go:build linux

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

const (
	serviceName = "gyromouse.service"
	servicePath = "/etc/systemd/system/gyromouse.service"
)

var systemctl = func(args ...string) error {
	out, err := exec.Command("systemctl", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func install(logger *slog.Logger, args []string) error {
	exePath, err := currentExecutable()
	if err != nil {
		return err
	}
	if err := os.WriteFile(servicePath, []byte(systemdUnit(exePath, args)), 0o644); err != nil {
		return err
	}
	for _, step := range [][]string{{"daemon-reload"}, {"enable", serviceName}, {"restart", serviceName}} {
		if err := systemctl(step...); err != nil {
			return err
		}
	}
	logger.Info("Installed systemd service", "path", servicePath, "exe", exePath)
	return nil
}

func uninstall(logger *slog.Logger) error {
	errs := []error{
		systemctl("stop", serviceName),
		systemctl("disable", serviceName),
	}
	if err := os.Remove(servicePath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	errs = append(errs, systemctl("daemon-reload"))
	if err := errors.Join(errs...); err != nil {
		return err
	}
	logger.Info("Removed systemd service", "path", servicePath)
	return nil
}
