package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ServiceCommand installs gyromouse as a system service.
type ServiceCommand struct {
	Install   ServiceInstall   `cmd:"" help:"Install and start the systemd service"`
	Uninstall ServiceUninstall `cmd:"" help:"Stop and remove the systemd service"`
}

type ServiceInstall struct {
	Args []string `arg:"" optional:"" passthrough:"" help:"Extra arguments for the serve command, e.g. --sink=viiper"`
}

func (c *ServiceInstall) Run(logger *slog.Logger) error {
	return install(logger, c.Args)
}

type ServiceUninstall struct{}

func (c *ServiceUninstall) Run(logger *slog.Logger) error {
	return uninstall(logger)
}

func systemdUnit(exePath string, args []string) string {
	execStart := fmt.Sprintf("%q serve", exePath)
	if len(args) > 0 {
		execStart += " " + strings.Join(args, " ")
	}
	return fmt.Sprintf(`[Unit]
Description=gyromouse handheld input receiver
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
ExecStart=%s
WorkingDirectory=%s
Restart=on-failure

[Install]
WantedBy=multi-user.target
`, execStart, filepath.Dir(exePath))
}

func currentExecutable() (string, error) {
	p, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return p, nil
}
