// Package plugins provides exec-based plugin support for qsolog.
// Plugins are separate binaries named qsolog-<command> that are discovered
// and executed when an unknown command is invoked, in the manner of git
// and kubectl.
package plugins

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "qsolog-"

// EnvPluginDir names an extra directory searched before all others.
const EnvPluginDir = "QSOLOG_PLUGIN_DIR"

// KnownPlugins maps plugin names with official implementations to a short
// description. These get a dedicated not-found message.
var KnownPlugins = map[string]string{}

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// SearchDirs returns the plugin directories in search order, without PATH.
func SearchDirs() []string {
	var dirs []string

	if dir := os.Getenv(EnvPluginDir); dir != "" {
		dirs = append(dirs, dir)
	}
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homeDir, ".qsolog", "plugins"))
	}

	return dirs
}

// FindPlugin searches for a plugin binary named qsolog-<command> in
// SearchDirs and then anywhere in PATH. It returns the full path to the
// plugin binary if found.
func FindPlugin(command string) (string, error) {
	pluginName := Prefix + command

	for _, dir := range SearchDirs() {
		candidate := filepath.Join(dir, pluginName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(pluginName); err == nil {
		return path, nil
	}

	return "", ErrPluginNotFound
}

// Execute runs a plugin with the given arguments.
// It connects stdin, stdout, and stderr to the plugin process
// and returns the plugin's exit code.
func Execute(pluginPath string, args []string) int {
	cmd := exec.Command(pluginPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing plugin: %v\n", err)
		return 1
	}

	return 0
}

// FormatNotFoundError returns a helpful error message when a plugin is not found.
func FormatNotFoundError(command string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "unknown command %q for \"qsolog\"\n", command)

	if info, ok := KnownPlugins[command]; ok {
		fmt.Fprintf(&sb, "\n%q is available as a plugin.\n", command)
		sb.WriteString(info)
		sb.WriteString("\n\nInstall the plugin binary as one of:\n")
	} else {
		sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	}

	name := Prefix + command
	fmt.Fprintf(&sb, "  - $%s/%s\n", EnvPluginDir, name)
	fmt.Fprintf(&sb, "  - %s in the same directory as qsolog\n", name)
	fmt.Fprintf(&sb, "  - ~/.qsolog/plugins/%s\n", name)
	fmt.Fprintf(&sb, "  - %s anywhere in your PATH\n", name)

	sb.WriteString("\nRun 'qsolog --help' for usage.")

	return sb.String()
}

// isExecutable reports whether path is a regular file with an execute bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
