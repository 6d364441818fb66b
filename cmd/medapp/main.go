package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"medapp-cli/internal/cli"
)

func isPatientID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func withHistory(argv []string, at int) []string {
	out := make([]string, 0, len(argv)+1)
	out = append(out, argv[:at]...)
	out = append(out, "history")
	return append(out, argv[at:]...)
}

// rewritePatientShortcutArgs turns `medapp <patient-id>` into `medapp history <patient-id>`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before
// parsing. Persistent flags may come first, so this looks for the first positional
// token rather than argv[1].
func rewritePatientShortcutArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without consuming a value so the id is never eaten.
	valueFlags := map[string]bool{
		"--config":          true,
		"--base-url":        true,
		"--cookie":          true,
		"--csrf-cookie":     true,
		"--request-timeout": true,
		"--rate-limit":      true,
		"--reload-after":    true,
		"--toast-ttl":       true,
		"--search-debounce": true,
		"--log-file":        true,
		"--log-level":       true,
		"--metrics-addr":    true,
		"--format":          true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isPatientID(argv[i+1]) {
				return withHistory(argv, i)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}

		if isPatientID(a) {
			return withHistory(argv, i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewritePatientShortcutArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
