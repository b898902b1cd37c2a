package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"syscall"

	"github.com/tink-crypto/tink-go/v2/tink"
	"golang.org/x/term"

	"github.com/MrEthical07/prpass/executor/redisqueue"
)

// FieldEnvPrefix prefixes the environment variables that supply field values.
const FieldEnvPrefix = "PRPASS_FIELD_"

// fieldEnvName maps a field name to its environment variable: "full name" becomes
// PRPASS_FIELD_FULL_NAME.
func fieldEnvName(field string) string {
	return FieldEnvPrefix + strings.ToUpper(strings.ReplaceAll(field, " ", "_"))
}

// checkFieldEnvNames rejects schemas in which two fields map to the same variable, such
// as "a b" and "A_B".
func checkFieldEnvNames(fields []string) error {
	owner := make(map[string]string, len(fields))
	for _, field := range fields {
		name := fieldEnvName(field)
		if prev, dup := owner[name]; dup {
			return fmt.Errorf("fields %q and %q both read %s", prev, field, name)
		}
		owner[name] = field
	}
	return nil
}

// readFields collects a value for every field, preferring the environment over prompt.
func readFields(fields []string, lookup func(string) (string, bool), prompt func(string) (string, error)) (map[string]string, error) {
	if err := checkFieldEnvNames(fields); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		if v, ok := lookup(fieldEnvName(field)); ok {
			values[field] = v
			continue
		}
		v, err := prompt(field + ": ")
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", field, err)
		}
		values[field] = v
	}
	return values, nil
}

// readHidden reads one line without echo from the terminal, falling back to /dev/tty
// when stdin is piped.
func readHidden(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		tty, err := os.Open("/dev/tty")
		if err != nil {
			if runtime.GOOS == "windows" {
				return "", fmt.Errorf("stdin is piped; set %s<NAME> variables instead", FieldEnvPrefix)
			}
			return "", fmt.Errorf("stdin is piped and /dev/tty is unavailable; set %s<NAME> variables instead", FieldEnvPrefix)
		}
		defer tty.Close()
		fd = int(tty.Fd())
	}

	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	v := string(raw)
	clear(raw)
	return v, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func confirm(r *bufio.Reader, w io.Writer, prompt string) (bool, error) {
	fmt.Fprint(w, prompt)
	answer, err := readLine(r)
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func readKeyset(path string) (tink.AEAD, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyset: %w", err)
	}
	defer f.Close()
	return redisqueue.ReadAEAD(f)
}
