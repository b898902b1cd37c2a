package main

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/MrEthical07/prpass"
)

func TestFieldEnvName(t *testing.T) {
	tests := map[string]string{
		"full_name":     "PRPASS_FIELD_FULL_NAME",
		"full name":     "PRPASS_FIELD_FULL_NAME",
		"birthday":      "PRPASS_FIELD_BIRTHDAY",
		"Miscellaneous": "PRPASS_FIELD_MISCELLANEOUS",
	}
	for in, want := range tests {
		if got := fieldEnvName(in); got != want {
			t.Fatalf("fieldEnvName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadFieldsPrefersEnvironment(t *testing.T) {
	env := map[string]string{
		"PRPASS_FIELD_FULL_NAME":     "Jane Doe",
		"PRPASS_FIELD_MISCELLANEOUS": "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	var prompted []string
	prompt := func(p string) (string, error) {
		prompted = append(prompted, p)
		return "typed", nil
	}

	values, err := readFields([]string{"full_name", "birthday", "miscellaneous"}, lookup, prompt)
	if err != nil {
		t.Fatalf("readFields: %v", err)
	}
	if values["full_name"] != "Jane Doe" || values["birthday"] != "typed" || values["miscellaneous"] != "" {
		t.Fatalf("unexpected values %v", values)
	}
	if len(prompted) != 1 || prompted[0] != "birthday: " {
		t.Fatalf("only unset fields should prompt, got %v", prompted)
	}
}

func TestReadFieldsPromptError(t *testing.T) {
	boom := errors.New("no tty")
	_, err := readFields([]string{"password"},
		func(string) (string, bool) { return "", false },
		func(string) (string, error) { return "", boom },
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected prompt error, got %v", err)
	}
}

func TestReadFieldsRejectsCollidingEnvNames(t *testing.T) {
	for _, fields := range [][]string{{"a b", "a_b"}, {"Name", "name"}} {
		prompted := false
		_, err := readFields(fields,
			func(string) (string, bool) { return "shared", true },
			func(string) (string, error) { prompted = true; return "", nil },
		)
		if err == nil || !strings.Contains(err.Error(), fieldEnvName(fields[0])) {
			t.Fatalf("%v: expected collision error, got %v", fields, err)
		}
		if prompted {
			t.Fatalf("%v: collision must be reported before prompting", fields)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \r\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := confirm(bufio.NewReader(strings.NewReader(tt.input)), io.Discard, "? ")
		if err != nil {
			t.Fatalf("confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRunListAlgorithms(t *testing.T) {
	if err := run([]string{"--list-algorithms"}); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunRejectsBadLogLevel(t *testing.T) {
	if err := run([]string{"--log-level", "loud"}); err == nil {
		t.Fatal("expected invalid log level error")
	}
}

func TestPrintReport(t *testing.T) {
	cfg := prpass.DefaultConfig()
	cfg.Password.DefaultLength = 8
	e, err := prpass.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer e.Close()

	var buf bytes.Buffer
	if err := printReport(&buf, e.SecurityReport(), cfg.Lint()); err != nil {
		t.Fatalf("printReport: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"default_algorithm: " + e.DefaultAlgorithm(), "default_password_length: 8", "code: default_length_short"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}
