// prpass derives per-service passwords from a set of personal fields.
//
// Field values are read from PRPASS_FIELD_<NAME> environment variables or entered
// without echo. The master key is derived once per run, either in-process or through
// a prpass-worker reached over Redis, and its fingerprint art is shown for the user to
// confirm before any password is printed.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/MrEthical07/prpass"
	"github.com/MrEthical07/prpass/executor"
	"github.com/MrEthical07/prpass/executor/redisqueue"
)

type options struct {
	configPath     string
	algorithm      string
	fields         []string
	length         int
	services       []string
	listAlgorithms bool
	securityReport bool
	redisAddr      string
	keysetPath     string
	timeout        time.Duration
	yes            bool
	logLevel       string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options

	flagSet := pflag.NewFlagSet("prpass", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file (default: $"+prpass.ConfigEnvVar+")")
	flagSet.StringVarP(&opts.algorithm, "algorithm", "a", "", "hash backend (default: first registered)")
	flagSet.StringSliceVarP(&opts.fields, "fields", "f", nil, "ordered field names (default: full_name,birthday,password,miscellaneous)")
	flagSet.IntVarP(&opts.length, "length", "l", 0, "password length (0 selects the configured default)")
	flagSet.StringArrayVarP(&opts.services, "service", "s", nil, "service name; repeatable. Prompts when omitted")
	flagSet.BoolVar(&opts.listAlgorithms, "list-algorithms", false, "print registered backends and exit")
	flagSet.BoolVar(&opts.securityReport, "security-report", false, "print the effective settings and configuration findings, then exit")
	flagSet.StringVar(&opts.redisAddr, "redis-addr", "", "derive the master key on a prpass-worker reachable at this Redis address")
	flagSet.StringVar(&opts.keysetPath, "aead-keyset", "", "cleartext Tink keyset sealing queued jobs")
	flagSet.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "master key derivation deadline")
	flagSet.BoolVarP(&opts.yes, "yes", "y", false, "skip the fingerprint confirmation")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	logger, err := newLogger(opts.logLevel)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	lint := cfg.Lint()
	for _, w := range lint {
		logger.Warn("configuration finding", slog.String("code", w.Code), slog.String("severity", w.Severity.String()), slog.String("detail", w.Message))
	}

	engine, err := prpass.New().WithConfig(cfg).WithLogger(logger).Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	if opts.securityReport {
		return printReport(os.Stdout, engine.SecurityReport(), lint)
	}

	if opts.listAlgorithms {
		for _, name := range engine.Algorithms() {
			fmt.Println(name)
		}
		return nil
	}

	schema := prpass.DefaultSchema()
	if len(opts.fields) > 0 {
		schema, err = prpass.NewSchema(opts.fields...)
		if err != nil {
			return err
		}
	}

	values, err := readFields(schema.Fields(), os.LookupEnv, readHidden)
	if err != nil {
		return err
	}
	profile, err := engine.NewProfile(schema, values)
	clear(values)
	if err != nil {
		return err
	}
	defer profile.Close()

	for _, adv := range profile.Advisories() {
		fmt.Fprintf(os.Stderr, "warning: %v\n", adv)
	}

	if opts.algorithm != "" {
		if err := profile.SetAlgorithm(opts.algorithm); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ex, closeExecutor, err := newExecutor(opts, logger)
	if err != nil {
		return err
	}
	defer closeExecutor()

	fmt.Fprintf(os.Stderr, "deriving master key with %s...\n", profile.Algorithm())
	deriveCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	fp, err := profile.DeriveMasterKeyWith(deriveCtx, ex)
	cancel()
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, fp.Art())
	fmt.Fprintln(os.Stderr, fp.Hex())

	stdin := bufio.NewReader(os.Stdin)
	if !opts.yes {
		ok, err := confirm(stdin, os.Stderr, "Does this fingerprint match the one you expect? [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("fingerprint rejected")
		}
	}

	if len(opts.services) > 0 {
		for _, service := range opts.services {
			if err := printPassword(os.Stdout, profile, service, opts.length); err != nil {
				return err
			}
		}
		return nil
	}

	for {
		fmt.Fprint(os.Stderr, "service (empty to quit): ")
		service, err := readLine(stdin)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if service == "" {
			return nil
		}
		if err := printPassword(os.Stdout, profile, service, opts.length); err != nil {
			return err
		}
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func loadConfig(path string) (prpass.Config, error) {
	if path != "" {
		return prpass.LoadConfigFile(path)
	}
	if os.Getenv(prpass.ConfigEnvVar) != "" {
		return prpass.LoadConfig()
	}
	return prpass.DefaultConfig(), nil
}

// newExecutor returns the in-process executor, or a queue client when --redis-addr is set.
func newExecutor(opts options, logger *slog.Logger) (prpass.JobExecutor, func(), error) {
	if opts.redisAddr == "" {
		return executor.Inline{}, func() {}, nil
	}

	queueOpts := redisqueue.Options{Logger: logger}
	if opts.keysetPath != "" {
		aead, err := readKeyset(opts.keysetPath)
		if err != nil {
			return nil, nil, err
		}
		queueOpts.AEAD = aead
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{opts.redisAddr},
	})
	return redisqueue.NewClient(client, queueOpts), func() { _ = client.Close() }, nil
}

func printReport(w io.Writer, report prpass.SecurityReport, lint prpass.LintResult) error {
	type finding struct {
		Code     string `yaml:"code"`
		Severity string `yaml:"severity"`
		Message  string `yaml:"message"`
	}
	doc := struct {
		Report   prpass.SecurityReport `yaml:"report"`
		Findings []finding             `yaml:"findings,omitempty"`
	}{Report: report}
	for _, f := range lint {
		doc.Findings = append(doc.Findings, finding{f.Code, f.Severity.String(), f.Message})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func printPassword(w io.Writer, profile *prpass.Profile, service string, length int) error {
	pw, err := profile.DerivePassword(service, length)
	if err != nil {
		return fmt.Errorf("%s: %w", service, err)
	}
	_, err = fmt.Fprintf(w, "%s\t%s\n", service, pw)
	return err
}
