package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/ioprogress"
	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt"
)

// commonFlags are the flags every keyed subcommand accepts.
type commonFlags struct {
	fs           *flag.FlagSet
	config       *string
	salt         *string
	passwordFile *string
	multiplier   *int
	verbose      *bool
	trace        *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		fs:           fs,
		config:       fs.String("config", "", "path to a YAML config file (default ~/"+DefaultConfigName+" if present)"),
		salt:         fs.String("salt", "", "salt, prompted for when unset"),
		passwordFile: fs.String("password-file", "", "read the password from this file instead of prompting"),
		multiplier:   fs.Int("multiplier", -1, "vector multiplier, negative for the default"),
		verbose:      fs.Bool("v", false, "log debug messages"),
		trace:        fs.Bool("trace", false, "log every file read, write and seek"),
	}
}

// load reads the config file and applies the flags that were set on the
// command line. It also sets the log level.
func (c *commonFlags) load() (*Config, error) {
	path, required := *c.config, *c.config != ""
	if !required {
		path = DefaultConfigPath()
	}
	cfg, err := LoadConfig(path, required)
	if err != nil {
		return nil, err
	}

	set := map[string]bool{}
	c.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["salt"] {
		cfg.Salt = *c.salt
	}
	if set["multiplier"] {
		cfg.Multiplier = *c.multiplier
	}
	switch {
	case *c.trace:
		cfg.LogLevel = logrus.TraceLevel.String()
	case *c.verbose:
		cfg.LogLevel = logrus.DebugLevel.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := cfg.Level()
	logrus.SetLevel(level)
	return cfg, nil
}

// newSession creates a session from cfg and derives its keystream from the
// salt and a password.
func (c *commonFlags) newSession(cfg *Config, confirm bool) (*mincrypt.Session, error) {
	enc, err := cfg.EncodingType()
	if err != nil {
		return nil, err
	}

	s, err := mincrypt.NewSession(&mincrypt.Options{
		Encoding:   enc,
		SimpleMode: cfg.SimpleMode,
		Logger:     logrus.WithField("cmd", c.fs.Name()),
		Progress:   progressBar(),
		TraceIO:    *c.trace,
	})
	if err != nil {
		return nil, err
	}

	salt, err := readSalt(cfg)
	if err != nil {
		return nil, err
	}
	password, err := readPassword(*c.passwordFile, confirm)
	if err != nil {
		return nil, err
	}
	if err := s.SetPassword(salt, password, cfg.Multiplier); err != nil {
		return nil, err
	}
	return s, nil
}

// progressBar draws to stderr when it is a terminal.
func progressBar() ioprogress.DrawFunc {
	stat, err := os.Stderr.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice == 0 {
		return nil
	}
	bar := ioprogress.DrawTextFormatBar(40)
	return ioprogress.DrawTerminalf(os.Stderr, func(progress, total int64) string {
		if total <= 0 {
			return ioprogress.DrawTextFormatBytes(progress, progress)
		}
		return fmt.Sprintf("%s %s", bar(progress, total), ioprogress.DrawTextFormatBytes(progress, total))
	})
}

// requireFlag fails when value is empty.
func requireFlag(fs *flag.FlagSet, name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: -%s is required for %s", mincrypt.ErrParameter, name, fs.Name())
	}
	return nil
}

// fail logs err and returns its exit code.
func fail(log *logrus.Entry, msg string, err error) int {
	log.WithError(err).Error(msg)
	return mincrypt.ExitCode(err)
}
