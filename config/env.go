package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvClassPath = "TIKA_BRIDGE_CLASSPATH"
	EnvJVMOpts   = "TIKA_BRIDGE_JVM_OPTS"
	EnvMaxLength = "TIKA_BRIDGE_MAX_LENGTH"
)

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. With no files it reads ./.env
// if present. Files named explicitly must exist and parse.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load env file %s: %w", file, err)
		}
	}
	return nil
}

// ApplyEnv overrides f with values from the environment.
func (f *File) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvClassPath); ok {
		f.Runtime.ClassPath = v
	}
	if v, ok := os.LookupEnv(EnvJVMOpts); ok {
		f.Runtime.JVMOptions = strings.Fields(v)
	}
	if v, ok := os.LookupEnv(EnvMaxLength); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return fmt.Errorf("%s: invalid length %q", EnvMaxLength, v)
		}
		f.Extractor.MaxLength = n
	}
	return nil
}
