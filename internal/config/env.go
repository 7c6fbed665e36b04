package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// Env is a read-only set of KEY=VALUE configuration entries.
type Env map[string]string

// ReadEnvFile parses a dotenv style file. Blank lines, # comments, quoted
// values and a leading "export " are accepted. An unquoted value ends at the
// first " #"; a trailing backslash is kept as part of the value.
func ReadEnvFile(path string) (Env, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreContinuation:        true,
		KeyValueDelimiters:        "=",
		UnescapeValueDoubleQuotes: true,
		SpaceBeforeInlineComment:  true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	env := Env{}
	for _, key := range file.Section(ini.DefaultSection).Keys() {
		name := strings.TrimSpace(strings.TrimPrefix(key.Name(), "export "))
		env[name] = key.Value()
	}

	return env, nil
}

// LoadEnv reads the env file at path and lets variables already present in
// the process environment win over the file.
func LoadEnv(path string) (Env, error) {
	env, err := ReadEnvFile(path)
	if err != nil {
		return nil, err
	}
	return env.Overlay(os.LookupEnv), nil
}

// ProcessEnv builds an Env from the process environment alone.
func ProcessEnv() Env {
	return Env{}.Overlay(os.LookupEnv)
}

// Overlay returns a copy of e where every known configuration key that
// lookup resolves replaces the file value.
func (e Env) Overlay(lookup func(string) (string, bool)) Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	for _, key := range knownKeys {
		if v, ok := lookup(key); ok {
			out[key] = v
		}
	}
	return out
}

// Get returns the value for key, or def when the key is absent or empty.
func (e Env) Get(key, def string) string {
	if v, ok := e[key]; ok && v != "" {
		return v
	}
	return def
}

// Lookup returns the value for key and whether the key is present, so an
// explicitly empty entry can be told apart from a missing one.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// Int parses the value for key as an integer.
func (e Env) Int(key string, def int) (int, error) {
	raw, ok := e[key]
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return n, nil
}

// Duration parses the value for key as a Go duration. Bare integers are
// read as seconds.
func (e Env) Duration(key string, def time.Duration) (time.Duration, error) {
	raw, ok := e[key]
	if !ok || raw == "" {
		return def, nil
	}
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

// Keys returns the entry names in sorted order.
func (e Env) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteEnvFile writes e as a KEY=VALUE file with sorted keys. Values that
// would not survive an unquoted read are double quoted, with embedded double
// quotes escaped, so the file stays readable by other dotenv loaders.
func WriteEnvFile(path string, e Env) error {
	var sb strings.Builder
	for _, k := range e.Keys() {
		v := e[k]
		if strings.ContainsAny(v, "\r\n") {
			return fmt.Errorf("failed to add %s: multi-line values are not supported", k)
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(quoteEnvValue(v))
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write env file %s: %w", path, err)
	}
	return nil
}

func quoteEnvValue(v string) string {
	if v == "" {
		return v
	}
	if strings.TrimSpace(v) == v && !strings.ContainsAny(v, " \t#;\"'`\\") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}
