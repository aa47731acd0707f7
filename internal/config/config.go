// Package config implements xeno's configuration file: a small,
// sectioned "section.key = value" format stored at ~/.xenoconfig,
// deliberately modeled on .gitconfig/INI rather than JSON. No INI or
// .gitconfig parsing library appears anywhere in the retrieved
// example corpus, so this reader/writer is hand-rolled; see
// DESIGN.md for the justification this project requires whenever a
// concern falls back to the standard library.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Config is an in-memory, ordered-by-section view of a loaded
// configuration file.
type Config struct {
	path     string
	sections map[string]map[string]string
	order    []string // section insertion order, for stable Write output
}

// FilePath returns the canonical location of the xeno configuration
// file: ~/.xenoconfig.
func FilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WithMessage(err, "unable to determine home directory")
	}
	return filepath.Join(home, ".xenoconfig"), nil
}

// Load reads the configuration file, returning an empty Config if it
// does not exist (matching the original tool's SafeConfigParser
// semantics: a missing file is not an error).
func Load() (*Config, error) {
	path, err := FilePath()
	if err != nil {
		return nil, err
	}

	c := &Config{path: path, sections: map[string]map[string]string{}}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, errors.WithMessagef(err, "unable to read configuration file (%s)", path)
	}
	defer f.Close()

	if err := c.parse(f); err != nil {
		return nil, errors.WithMessagef(err, "unable to read configuration file (%s)", path)
	}

	return c, nil
}

func (c *Config) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	section := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			c.ensureSection(section)
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 || section == "" {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		c.sections[section][key] = value
	}
	return scanner.Err()
}

func (c *Config) ensureSection(section string) {
	if _, ok := c.sections[section]; !ok {
		c.sections[section] = map[string]string{}
		c.order = append(c.order, section)
	}
}

// Get returns the value of "section.option", and whether it was set.
func (c *Config) Get(section, option string) (string, bool) {
	m, ok := c.sections[section]
	if !ok {
		return "", false
	}
	v, ok := m[option]
	return v, ok
}

// Set assigns "section.option" = value, creating the section if
// necessary.
func (c *Config) Set(section, option, value string) {
	c.ensureSection(section)
	c.sections[section][option] = value
}

// Clear removes "section.option", pruning the section entirely if it
// becomes empty, matching `xeno config --clear key`.
func (c *Config) Clear(section, option string) {
	m, ok := c.sections[section]
	if !ok {
		return
	}
	delete(m, option)
	if len(m) == 0 {
		delete(c.sections, section)
		for i, s := range c.order {
			if s == section {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
}

// Sections returns section names in first-seen order.
func (c *Config) Sections() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Save writes the configuration back to its file path.
func (c *Config) Save() error {
	f, err := os.Create(c.path)
	if err != nil {
		return errors.WithMessagef(err, "unable to save configuration to %s", c.path)
	}
	defer f.Close()
	return c.Write(f)
}

// Write serializes the configuration in section order, with keys
// sorted within each section for deterministic output.
func (c *Config) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, section := range c.order {
		fmt.Fprintf(bw, "[%s]\n", section)
		keys := make([]string, 0, len(c.sections[section]))
		for k := range c.sections[section] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(bw, "%s = %s\n", k, c.sections[section][k])
		}
	}
	return bw.Flush()
}

// WorkingDirectory returns the xeno working directory: the
// core.workingDirectory setting if present, otherwise ~/.xeno. It
// creates the directory (mode 0700) if it does not already exist.
func (c *Config) WorkingDirectory() (string, error) {
	path, ok := c.Get("core", "workingDirectory")
	if !ok || path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.WithMessage(err, "unable to determine home directory")
		}
		path = filepath.Join(home, ".xeno")
	}

	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return "", errors.Errorf("xeno working path exists and is not a directory: %s", path)
		}
		return path, nil
	}
	if !os.IsNotExist(err) {
		return "", errors.WithMessage(err, "unable to stat xeno working directory")
	}

	if err := os.MkdirAll(path, 0700); err != nil {
		return "", errors.WithMessage(err, "unable to create xeno working directory")
	}
	return path, nil
}

// Editor returns the core.editor setting, falling back to $EDITOR and
// then "vi", matching spec.md section 4.6's editor resolution order.
func (c *Config) Editor() string {
	if v, ok := c.Get("core", "editor"); ok && v != "" {
		return v
	}
	if v := os.Getenv("EDITOR"); v != "" {
		return v
	}
	return "vi"
}

// SyncInterval returns the sync.syncInterval setting in seconds,
// falling back to daemon.DefaultInterval's value (10s) when unset or
// unparsable.
func (c *Config) SyncInterval() time.Duration {
	v, ok := c.Get("sync", "syncInterval")
	if !ok {
		return 10 * time.Second
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(seconds) * time.Second
}

// PollForRemoteChanges returns the sync.pollForRemoteChanges setting.
func (c *Config) PollForRemoteChanges() bool {
	v, ok := c.Get("sync", "pollForRemoteChanges")
	if !ok {
		return false
	}
	return v == "True" || v == "true" || v == "1"
}

// SplitKey splits "section.option" into its two parts, matching
// `xeno config`'s CLI key grammar.
func SplitKey(key string) (section, option string, err error) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("invalid configuration key %q", key)
	}
	return parts[0], parts[1], nil
}
