package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samcharles93/visualforge/internal/forge"
	"github.com/samcharles93/visualforge/internal/logger"
	"github.com/samcharles93/visualforge/pkg/endian"
	"github.com/samcharles93/visualforge/pkg/taglist"
	"github.com/samcharles93/visualforge/pkg/usermap/halo3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config is the visualforge configuration file
// (<user config dir>/visualforge/config.yaml). Pointer fields distinguish
// "not set" from zero values.
type Config struct {
	ContentDir        string `yaml:"content_dir"`
	ObjectTableOffset *int64 `yaml:"object_table_offset"`
	Endian            string `yaml:"endian"`
	UseMmap           *bool  `yaml:"use_mmap"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
	MapsDir       string `yaml:"maps_dir"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "visualforge", "config.yaml")
}

// LoadConfig reads the config file at path. A missing file yields a zero
// Config; a malformed one is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// settings are the effective options after merging flags, environment and
// the config file. Explicit flags win over the config file.
type settings struct {
	ContentDir        string
	ObjectTableOffset int64
	Endian            endian.Endian
	UseMmap           bool
	LogLevel          slog.Level
	LogFormat         logger.Format
	ServerAddress     string
	MapsDir           string
}

func hasFlag(cmd *cli.Command, name string) bool {
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			if n == name {
				return true
			}
		}
	}
	return false
}

func stringSetting(cmd *cli.Command, flag, fromConfig string) string {
	if !hasFlag(cmd, flag) {
		return fromConfig
	}
	if fromConfig != "" && !cmd.IsSet(flag) {
		return fromConfig
	}
	return cmd.String(flag)
}

func resolveSettings(cmd *cli.Command, cfg Config) (settings, error) {
	var st settings
	var err error

	st.ContentDir = stringSetting(cmd, "content-dir", cfg.ContentDir)
	st.MapsDir = stringSetting(cmd, "maps-dir", cfg.MapsDir)
	st.ServerAddress = stringSetting(cmd, "addr", cfg.ServerAddress)

	st.ObjectTableOffset = halo3.DefaultObjectTableOffset
	if hasFlag(cmd, "object-table-offset") {
		st.ObjectTableOffset = cmd.Int64("object-table-offset")
	}
	if cfg.ObjectTableOffset != nil && !cmd.IsSet("object-table-offset") {
		st.ObjectTableOffset = *cfg.ObjectTableOffset
	}
	if st.ObjectTableOffset <= 0 {
		return st, fmt.Errorf("object table offset must be positive, got %d", st.ObjectTableOffset)
	}

	if st.Endian, err = endian.ParseEndian(stringSetting(cmd, "endian", cfg.Endian)); err != nil {
		return st, err
	}

	st.UseMmap = true
	if hasFlag(cmd, "mmap") {
		st.UseMmap = cmd.Bool("mmap")
	}
	if cfg.UseMmap != nil && !cmd.IsSet("mmap") {
		st.UseMmap = *cfg.UseMmap
	}

	level := stringSetting(cmd, "log-level", cfg.LogLevel)
	if hasFlag(cmd, "debug") && cmd.Bool("debug") {
		level = "debug"
	}
	if st.LogLevel, err = logger.ParseLevel(level); err != nil {
		return st, err
	}
	if st.LogFormat, err = logger.ParseFormat(stringSetting(cmd, "log-format", cfg.LogFormat)); err != nil {
		return st, err
	}
	return st, nil
}

// setup loads the config, resolves settings and installs the logger in the
// returned context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, settings, error) {
	path := configPath()
	if hasFlag(cmd, "config") && cmd.String("config") != "" {
		path = cmd.String("config")
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return ctx, settings{}, cli.Exit(fmt.Sprintf("error: load config: %v", err), 1)
	}
	st, err := resolveSettings(cmd, cfg)
	if err != nil {
		return ctx, settings{}, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	_, noColor := os.LookupEnv("NO_COLOR")
	log := logger.New(cmd.Root().ErrWriter, logger.Options{
		Format:  st.LogFormat,
		Level:   st.LogLevel,
		NoColor: noColor,
	})
	return logger.WithContext(ctx, log), st, nil
}

func (st settings) forgeOptions(log logger.Logger) forge.Options {
	opts := forge.Options{
		Registry: forge.DefaultRegistry(
			halo3.WithObjectTableOffset(st.ObjectTableOffset),
			halo3.WithEndian(st.Endian),
		),
		Logger:  log,
		UseMmap: st.UseMmap,
	}
	if st.ContentDir != "" {
		opts.Tags = taglist.Dir{Root: st.ContentDir}
	}
	return opts
}
