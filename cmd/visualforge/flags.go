package main

import (
	"github.com/samcharles93/visualforge/pkg/usermap/halo3"
	"github.com/urfave/cli/v3"
)

const envContentDir = "VISUALFORGE_CONTENT_DIR"

// commonFlags are accepted by every command that opens a container.
func commonFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to config.yaml (default: <user config dir>/visualforge/config.yaml)",
		},
		&cli.StringFlag{
			Name:    "content-dir",
			Usage:   "directory holding <game id>/<map id>.vftl tag lists",
			Sources: cli.EnvVars(envContentDir),
		},
		&cli.Int64Flag{
			Name:  "object-table-offset",
			Usage: "placement table offset in Halo 3 containers",
			Value: halo3.DefaultObjectTableOffset,
		},
		&cli.StringFlag{
			Name:  "endian",
			Usage: "container byte order (big, little)",
			Value: "big",
		},
		&cli.BoolFlag{
			Name:  "mmap",
			Usage: "memory-map containers instead of using file I/O",
			Value: true,
		},
	}, loggingFlags()...)
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, warn, error)",
			Value: "info",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format (pretty, json, text)",
			Value: "pretty",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging (shorthand for --log-level=debug)",
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "print JSON instead of a table"}
}
