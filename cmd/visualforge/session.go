package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/samcharles93/visualforge/internal/forge"
	"github.com/samcharles93/visualforge/internal/logger"
	"github.com/samcharles93/visualforge/pkg/usermap"
	"github.com/urfave/cli/v3"
)

func pathArg(cmd *cli.Command) (string, error) {
	path := cmd.Args().First()
	if path == "" {
		return "", cli.Exit("error: usermap path is required", 1)
	}
	return path, nil
}

func indexArg(cmd *cli.Command, n int, limit int) (int, error) {
	raw := cmd.Args().Get(n)
	if raw == "" {
		return 0, cli.Exit("error: record index is required", 1)
	}
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= limit {
		return 0, cli.Exit(fmt.Sprintf("error: index %q out of range [0, %d)", raw, limit), 1)
	}
	return i, nil
}

// openSession opens the container named by the first argument.
func openSession(ctx context.Context, cmd *cli.Command, readOnly bool) (context.Context, *forge.Session, settings, error) {
	ctx, st, err := setup(ctx, cmd)
	if err != nil {
		return ctx, nil, st, err
	}
	path, err := pathArg(cmd)
	if err != nil {
		return ctx, nil, st, err
	}
	opts := st.forgeOptions(logger.FromContext(ctx))
	opts.ReadOnly = readOnly
	s, err := forge.Open(ctx, path, opts)
	if err != nil {
		return ctx, nil, st, openError(err, st)
	}
	return ctx, s, st, nil
}

func openError(err error, st settings) error {
	if errors.Is(err, usermap.ErrMissingTaglist) && st.ContentDir == "" {
		return cli.Exit(fmt.Sprintf("error: %v (set --content-dir or %s)", err, envContentDir), 1)
	}
	return cli.Exit(fmt.Sprintf("error: %v", err), 1)
}
