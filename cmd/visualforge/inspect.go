package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/samcharles93/visualforge/internal/api"
	"github.com/samcharles93/visualforge/internal/forge"
	"github.com/samcharles93/visualforge/internal/logger"
	"github.com/samcharles93/visualforge/pkg/usermap"
	"github.com/urfave/cli/v3"
)

type tableSummary struct {
	MapName    string `json:"map_name"`
	Placed     int    `json:"placed_objects"`
	UsedTags   int    `json:"used_tags"`
	Unresolved int    `json:"unresolved_tags"`
}

type inspectOutput struct {
	Path    string        `json:"path"`
	Game    string        `json:"game"`
	GameID  string        `json:"game_id"`
	Header  api.HeaderDTO `json:"header"`
	Summary *tableSummary `json:"summary,omitempty"`
}

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header of a usermap and a summary of its tables",
		ArgsUsage: "<file>",
		Flags:     append(commonFlags(), jsonFlag()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, st, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			path, err := pathArg(cmd)
			if err != nil {
				return err
			}
			log := logger.FromContext(ctx)
			opts := st.forgeOptions(log)

			info, err := forge.ReadHeader(ctx, path, opts)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			out := inspectOutput{
				Path:   path,
				Game:   info.Game,
				GameID: info.GameID,
				Header: api.HeaderFrom(info.Header),
			}

			// The table summary needs the tag list; the header does not.
			opts.ReadOnly = true
			s, err := forge.Open(ctx, path, opts)
			switch {
			case errors.Is(err, usermap.ErrMissingTaglist):
				log.Warn("tag list unavailable, skipping table summary", "map_id", info.Header.MapID)
			case err != nil:
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			default:
				out.Summary = summarize(s)
				_ = s.Close()
			}

			w := cmd.Root().Writer
			if cmd.Bool("json") {
				return printJSON(w, out)
			}
			return printInspect(w, out)
		},
	}
}

func summarize(s *forge.Session) *tableSummary {
	sum := &tableSummary{
		MapName: s.Catalog().MapName(),
		Placed:  len(s.Placements(true)),
	}
	for _, u := range s.TagUsages(true) {
		sum.UsedTags++
		if !u.Resolved() {
			sum.Unresolved++
		}
	}
	return sum
}

func printInspect(w io.Writer, out inspectOutput) error {
	tw := newTable(w)
	h := out.Header
	rows := [][2]string{
		{"file", out.Path},
		{"game", fmt.Sprintf("%s (%s)", out.Game, out.GameID)},
		{"name", h.Name},
		{"description", h.Description},
		{"author", h.Author},
		{"modified", fmt.Sprint(h.ModificationDate)},
		{"created by", h.CreationAuthor},
		{"created", fmt.Sprint(h.CreationDate)},
		{"map id", fmt.Sprint(h.MapID)},
		{"spawned objects", fmt.Sprint(h.SpawnedObjectCount)},
		{"budget", fmt.Sprintf("%g / %g", h.CurrentBudget, h.MaximumBudget)},
		{"world x", fmt.Sprintf("%g .. %g", h.WorldBounds.X.Min, h.WorldBounds.X.Max)},
		{"world y", fmt.Sprintf("%g .. %g", h.WorldBounds.Y.Min, h.WorldBounds.Y.Max)},
		{"world z", fmt.Sprintf("%g .. %g", h.WorldBounds.Z.Min, h.WorldBounds.Z.Max)},
	}
	if sum := out.Summary; sum != nil {
		rows = append(rows,
			[2]string{"map", sum.MapName},
			[2]string{"placed objects", fmt.Sprint(sum.Placed)},
			[2]string{"used tags", fmt.Sprintf("%d (%d unresolved)", sum.UsedTags, sum.Unresolved)},
		)
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}
