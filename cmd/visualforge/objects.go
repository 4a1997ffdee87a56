package main

import (
	"context"
	"fmt"

	"github.com/samcharles93/visualforge/internal/api"
	"github.com/samcharles93/visualforge/internal/vecmath"
	"github.com/samcharles93/visualforge/pkg/taglist"
	"github.com/urfave/cli/v3"
)

type objectRow struct {
	api.PlacementDTO
	Tag   string `json:"tag,omitempty"`
	Asset string `json:"asset,omitempty"`
}

func objectsCmd() *cli.Command {
	return &cli.Command{
		Name:      "objects",
		Usage:     "List object placements",
		ArgsUsage: "<file>",
		Flags: append(commonFlags(),
			jsonFlag(),
			&cli.BoolFlag{Name: "all", Usage: "include unused placement slots"},
			&cli.BoolFlag{Name: "assets", Usage: "resolve model files under the content directory"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, s, st, err := openSession(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			assets := taglist.Dir{Root: st.ContentDir}
			var rows []objectRow
			for _, p := range s.Placements(!cmd.Bool("all")) {
				row := objectRow{PlacementDTO: api.PlacementFrom(p)}
				if p.Usage >= 0 {
					u, err := s.TagUsage(p.Usage)
					if err == nil && u.Tag != nil {
						row.Tag = u.Tag.Path
						if cmd.Bool("assets") {
							if path, err := assets.AssetPath(s.GameID(), u.Tag.Path); err == nil {
								row.Asset = path
							}
						}
					}
				}
				rows = append(rows, row)
			}

			w := cmd.Root().Writer
			if cmd.Bool("json") {
				if rows == nil {
					rows = []objectRow{}
				}
				return printJSON(w, rows)
			}
			tw := newTable(w)
			header := "INDEX\tTAG\tX\tY\tZ\tYAW\tPITCH\tROLL\tTEAM\tRESPAWN"
			if cmd.Bool("assets") {
				header += "\tASSET"
			}
			_, _ = fmt.Fprintln(tw, header)
			for _, r := range rows {
				tag := r.Tag
				if tag == "" {
					tag = "-"
				}
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.3f\t%.3f\t%.1f\t%.1f\t%.1f\t%d\t%d",
					r.Index, tag, r.X, r.Y, r.Z,
					vecmath.Degrees(r.Yaw), vecmath.Degrees(r.Pitch), vecmath.Degrees(r.Roll),
					r.Team, r.RespawnTime)
				if cmd.Bool("assets") {
					asset := r.Asset
					if asset == "" {
						asset = "-"
					}
					_, _ = fmt.Fprintf(tw, "\t%s", asset)
				}
				_, _ = fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}
}

func tagsCmd() *cli.Command {
	return &cli.Command{
		Name:      "tags",
		Usage:     "List tag-usage (budget) records",
		ArgsUsage: "<file>",
		Flags: append(commonFlags(),
			jsonFlag(),
			&cli.BoolFlag{Name: "all", Usage: "include records with nothing on the map"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, s, _, err := openSession(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			usages := s.TagUsages(!cmd.Bool("all"))
			w := cmd.Root().Writer
			if cmd.Bool("json") {
				out := make([]api.TagUsageDTO, 0, len(usages))
				for _, u := range usages {
					out = append(out, api.TagUsageFrom(u))
				}
				return printJSON(w, out)
			}
			tw := newTable(w)
			_, _ = fmt.Fprintln(tw, "INDEX\tIDENT\tCLASS\tPATH\tON MAP\tMAX\tRUNTIME\tCOST\tPLACED")
			for _, u := range usages {
				class, path := "?", "(not in tag list)"
				if u.Tag != nil {
					class, path = u.Tag.Class, u.Tag.Path
				}
				_, _ = fmt.Fprintf(tw, "%d\t0x%08x\t%s\t%s\t%d\t%d\t%d-%d\t%g\t%d\n",
					u.Index, uint32(u.Ident), class, path,
					u.CountOnMap, u.DesignTimeMax, u.RuntimeMin, u.RuntimeMax, u.Cost, len(u.Placements))
			}
			return tw.Flush()
		},
	}
}
