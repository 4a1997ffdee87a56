package main

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/samcharles93/visualforge/internal/api"
	"github.com/samcharles93/visualforge/internal/vecmath"
	"github.com/samcharles93/visualforge/pkg/usermap"
	"github.com/samcharles93/visualforge/pkg/usermap/halo3"
	"github.com/urfave/cli/v3"
)

func byteFlag(cmd *cli.Command, name string) (uint8, error) {
	v := cmd.Int(name)
	if v < 0 || v > math.MaxUint8 {
		return 0, cli.Exit(fmt.Sprintf("error: --%s must be between 0 and 255, got %d", name, v), 1)
	}
	return uint8(v), nil
}

func float32Flag(cmd *cli.Command, name string) float32 {
	return float32(cmd.Float(name))
}

// setIf runs apply when the named flag was given on the command line.
func setIf(cmd *cli.Command, name string, apply func() error) error {
	if !cmd.IsSet(name) {
		return nil
	}
	return apply()
}

func setObjectCmd() *cli.Command {
	return &cli.Command{
		Name:      "set-object",
		Usage:     "Edit one object placement in place",
		ArgsUsage: "<file> <index>",
		Flags: append(commonFlags(),
			&cli.IntFlag{Name: "tag-index", Usage: "tag-usage record to place (-1 clears the slot)"},
			&cli.FloatFlag{Name: "x", Usage: "position X"},
			&cli.FloatFlag{Name: "y", Usage: "position Y"},
			&cli.FloatFlag{Name: "z", Usage: "position Z"},
			&cli.FloatFlag{Name: "yaw", Usage: "yaw in degrees"},
			&cli.FloatFlag{Name: "pitch", Usage: "pitch in degrees"},
			&cli.FloatFlag{Name: "roll", Usage: "roll in degrees"},
			&cli.IntFlag{Name: "team", Usage: "team index"},
			&cli.IntFlag{Name: "respawn", Usage: "respawn time in seconds"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			index, err := indexArg(cmd, 1, halo3.ObjectCount)
			if err != nil {
				return err
			}
			edit, err := placementEdit(cmd)
			if err != nil {
				return err
			}
			_, s, _, err := openSession(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			p, err := s.UpdatePlacement(index, edit)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := s.Close(); err != nil {
				return cli.Exit(fmt.Sprintf("error: flush: %v", err), 1)
			}
			return printJSON(cmd.Root().Writer, api.PlacementFrom(p))
		},
	}
}

func placementEdit(cmd *cli.Command) (func(*usermap.Placement), error) {
	var edits []func(*usermap.Placement)

	err := setIf(cmd, "tag-index", func() error {
		v := cmd.Int("tag-index")
		if v < math.MinInt32 || v > math.MaxInt32 {
			return cli.Exit(fmt.Sprintf("error: --tag-index out of range: %d", v), 1)
		}
		edits = append(edits, func(p *usermap.Placement) { p.TagIndex = int32(v) })
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, f := range []struct {
		name    string
		degrees bool
		dst     func(*usermap.Placement) *float32
	}{
		{"x", false, func(p *usermap.Placement) *float32 { return &p.Pose.X }},
		{"y", false, func(p *usermap.Placement) *float32 { return &p.Pose.Y }},
		{"z", false, func(p *usermap.Placement) *float32 { return &p.Pose.Z }},
		{"yaw", true, func(p *usermap.Placement) *float32 { return &p.Pose.Yaw }},
		{"pitch", true, func(p *usermap.Placement) *float32 { return &p.Pose.Pitch }},
		{"roll", true, func(p *usermap.Placement) *float32 { return &p.Pose.Roll }},
	} {
		if !cmd.IsSet(f.name) {
			continue
		}
		v := float32Flag(cmd, f.name)
		if f.degrees {
			v = vecmath.Radians(v)
		}
		dst := f.dst
		edits = append(edits, func(p *usermap.Placement) { *dst(p) = v })
	}
	for _, f := range []struct {
		name string
		dst  func(*usermap.Placement) *uint8
	}{
		{"team", func(p *usermap.Placement) *uint8 { return &p.Team }},
		{"respawn", func(p *usermap.Placement) *uint8 { return &p.RespawnTime }},
	} {
		if !cmd.IsSet(f.name) {
			continue
		}
		v, err := byteFlag(cmd, f.name)
		if err != nil {
			return nil, err
		}
		dst := f.dst
		edits = append(edits, func(p *usermap.Placement) { *dst(p) = v })
	}
	if len(edits) == 0 {
		return nil, cli.Exit("error: nothing to change; pass at least one field flag", 1)
	}
	return func(p *usermap.Placement) {
		for _, e := range edits {
			e(p)
		}
	}, nil
}

func setTagCmd() *cli.Command {
	return &cli.Command{
		Name:      "set-tag",
		Usage:     "Edit one tag-usage record in place",
		ArgsUsage: "<file> <index>",
		Flags: append(commonFlags(),
			&cli.StringFlag{Name: "ident", Usage: "tag datum index (decimal or 0x hex)"},
			&cli.IntFlag{Name: "runtime-min", Usage: "minimum runtime count"},
			&cli.IntFlag{Name: "runtime-max", Usage: "maximum runtime count"},
			&cli.IntFlag{Name: "count", Usage: "count on map"},
			&cli.IntFlag{Name: "design-max", Usage: "design-time maximum"},
			&cli.FloatFlag{Name: "cost", Usage: "budget cost"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			index, err := indexArg(cmd, 1, halo3.TagCount)
			if err != nil {
				return err
			}
			edit, err := tagUsageEdit(cmd)
			if err != nil {
				return err
			}
			_, s, _, err := openSession(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			u, err := s.UpdateTagUsage(index, edit)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := s.Close(); err != nil {
				return cli.Exit(fmt.Sprintf("error: flush: %v", err), 1)
			}
			return printJSON(cmd.Root().Writer, api.TagUsageFrom(u))
		},
	}
}

func tagUsageEdit(cmd *cli.Command) (func(*usermap.TagUsage), error) {
	var edits []func(*usermap.TagUsage)

	if cmd.IsSet("ident") {
		raw := cmd.String("ident")
		v, err := strconv.ParseInt(raw, 0, 64)
		if err != nil || v < math.MinInt32 || v > math.MaxUint32 {
			return nil, cli.Exit(fmt.Sprintf("error: invalid --ident %q", raw), 1)
		}
		ident := int32(uint32(v))
		edits = append(edits, func(u *usermap.TagUsage) { u.Ident = ident })
	}
	for _, f := range []struct {
		name string
		dst  func(*usermap.TagUsage) *uint8
	}{
		{"runtime-min", func(u *usermap.TagUsage) *uint8 { return &u.RuntimeMin }},
		{"runtime-max", func(u *usermap.TagUsage) *uint8 { return &u.RuntimeMax }},
		{"count", func(u *usermap.TagUsage) *uint8 { return &u.CountOnMap }},
		{"design-max", func(u *usermap.TagUsage) *uint8 { return &u.DesignTimeMax }},
	} {
		if !cmd.IsSet(f.name) {
			continue
		}
		v, err := byteFlag(cmd, f.name)
		if err != nil {
			return nil, err
		}
		dst := f.dst
		edits = append(edits, func(u *usermap.TagUsage) { *dst(u) = v })
	}
	if cmd.IsSet("cost") {
		cost := float32Flag(cmd, "cost")
		edits = append(edits, func(u *usermap.TagUsage) { u.Cost = cost })
	}
	if len(edits) == 0 {
		return nil, cli.Exit("error: nothing to change; pass at least one field flag", 1)
	}
	return func(u *usermap.TagUsage) {
		for _, e := range edits {
			e(u)
		}
	}, nil
}

func setHeaderCmd() *cli.Command {
	return &cli.Command{
		Name:      "set-header",
		Usage:     "Edit the usermap header in place",
		ArgsUsage: "<file>",
		Flags: append(commonFlags(),
			&cli.StringFlag{Name: "name", Usage: "variant name (15 characters max)"},
			&cli.StringFlag{Name: "description", Usage: "variant description"},
			&cli.StringFlag{Name: "author", Usage: "variant author"},
			&cli.IntFlag{Name: "spawned", Usage: "spawned object count"},
			&cli.FloatFlag{Name: "max-budget", Usage: "maximum budget"},
			&cli.FloatFlag{Name: "current-budget", Usage: "current budget"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			edit, err := headerEdit(cmd)
			if err != nil {
				return err
			}
			_, s, _, err := openSession(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			h, err := s.UpdateHeader(edit)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := s.Close(); err != nil {
				return cli.Exit(fmt.Sprintf("error: flush: %v", err), 1)
			}
			return printJSON(cmd.Root().Writer, api.HeaderFrom(h))
		},
	}
}

func headerEdit(cmd *cli.Command) (func(*usermap.Header), error) {
	var edits []func(*usermap.Header)

	for _, f := range []struct {
		name string
		dst  func(*usermap.Header) *string
	}{
		{"name", func(h *usermap.Header) *string { return &h.Name }},
		{"description", func(h *usermap.Header) *string { return &h.Description }},
		{"author", func(h *usermap.Header) *string { return &h.Author }},
	} {
		if !cmd.IsSet(f.name) {
			continue
		}
		v, dst := cmd.String(f.name), f.dst
		edits = append(edits, func(h *usermap.Header) { *dst(h) = v })
	}
	if cmd.IsSet("spawned") {
		v := cmd.Int("spawned")
		if v < math.MinInt16 || v > math.MaxInt16 {
			return nil, cli.Exit(fmt.Sprintf("error: --spawned out of range: %d", v), 1)
		}
		edits = append(edits, func(h *usermap.Header) { h.SpawnedObjectCount = int16(v) })
	}
	if cmd.IsSet("max-budget") {
		v := float32Flag(cmd, "max-budget")
		edits = append(edits, func(h *usermap.Header) { h.MaximumBudget = v })
	}
	if cmd.IsSet("current-budget") {
		v := float32Flag(cmd, "current-budget")
		edits = append(edits, func(h *usermap.Header) { h.CurrentBudget = v })
	}
	if len(edits) == 0 {
		return nil, cli.Exit("error: nothing to change; pass at least one field flag", 1)
	}
	return func(h *usermap.Header) {
		for _, e := range edits {
			e(h)
		}
	}, nil
}
