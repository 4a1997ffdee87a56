package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/samcharles93/visualforge/pkg/taglist"
	"github.com/urfave/cli/v3"
)

func taglistCmd() *cli.Command {
	return &cli.Command{
		Name:  "taglist",
		Usage: "Build and examine tag-list files",
		Commands: []*cli.Command{
			taglistPackCmd(),
			taglistShowCmd(),
		},
	}
}

func taglistPackCmd() *cli.Command {
	return &cli.Command{
		Name:      "pack",
		Usage:     "Compress a JSON tag list into a " + taglist.Extension + " file",
		ArgsUsage: "<in.json> <out" + taglist.Extension + ">",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in, out := cmd.Args().Get(0), cmd.Args().Get(1)
			if in == "" || out == "" {
				return cli.Exit("error: input and output paths are required", 1)
			}
			raw, err := os.ReadFile(in)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			var doc taglist.Document
			if err := json.Unmarshal(raw, &doc); err != nil {
				return cli.Exit(fmt.Sprintf("error: parse %s: %v", in, err), 1)
			}

			f, err := os.Create(out)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := taglist.Encode(f, doc); err != nil {
				_ = f.Close()
				return cli.Exit(fmt.Sprintf("error: write %s: %v", out, err), 1)
			}
			if err := f.Close(); err != nil {
				return cli.Exit(fmt.Sprintf("error: write %s: %v", out, err), 1)
			}
			_, _ = fmt.Fprintf(cmd.Root().Writer, "packed %d tags for map %d into %s\n", len(doc.Tags), doc.MapID, out)
			return nil
		},
	}
}

func taglistShowCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the tags of a " + taglist.Extension + " file",
		ArgsUsage: "<file" + taglist.Extension + ">",
		Flags:     []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("error: tag-list path is required", 1)
			}
			f, err := os.Open(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = f.Close() }()
			c, err := taglist.Decode(f)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			w := cmd.Root().Writer
			if cmd.Bool("json") {
				return printJSON(w, taglist.Document{MapName: c.MapName(), MapID: c.MapID(), Tags: c.Tags()})
			}
			_, _ = fmt.Fprintf(w, "map %q (id %d), %d tags\n", c.MapName(), c.MapID(), c.Len())
			tw := newTable(w)
			_, _ = fmt.Fprintln(tw, "DATUM\tCLASS\tPATH")
			for _, t := range c.Tags() {
				_, _ = fmt.Fprintf(tw, "0x%08x\t%s\t%s\n", uint32(t.DatumIndex), t.Class, t.Path)
			}
			return tw.Flush()
		},
	}
}
