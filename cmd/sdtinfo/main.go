// Command sdtinfo prints geometry and metadata of SDT files.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"

	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"

	"github.com/mrjoshuak/go-sdt/sdt"
	"github.com/mrjoshuak/go-sdt/sdtutil"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "sdtinfo"
	app.Usage = "print geometry and metadata of Becker & Hickl SDT files"
	app.Version = "1.0.0"
	app.ArgsUsage = "FILE..."

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log decode progress to stderr",
		},
		&cli.BoolFlag{
			Name:    "sorted",
			Aliases: []string{"s"},
			Usage:   "print metadata keys alphabetically instead of in file order",
		},
		&cli.BoolFlag{
			Name:  "setup",
			Usage: "also print the raw setup block parameters",
		},
	}

	app.Action = func(c *cli.Context) error {
		if c.NArg() < 1 {
			cli.ShowAppHelpAndExit(c, 1)
		}

		var opts []sdt.Option
		if c.Bool("verbose") {
			opts = append(opts, sdt.WithLogger(
				slog.New(slog.NewTextHandler(os.Stderr, nil))))
		}

		for _, path := range c.Args().Slice() {
			if err := printInfo(path, c.Bool("sorted"), c.Bool("setup"), opts); err != nil {
				return cli.NewExitError(err, 1)
			}
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func printInfo(path string, sorted, setup bool, opts []sdt.Option) error {
	info, err := sdtutil.GetFileInfo(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%d bytes)\n", info.Path, info.FileSize)
	fmt.Printf("  image:      %dx%d, %d channel(s), %d time bin(s), %d plane(s)\n",
		info.Width, info.Height, info.Channels, info.TimeBins, info.Planes)
	fmt.Printf("  time base:  %g ns (%g ps per bin)\n", info.TimeBaseNS, info.BinStepPS)
	if info.Module != "" {
		fmt.Printf("  module:     %s\n", info.Module)
	}
	if info.Acquired != "" {
		fmt.Printf("  acquired:   %s\n", info.Acquired)
	}

	f, err := sdt.OpenFile(path, opts...)
	if err != nil {
		return err
	}
	defer f.Close()

	meta := f.Metadata()
	keys := meta.Keys()
	if sorted {
		sort.Strings(keys)
	}
	for _, k := range keys {
		v, _ := meta.Get(k)
		fmt.Printf("  %-24s %v\n", k, v)
	}

	if setup {
		values := f.SetupValues()
		names := maps.Keys(values)
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  setup %-18s %s\n", name, values[name])
		}
	}
	return nil
}
