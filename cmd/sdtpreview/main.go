// Command sdtpreview renders SDT planes as PNG images or animated
// decay GIFs.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mrjoshuak/go-sdt/render"
	"github.com/mrjoshuak/go-sdt/sdt"
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

	app.Name = "sdtpreview"
	app.Usage = "render Becker & Hickl SDT files as preview images"
	app.Version = "1.0.0"

	app.Commands = []*cli.Command{
		{
			Name:      "png",
			Usage:     "Render a single plane as a 16-bit grayscale PNG",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "plane",
					Aliases: []string{"p"},
					Usage:   "logical plane number",
				},
				&cli.BoolFlag{
					Name:    "intensity",
					Aliases: []string{"i"},
					Usage:   "sum time bins into one intensity plane per channel",
				},
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Value:   "preview.png",
					Usage:   "output path",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				var opts []sdt.Option
				if c.Bool("intensity") {
					opts = append(opts, sdt.WithIntensity())
				}
				f, err := sdt.OpenFile(c.Args().First(), opts...)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				out, err := os.Create(c.String("out"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				if err := render.WritePNG(out, f, c.Int("plane")); err != nil {
					out.Close()
					return cli.NewExitError(err, 1)
				}
				return out.Close()
			},
		},
		{
			Name:      "gif",
			Usage:     "Render one channel's decay as an animated GIF",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "channel",
					Aliases: []string{"c"},
					Usage:   "detector channel",
				},
				&cli.IntFlag{
					Name:    "delay",
					Aliases: []string{"d"},
					Value:   4,
					Usage:   "per-frame delay in hundredths of a second",
				},
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Value:   "decay.gif",
					Usage:   "output path",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := sdt.OpenFile(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				out, err := os.Create(c.String("out"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				if err := render.DecayGIF(out, f, c.Int("channel"), c.Int("delay")); err != nil {
					out.Close()
					return cli.NewExitError(err, 1)
				}
				return out.Close()
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
