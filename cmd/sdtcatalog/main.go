// Command sdtcatalog indexes the header metadata of SDT file trees
// into a SQLite database.
package main

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

const defaultDB = "sdtcatalog.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "sdtcatalog"
	app.Usage = "index Becker & Hickl SDT files into a SQLite catalog"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SDTCATALOG_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "scan",
			Usage:     "Scan a directory tree and index every SDT file",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := log.New(io.Discard, "", 0)
				if c.Bool("verbose") {
					logger.SetOutput(os.Stderr)
				}

				cat, err := openCatalog(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer cat.Close()

				if err := cat.Scan(c.Args().First(), logger); err != nil {
					return cli.NewExitError(err, 1)
				}
				return nil
			},
		},
		{
			Name:  "list",
			Usage: "List every indexed file",
			Action: func(c *cli.Context) error {
				cat, err := openCatalog(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer cat.Close()

				if err := cat.List(os.Stdout); err != nil {
					return cli.NewExitError(err, 1)
				}
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
