package main

import (
	"errors"
	"fmt"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/colorcode"
	"github.com/bodgit/colorcode/debug"
	"github.com/bodgit/colorcode/detector"
	"github.com/bodgit/colorcode/reference"
	"github.com/bodgit/colorcode/render"
	"github.com/urfave/cli/v2"
)

const defaultDB = "colorcode.db"

var errNoMatch = errors.New("no attempt matched the reference")

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func loadSession(c *cli.Context) (*colorcode.Session, error) {
	lookup := reference.SquareDimension
	if c.Bool("strict") {
		lookup = reference.QRDimension
	}
	ref, err := reference.Load(c.String("reference"), lookup)
	if err != nil {
		return nil, err
	}
	return colorcode.NewSession(ref)
}

func newRunner(c *cli.Context, db *colorcode.ResultsDB, logger *log.Logger) (*colorcode.Runner, error) {
	session, err := loadSession(c)
	if err != nil {
		return nil, err
	}

	threshold := c.Int("threshold")
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("threshold %d out of range", threshold)
	}

	runner := colorcode.NewRunner(db, logger, session, detector.Default())
	runner.Threshold = uint8(threshold)
	runner.Workers = c.Int("workers")

	if dir := c.String("debug"); dir != "" {
		runner.Observe = func(file string) colorcode.Observer {
			base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			d, err := debug.New(filepath.Join(dir, base), logger)
			if err != nil {
				logger.Printf("Debug snapshots for \"%s\" disabled: %v\n", file, err)
				return colorcode.LogObserver{Logger: logger}
			}
			return d
		}
	}

	return runner, nil
}

func printSummary(summary *colorcode.Summary) {
	for _, a := range summary.Attempts {
		fmt.Println(a)
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "colorcode"
	app.Usage = "Colored matrix code decode benchmark"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"COLORCODE_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to results database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	referenceFlag := &cli.StringFlag{
		Name:     "reference",
		Aliases:  []string{"r"},
		EnvVars:  []string{"COLORCODE_REFERENCE"},
		Usage:    "reference pattern `FILE`, optionally .gz or .zst compressed",
		Required: true,
	}
	strictFlag := &cli.BoolFlag{
		Name:  "strict",
		Usage: "only accept QR code dimensions for the reference",
	}
	thresholdFlag := &cli.IntFlag{
		Name:  "threshold",
		Value: 128,
		Usage: "channel values below this are black",
	}
	debugFlag := &cli.StringFlag{
		Name:  "debug",
		Usage: "write snapshots of each stage under `DIRECTORY`",
	}

	app.Commands = []*cli.Command{
		{
			Name:      "decode",
			Usage:     "Decode a captured image and score it against a reference",
			ArgsUsage: "IMAGE",
			Flags:     []cli.Flag{referenceFlag, strictFlag, thresholdFlag, debugFlag},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				db, err := colorcode.NewResultsDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				runner, err := newRunner(c, db, logger)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				summary, err := runner.DecodeFile(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				printSummary(summary)

				if !summary.Passed() {
					return cli.NewExitError(errNoMatch, 2)
				}

				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Decode every image under a directory",
			ArgsUsage: "DIRECTORY",
			Flags: []cli.Flag{referenceFlag, strictFlag, thresholdFlag, debugFlag,
				&cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "number of images decoded concurrently",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				db, err := colorcode.NewResultsDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				runner, err := newRunner(c, db, logger)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := runner.Scan(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "reference",
			Usage:     "Show the contents of a reference file",
			ArgsUsage: "FILE",
			Flags:     []cli.Flag{strictFlag},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				lookup := reference.SquareDimension
				if c.Bool("strict") {
					lookup = reference.QRDimension
				}

				ref, err := reference.Load(c.Args().First(), lookup)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Printf("Reference color count: %d\n", ref.ColorCount())
				fmt.Printf("Reference histogram: %v\n", ref.Histogram())
				fmt.Printf("Reference dimension: %dX%d\n", ref.Dimension(), ref.Dimension())

				return nil
			},
		},
		{
			Name:      "render",
			Usage:     "Generate a synthetic symbol and its reference",
			ArgsUsage: "IMAGE REFERENCE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "dimension",
					Value: 21,
					Usage: "modules along one side",
				},
				&cli.IntFlag{
					Name:  "scale",
					Value: 6,
					Usage: "pixels per module",
				},
				&cli.IntFlag{
					Name:  "quiet",
					Value: 4,
					Usage: "quiet zone width in modules",
				},
				&cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "random seed for the data modules",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				dim := c.Int("dimension")
				indices, err := render.Symbol(dim, c.Int64("seed"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				img, err := render.Image(indices, dim, c.Int("scale"), c.Int("quiet"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				f, err := os.Create(c.Args().Get(0))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				if err := png.Encode(f, img); err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := ioutil.WriteFile(c.Args().Get(1), []byte(render.Format(indices)), 0644); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "history",
			Usage: "List recorded decode runs",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "limit",
					Value: 20,
					Usage: "maximum number of runs to show",
				},
			},
			Action: func(c *cli.Context) error {
				db, err := colorcode.NewResultsDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				runs, err := db.History(c.Int("limit"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, run := range runs {
					passed := 0
					for _, a := range run.Attempts {
						if a.Passed {
							passed++
						}
					}
					fmt.Printf("%d\t%s\t%s\t%s\t%d/%d\n", run.ID, run.Created.Format("2006-01-02 15:04:05"), run.Image, run.Reference, passed, len(run.Attempts))
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
