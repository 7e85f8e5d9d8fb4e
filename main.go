package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"PackTools/config"
	"PackTools/fvt"
)

// Tools for the KCAP packs of the Selene engine (Densha de D series)

func main() {
	app := &cli.App{
		Name:      "packtools",
		Usage:     "unpack and repack Selene engine .Pack files",
		ArgsUsage: "[packfile]",
		Description: "Without a command the GUI is started, optionally with a pack loaded.\n" +
			"The default password unlocks the Densha de D packs.",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:  "config",
				Usage: "YAML file with default settings",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print every entry",
			},
		},
		Commands: []*cli.Command{
			&cmdList,
			&cmdUnpack,
			&cmdPack,
			&cmdExtract,
			&cmdFvt,
			&cmdGUI,
		},
		Action: runGUI,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var passFlag = &cli.StringFlag{
	Name:    "pass",
	Aliases: []string{"p"},
	Usage:   "password of the pack (default from config, \"PackPass\" otherwise)",
}

var outputFlag = &cli.PathFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Usage:   "output path",
}

var cmdList = cli.Command{
	Name:      "list",
	Usage:     "list the entries of a pack",
	ArgsUsage: "<packfile>",
	Flags:     []cli.Flag{passFlag},
	Action: func(c *cli.Context) error {
		input, err := requireArgs(c, 1)
		if err != nil {
			return err
		}
		cfg, err := settings(c)
		if err != nil {
			return err
		}
		return listPack(input[0], cfg.Password)
	},
}

var cmdUnpack = cli.Command{
	Name:      "unpack",
	Usage:     "unpack a pack to a directory",
	ArgsUsage: "<packfile>",
	Flags: []cli.Flag{
		passFlag,
		&cli.PathFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output directory (default: \"[INPUT_DIR]/[INPUT_NAME]\")",
		},
		&cli.StringFlag{
			Name:  "pattern",
			Usage: "only extract entries whose name matches this regular expression",
		},
	},
	Action: func(c *cli.Context) error {
		input, err := requireArgs(c, 1)
		if err != nil {
			return err
		}
		cfg, err := settings(c)
		if err != nil {
			return err
		}
		output := c.Path("output")
		if output == "" {
			output = defaultUnpackDir(input[0])
		}
		return unpackPack(input[0], output, cfg.Password, c.String("pattern"), cfg.Verbose)
	},
}

var cmdPack = cli.Command{
	Name:      "pack",
	Usage:     "pack every file inside a directory into a pack",
	ArgsUsage: "<directory>",
	Flags: []cli.Flag{
		passFlag,
		&cli.PathFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output file (default: \"[INPUT_PARENT]/[INPUT_NAME].Pack\")",
		},
		&cli.BoolFlag{
			Name:  "plain",
			Usage: "store the payloads without encryption",
		},
	},
	Action: func(c *cli.Context) error {
		input, err := requireArgs(c, 1)
		if err != nil {
			return err
		}
		cfg, err := settings(c)
		if err != nil {
			return err
		}
		output := c.Path("output")
		if output == "" {
			output = defaultPackPath(input[0])
		}
		password := cfg.Password
		if c.Bool("plain") {
			password = ""
		}
		return packDirectory(input[0], output, password, cfg.Separator, cfg.Verbose)
	},
}

var cmdExtract = cli.Command{
	Name:      "extract",
	Usage:     "extract a single entry",
	ArgsUsage: "<packfile> <index> <output>",
	Flags:     []cli.Flag{passFlag},
	Action: func(c *cli.Context) error {
		args, err := requireArgs(c, 3)
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index '%s': must be a number", args[1])
		}
		cfg, err := settings(c)
		if err != nil {
			return err
		}
		return extractSingleFile(args[0], index, args[2], cfg.Password)
	},
}

var cmdFvt = cli.Command{
	Name:  "fvt",
	Usage: "convert .FVT subtitle records",
	Subcommands: []*cli.Command{
		{
			Name:      "decode",
			Usage:     "decode an .FVT file into a JSON or YAML document",
			ArgsUsage: "<input>",
			Flags: []cli.Flag{
				outputFlag,
				&cli.StringFlag{
					Name:  "format",
					Usage: "document format, json or yaml (default from config)",
				},
			},
			Action: func(c *cli.Context) error {
				input, err := requireArgs(c, 1)
				if err != nil {
					return err
				}
				cfg, err := settings(c)
				if err != nil {
					return err
				}
				if f := c.String("format"); f != "" {
					cfg.RecordFormat = fvt.Format(f)
					if err := cfg.Validate(); err != nil {
						return err
					}
				}
				output := c.Path("output")
				if output == "" {
					output = swapExt(input[0], "."+string(cfg.RecordFormat))
				}
				return fvtDecodeFile(input[0], output, cfg.RecordFormat)
			},
		},
		{
			Name:      "encode",
			Usage:     "encode a JSON or YAML document into an .FVT file",
			ArgsUsage: "<input>",
			Flags:     []cli.Flag{outputFlag},
			Action: func(c *cli.Context) error {
				input, err := requireArgs(c, 1)
				if err != nil {
					return err
				}
				output := c.Path("output")
				if output == "" {
					output = swapExt(input[0], ".FVT")
				}
				return fvtEncodeFile(input[0], output)
			},
		},
	},
}

var cmdGUI = cli.Command{
	Name:      "gui",
	Usage:     "browse packs in a window",
	ArgsUsage: "[packfile]",
	Action:    runGUI,
}

func runGUI(c *cli.Context) error {
	if c.NArg() > 1 {
		return cli.ShowAppHelp(c)
	}
	cfg, err := settings(c)
	if err != nil {
		return err
	}
	NewGUI(c.Args().First(), cfg).Run()
	return nil
}

// requireArgs returns exactly n positional arguments
func requireArgs(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		cli.ShowSubcommandHelp(c)
		return nil, fmt.Errorf("%s: expected %d argument(s), got %d", c.Command.Name, n, c.NArg())
	}
	return c.Args().Slice(), nil
}

// settings loads the config file, if any, and applies the command line flags
func settings(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.Path("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet("pass") {
		cfg.Password = c.String("pass")
	}
	if c.Bool("verbose") {
		cfg.Verbose = true
	}
	return cfg, nil
}
