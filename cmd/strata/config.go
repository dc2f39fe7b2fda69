package main

import (
	"github.com/fatih/color"
	"github.com/panbanda/strata/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the effective configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the configuration after defaults and the config file are merged",
				Action: runConfigShowCmd,
			},
			{
				Name:   "validate",
				Usage:  "Check the config file for errors",
				Action: runConfigValidateCmd,
			},
		},
	}
}

func runConfigShowCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format().Structured() {
		return formatter.Output(cfg)
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = formatter.Writer().Write(content)
	return err
}

func runConfigValidateCmd(c *cli.Context) error {
	_, source, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return err
	}
	if source == "" {
		color.Yellow("No config file found; using defaults")
		return nil
	}
	color.Green("%s is valid", source)
	return nil
}
