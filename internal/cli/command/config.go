package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/unionhub-go/internal/cli/config"
	"github.com/yndnr/unionhub-go/internal/cli/output"
	"github.com/yndnr/unionhub-go/internal/infra/buildinfo"
)

func (st *state) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: st.configShow,
			},
			{
				Name:   "validate",
				Usage:  "Validate the effective configuration",
				Action: st.configValidate,
			},
		},
	}
}

func (st *state) versionCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show build information",
		Action: st.version,
	}
}

func (st *state) configSource() string {
	if st.res.File != "" {
		return st.res.File
	}
	return "defaults (no file at " + st.res.WatchPath + ")"
}

func (st *state) configShow(c *cli.Context) error {
	cfg := config.Sanitize(st.res.Config)
	f := st.formatter()
	if _, ok := f.(*output.TableFormatter); ok {
		fmt.Fprintf(st.out, "# source: %s\n", st.configSource())
		f = &output.YAMLFormatter{}
	}
	return f.Format(st.out, cfg)
}

func (st *state) configValidate(c *cli.Context) error {
	if err := config.Verify(st.res.Config); err != nil {
		return fmt.Errorf("invalid configuration (%s):\n%w", st.configSource(), err)
	}
	fmt.Fprintf(st.out, "configuration is valid (%s)\n", st.configSource())
	return nil
}

func (st *state) version(c *cli.Context) error {
	return st.formatter().Format(st.out, buildinfo.Get())
}
