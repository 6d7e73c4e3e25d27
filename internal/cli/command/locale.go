package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/unionhub-go/internal/cli/locale"
)

func (st *state) localeCommand() *cli.Command {
	return &cli.Command{
		Name:  "locale",
		Usage: "Show or change the language",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the active language",
				Action: st.localeShow,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List supported languages",
				Action:  st.localeList,
			},
			{
				Name:      "set",
				Usage:     "Change the language",
				ArgsUsage: "CODE",
				Action:    st.localeSet,
			},
		},
	}
}

type localeEntry struct {
	Code    string `json:"code" yaml:"code" table:"CODE"`
	Current bool   `json:"current" yaml:"current" table:"CURRENT"`
}

func (st *state) localeShow(c *cli.Context) error {
	rt := st.rt
	return rt.Printer.Print(localeEntry{Code: rt.Locale.Current(), Current: true})
}

func (st *state) localeList(c *cli.Context) error {
	rt := st.rt
	current := rt.Locale.Current()
	codes := locale.Supported()
	entries := make([]localeEntry, len(codes))
	for i, code := range codes {
		entries[i] = localeEntry{Code: code, Current: code == current}
	}
	return rt.Printer.Print(entries)
}

func (st *state) localeSet(c *cli.Context) error {
	rt := st.rt
	a, err := positional(c, 1)
	if err != nil {
		return err
	}
	if err := rt.Locale.Set(c.Context, a[0]); err != nil {
		return err
	}
	rt.Say(locale.MsgLocaleSet, rt.Locale.Current())
	return nil
}
