package command

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/unionhub-go/internal/cli/locale"
	"github.com/yndnr/unionhub-go/internal/cli/output"
	"github.com/yndnr/unionhub-go/internal/cli/router"
	"github.com/yndnr/unionhub-go/internal/cli/store"
)

func sortFlags(defaultSort string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "sort-by",
			Usage: "Sort column (server default " + defaultSort + ")",
		},
		&cli.StringFlag{
			Name:  "order",
			Usage: "Sort order: asc or desc",
		},
	}
}

func unionFilterFlag() cli.Flag {
	return &cli.Int64SliceFlag{
		Name:  "union-id",
		Usage: "Only this union (repeatable)",
	}
}

func (st *state) playerCommand() *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "Browse, import and delete players",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List players",
				Flags:   append(sortFlags("name"), unionFilterFlag()),
				Action:  st.playerList,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a player and their characters",
				ArgsUsage: "NAME",
				Action:    st.playerDelete,
			},
			{
				Name:      "upload",
				Usage:     "Import player data files",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "union-id",
						Usage: "Assign the imported players to this union",
					},
				},
				Action: st.playerUpload,
			},
		},
	}
}

func (st *state) playerList(c *cli.Context) error {
	q := url.Values{
		queryUnionIDs: {store.JoinIDs(c.Int64Slice("union-id"))},
		querySortBy:   {c.String("sort-by")},
		queryOrder:    {c.String("order")},
	}
	return st.rt.Router.Push(c.Context, routeURL(router.PathPlayers, q))
}

func (st *state) playerDelete(c *cli.Context) error {
	rt := st.rt
	a, err := positional(c, 1)
	if err != nil {
		return err
	}
	if err := rt.guard(c.Context, router.PathPlayers); err != nil {
		return err
	}

	if err := rt.Players.Delete(c.Context, a[0]); err != nil {
		return err
	}
	rt.Say(locale.MsgPlayerDeleted, a[0])
	return nil
}

func (st *state) playerUpload(c *cli.Context) (err error) {
	rt := st.rt
	if c.NArg() == 0 {
		return fmt.Errorf("usage: %s %s", c.Command.HelpName, c.Command.ArgsUsage)
	}
	if err := rt.guard(c.Context, router.PathPlayers); err != nil {
		return err
	}

	req := store.UploadRequest{}
	if c.IsSet("union-id") {
		id := c.Int64("union-id")
		req.UnionID = &id
	}
	for _, path := range c.Args().Slice() {
		f, openErr := os.Open(path)
		if openErr != nil {
			return fmt.Errorf("open upload file: %w", openErr)
		}
		defer func() { err = errors.Join(err, f.Close()) }()
		req.Files = append(req.Files, store.UploadFile{Name: filepath.Base(path), Content: f})
	}

	var bar *output.ProgressBar
	if rt.Printer.Format() == output.FormatTable {
		bar = output.NewProgressBar(rt.Printer.Err, "Uploading")
		req.Progress = bar.Update
	}

	res, err := rt.Players.Upload(c.Context, req)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	return rt.Result(res, rt.T(locale.MsgUploadSummary, res.SuccessfulFiles, res.FailedFiles))
}
