package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/unionhub-go/internal/cli/locale"
	"github.com/yndnr/unionhub-go/internal/cli/router"
)

func (st *state) unionCommand() *cli.Command {
	return &cli.Command{
		Name:  "union",
		Usage: "Manage unions",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List unions",
				Action:  st.unionList,
			},
			{
				Name:      "create",
				Usage:     "Create a union",
				ArgsUsage: "NAME",
				Action:    st.unionCreate,
			},
			{
				Name:      "update",
				Aliases:   []string{"rename"},
				Usage:     "Rename a union",
				ArgsUsage: "ID NAME",
				Action:    st.unionUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a union without players",
				ArgsUsage: "ID",
				Action:    st.unionDelete,
			},
		},
	}
}

// guard resolves path so that a signed-out user is sent to login before a
// mutation is attempted.
func (rt *Runtime) guard(ctx context.Context, path string) error {
	_, err := rt.Router.Resolve(ctx, path)
	return err
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid union id %q", s)
	}
	return id, nil
}

func (st *state) unionList(c *cli.Context) error {
	return st.rt.Router.Push(c.Context, router.PathUnions)
}

func (st *state) unionCreate(c *cli.Context) error {
	rt := st.rt
	a, err := positional(c, 1)
	if err != nil {
		return err
	}
	if err := rt.guard(c.Context, router.PathUnions); err != nil {
		return err
	}

	u, err := rt.Unions.Create(c.Context, a[0])
	if err != nil {
		return err
	}
	return rt.Result(u, rt.T(locale.MsgUnionCreated, u.Name, u.ID))
}

func (st *state) unionUpdate(c *cli.Context) error {
	rt := st.rt
	a, err := positional(c, 2)
	if err != nil {
		return err
	}
	id, err := parseID(a[0])
	if err != nil {
		return err
	}
	if err := rt.guard(c.Context, router.PathUnions); err != nil {
		return err
	}

	u, err := rt.Unions.Update(c.Context, id, a[1])
	if err != nil {
		return err
	}
	return rt.Result(u, rt.T(locale.MsgUnionUpdated, u.ID, u.Name))
}

func (st *state) unionDelete(c *cli.Context) error {
	rt := st.rt
	a, err := positional(c, 1)
	if err != nil {
		return err
	}
	id, err := parseID(a[0])
	if err != nil {
		return err
	}
	if err := rt.guard(c.Context, router.PathUnions); err != nil {
		return err
	}

	if err := rt.Unions.Delete(c.Context, id); err != nil {
		return err
	}
	rt.Say(locale.MsgUnionDeleted, id)
	return nil
}
