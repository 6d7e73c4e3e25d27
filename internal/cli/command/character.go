package command

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/unionhub-go/internal/cli/locale"
	"github.com/yndnr/unionhub-go/internal/cli/output"
	"github.com/yndnr/unionhub-go/internal/cli/router"
	"github.com/yndnr/unionhub-go/internal/cli/store"
)

func (st *state) characterCommand() *cli.Command {
	return &cli.Command{
		Name:    "character",
		Aliases: []string{"char"},
		Usage:   "Browse characters",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List characters",
				Flags: append(sortFlags("absolute_training_degree"),
					unionFilterFlag(),
					&cli.StringSliceFlag{
						Name:  "player",
						Usage: "Only this player (repeatable)",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Character name",
					},
					&cli.StringFlag{
						Name:  "class",
						Usage: "Class, see 'character filters'",
					},
					&cli.StringFlag{
						Name:  "element",
						Usage: "Element, see 'character filters'",
					},
					&cli.StringFlag{
						Name:  "weapon-type",
						Usage: "Weapon type, see 'character filters'",
					},
					&cli.StringFlag{
						Name:  "burst",
						Usage: "Burst skill stage, see 'character filters'",
					},
				),
				Action: st.characterList,
			},
			{
				Name:   "filters",
				Usage:  "Show the values the list filters accept",
				Action: st.characterFilters,
			},
			{
				Name:      "show",
				Aliases:   []string{"get"},
				Usage:     "Show one character with its equipment",
				ArgsUsage: "ID",
				Action:    st.characterShow,
			},
			{
				Name:   "unique",
				Usage:  "List every distinct character",
				Action: st.characterUnique,
			},
			{
				Name:  "is-c",
				Usage: "Show or change which characters count as C",
				Subcommands: []*cli.Command{
					{
						Name:    "list",
						Aliases: []string{"ls"},
						Usage:   "Show the is-C flags",
						Action:  st.characterIsCList,
					},
					{
						Name:  "set",
						Usage: "Turn the is-C flag on or off",
						Flags: []cli.Flag{
							&cli.Int64SliceFlag{
								Name:  "on",
								Usage: "Character id to flag (repeatable)",
							},
							&cli.Int64SliceFlag{
								Name:  "off",
								Usage: "Character id to unflag (repeatable)",
							},
						},
						Action: st.characterIsCSet,
					},
				},
			},
			{
				Name:  "analysis",
				Usage: "Sum weighted training by element for each player",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "coef",
						Usage:    "Character weight as ID=WEIGHT (repeatable)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "training",
						Usage: "Training degree: absolute, relative or general_relative",
						Value: "relative",
					},
					unionFilterFlag(),
				},
				Action: st.characterAnalysis,
			},
		},
	}
}

func (st *state) characterList(c *cli.Context) error {
	q := url.Values{
		queryPlayerName:    {strings.Join(c.StringSlice("player"), ",")},
		queryUnionIDs:      {store.JoinIDs(c.Int64Slice("union-id"))},
		queryCharacterName: {c.String("name")},
		queryClass:         {c.String("class")},
		queryElement:       {c.String("element")},
		queryWeaponType:    {c.String("weapon-type")},
		queryUseBurstSkill: {c.String("burst")},
		querySortBy:        {c.String("sort-by")},
		queryOrder:         {c.String("order")},
	}
	return st.rt.Router.Push(c.Context, routeURL(router.PathCharacters, q))
}

func (st *state) characterFilters(c *cli.Context) error {
	rt := st.rt
	if err := rt.guard(c.Context, router.PathCharacters); err != nil {
		return err
	}
	opts, err := rt.Characters.FilterOptions(c.Context)
	if err != nil {
		return err
	}
	return rt.Printer.Print(opts)
}

func (st *state) characterShow(c *cli.Context) error {
	rt := st.rt
	a, err := positional(c, 1)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(a[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid character id %q", a[0])
	}
	if err := rt.guard(c.Context, router.PathCharacters); err != nil {
		return err
	}

	d, err := rt.Characters.Get(c.Context, id)
	if err != nil {
		return err
	}
	if rt.Printer.Format() != output.FormatTable {
		return rt.Printer.Print(d)
	}
	if err := rt.Printer.Print(newDetailView(d)); err != nil {
		return err
	}
	if len(d.Equipments) == 0 {
		return nil
	}
	fmt.Fprintln(rt.Printer.Out)
	return rt.Printer.Print(d.Equipments)
}

func (st *state) characterUnique(c *cli.Context) error {
	rt := st.rt
	if err := rt.guard(c.Context, router.PathCharacters); err != nil {
		return err
	}
	chars, err := rt.Characters.Unique(c.Context)
	if err != nil {
		return err
	}
	return rt.render(len(chars), chars)
}

func (st *state) characterIsCList(c *cli.Context) error {
	rt := st.rt
	if err := rt.guard(c.Context, router.PathCharacters); err != nil {
		return err
	}
	settings, err := rt.Characters.IsCSettings(c.Context)
	if err != nil {
		return err
	}
	if rt.Printer.Format() != output.FormatTable {
		return rt.Printer.Print(settings)
	}
	return rt.render(len(settings), isCRows(settings))
}

func (st *state) characterIsCSet(c *cli.Context) error {
	rt := st.rt
	settings := map[int64]bool{}
	for _, id := range c.Int64Slice("on") {
		settings[id] = true
	}
	for _, id := range c.Int64Slice("off") {
		if settings[id] {
			return fmt.Errorf("character %d is both --on and --off", id)
		}
		settings[id] = false
	}
	if len(settings) == 0 {
		return fmt.Errorf("usage: %s --on ID | --off ID", c.Command.HelpName)
	}
	if err := rt.guard(c.Context, router.PathCharacters); err != nil {
		return err
	}

	if err := rt.Characters.SetIsC(c.Context, settings); err != nil {
		return err
	}
	rt.Say(locale.MsgIsCSaved, len(settings))
	return nil
}

func (st *state) characterAnalysis(c *cli.Context) error {
	rt := st.rt
	coeffs, err := parseCoefficients(c.StringSlice("coef"))
	if err != nil {
		return err
	}
	training := c.String("training")
	if !strings.HasSuffix(training, "_training_degree") {
		training += "_training_degree"
	}
	if err := rt.guard(c.Context, router.PathCharacters); err != nil {
		return err
	}

	res, err := rt.Characters.ElementAnalysis(c.Context, store.ElementAnalysisRequest{
		UnionIDs:     c.Int64Slice("union-id"),
		Coefficients: coeffs,
		TrainingType: training,
	})
	if err != nil {
		return err
	}
	if rt.Printer.Format() != output.FormatTable {
		return rt.Printer.Print(res)
	}
	return rt.render(len(res), elementTable(res))
}

// parseCoefficients reads ID=WEIGHT pairs.
func parseCoefficients(pairs []string) (map[int64]float64, error) {
	out := make(map[int64]float64, len(pairs))
	for _, p := range pairs {
		idText, weightText, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid coefficient %q, want ID=WEIGHT", p)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idText), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid character id in %q", p)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(weightText), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight in %q", p)
		}
		out[id] = w
	}
	return out, nil
}

type isCRow struct {
	CharacterID int64 `table:"CHARACTER_ID"`
	IsC         bool  `table:"IS_C"`
}

func isCRows(settings map[int64]bool) []isCRow {
	rows := make([]isCRow, 0, len(settings))
	for id, v := range settings {
		rows = append(rows, isCRow{CharacterID: id, IsC: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CharacterID < rows[j].CharacterID })
	return rows
}

// elementTable lays out one row per player and one column per element.
func elementTable(res []store.ElementTraining) *output.Table {
	t := &output.Table{Headers: []string{"PLAYER"}}
	for _, e := range store.Elements {
		t.Headers = append(t.Headers, strings.ToUpper(e))
	}
	for _, r := range res {
		row := []string{r.PlayerName}
		for _, e := range store.Elements {
			row = append(row, strconv.FormatFloat(r.Elements[e], 'f', 2, 64))
		}
		t.AddRow(row...)
	}
	return t
}
