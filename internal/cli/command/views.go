package command

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/yndnr/unionhub-go/internal/cli/connection"
	"github.com/yndnr/unionhub-go/internal/cli/locale"
	"github.com/yndnr/unionhub-go/internal/cli/output"
	"github.com/yndnr/unionhub-go/internal/cli/router"
	"github.com/yndnr/unionhub-go/internal/cli/store"
)

// Route query keys. They match the API's query parameters.
const (
	queryUnionIDs      = "union_ids"
	queryPlayerName    = "player_name"
	queryCharacterName = "character_name"
	queryClass         = "class"
	queryElement       = "element"
	queryWeaponType    = "weapon_type"
	queryUseBurstSkill = "use_burst_skill"
	querySortBy        = "sort_by"
	queryOrder         = "order"
)

func (rt *Runtime) registerViews() {
	rt.Router.Handle(router.PathUnions, rt.unionsView)
	rt.Router.Handle(router.PathPlayers, rt.playersView)
	rt.Router.Handle(router.PathCharacters, rt.charactersView)
}

func (rt *Runtime) unionsView(ctx context.Context, _ router.Location) error {
	unions, err := rt.Unions.List(ctx)
	if err != nil {
		return err
	}
	return rt.render(len(unions), unions)
}

func (rt *Runtime) playersView(ctx context.Context, loc router.Location) error {
	ids, err := parseIDs(loc.Query.Get(queryUnionIDs))
	if err != nil {
		return err
	}
	players, err := rt.Players.List(ctx, store.PlayerQuery{
		UnionIDs: ids,
		SortBy:   loc.Query.Get(querySortBy),
		Order:    loc.Query.Get(queryOrder),
	})
	if err != nil {
		return err
	}
	return rt.render(len(players), players)
}

func (rt *Runtime) charactersView(ctx context.Context, loc router.Location) error {
	q := loc.Query
	ids, err := parseIDs(q.Get(queryUnionIDs))
	if err != nil {
		return err
	}
	chars, err := rt.Characters.List(ctx, store.CharacterQuery{
		PlayerNames:   splitList(q.Get(queryPlayerName)),
		UnionIDs:      ids,
		CharacterName: q.Get(queryCharacterName),
		Class:         q.Get(queryClass),
		Element:       q.Get(queryElement),
		WeaponType:    q.Get(queryWeaponType),
		UseBurstSkill: q.Get(queryUseBurstSkill),
		SortBy:        q.Get(querySortBy),
		Order:         q.Get(queryOrder),
	})
	if err != nil {
		return err
	}
	if rt.Printer.Format() != output.FormatTable {
		return rt.render(len(chars), chars)
	}
	rows := make([]characterRow, len(chars))
	for i, ch := range chars {
		rows[i] = newCharacterRow(ch)
	}
	return rt.render(len(rows), rows)
}

// characterRow is a character laid out for the table format.
type characterRow struct {
	ID                      int64   `table:"ID,wide"`
	Player                  string  `table:"PLAYER"`
	Union                   string  `table:"UNION"`
	CharacterID             int64   `table:"CHARACTER_ID,wide"`
	Name                    string  `table:"CHARACTER"`
	Element                 string  `table:"ELEMENT"`
	Grade                   string  `table:"GRADE"`
	Item                    string  `table:"ITEM,wide"`
	Skills                  string  `table:"SKILLS,wide"`
	Atk                     string  `table:"ATK_10K,wide"`
	AbsoluteTraining        float64 `table:"ABS_TRAINING"`
	RelativeTraining        float64 `table:"REL_TRAINING"`
	GeneralRelativeTraining float64 `table:"GENERAL_REL_TRAINING,wide"`
	Class                   string  `table:"CLASS"`
	Corporation             string  `table:"CORPORATION,wide"`
	Weapon                  string  `table:"WEAPON"`
	Rare                    string  `table:"RARE,wide"`
	Burst                   string  `table:"BURST"`
	IsC                     bool    `table:"C,wide"`
}

func newCharacterRow(c store.Character) characterRow {
	element := c.Element
	if c.ElementFromUser != "" {
		element = c.ElementFromUser
	}
	return characterRow{
		ID:                      c.ID,
		Player:                  c.PlayerName,
		Union:                   c.UnionName,
		CharacterID:             c.CharacterID,
		Name:                    c.NameCN,
		Element:                 element,
		Grade:                   c.Grade(),
		Item:                    c.Item(),
		Skills:                  skills(c.Skill1Level, c.Skill2Level, c.SkillBurstLevel),
		Atk:                     store.FormatKilo(c.TotalStatAtk),
		AbsoluteTraining:        c.AbsoluteTrainingDegree,
		RelativeTraining:        c.RelativeTrainingDegree,
		GeneralRelativeTraining: c.GeneralRelativeTrainingDegree,
		Class:                   c.Class,
		Corporation:             c.Corporation,
		Weapon:                  c.WeaponType,
		Rare:                    c.OriginalRare,
		Burst:                   c.UseBurstSkill,
		IsC:                     c.IsC,
	}
}

// detailView is a character detail laid out as a field/value table.
type detailView struct {
	ID                      int64   `table:"ID"`
	Player                  string  `table:"PLAYER"`
	CharacterID             int64   `table:"CHARACTER_ID"`
	Name                    string  `table:"CHARACTER"`
	Element                 string  `table:"ELEMENT"`
	Grade                   string  `table:"GRADE"`
	Item                    string  `table:"ITEM"`
	Skills                  string  `table:"SKILLS"`
	Atk                     string  `table:"ATK_10K"`
	ElementDmg              float64 `table:"ELEMENT_DMG"`
	Ammo                    float64 `table:"AMMO"`
	Superiority             float64 `table:"SUPERIORITY,wide"`
	AbsoluteTraining        float64 `table:"ABS_TRAINING"`
	RelativeTraining        float64 `table:"REL_TRAINING"`
	GeneralRelativeTraining float64 `table:"GENERAL_REL_TRAINING"`
	Breakthrough            float64 `table:"BREAKTHROUGH,wide"`
}

func newDetailView(d store.CharacterDetail) detailView {
	element := d.Element
	if d.ElementFromUser != "" {
		element = d.ElementFromUser
	}
	return detailView{
		ID:                      d.ID,
		Player:                  d.PlayerName,
		CharacterID:             d.CharacterID,
		Name:                    d.NameCN,
		Element:                 element,
		Grade:                   d.Grade(),
		Item:                    d.Item(),
		Skills:                  skills(d.Skill1Level, d.Skill2Level, d.SkillBurstLevel),
		Atk:                     store.FormatKilo(d.TotalStatAtk),
		ElementDmg:              d.TotalIncElementDmg,
		Ammo:                    d.TotalStatAmmoLoad,
		Superiority:             d.TotalSuperiority,
		AbsoluteTraining:        d.AbsoluteTrainingDegree,
		RelativeTraining:        d.RelativeTrainingDegree,
		GeneralRelativeTraining: d.GeneralRelativeTrainingDegree,
		Breakthrough:            d.BreakthroughCoefficient,
	}
}

func skills(s1, s2, burst int) string {
	return strconv.Itoa(s1) + "/" + strconv.Itoa(s2) + "/" + strconv.Itoa(burst)
}

// render prints a list, or a status line for an empty list in table format.
func (rt *Runtime) render(n int, data any) error {
	if n == 0 && rt.Printer.Format() == output.FormatTable {
		rt.Say(locale.MsgNoResults)
		return nil
	}
	return rt.Printer.Print(data)
}

// routeURL builds a route path with the non-empty values of q.
func routeURL(path string, q url.Values) string {
	for k, v := range q {
		if len(v) == 0 || v[0] == "" {
			delete(q, k)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func parseIDs(s string) ([]int64, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, connection.NewSetupError("invalid union id "+strconv.Quote(p), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
