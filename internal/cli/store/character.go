package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/yndnr/unionhub-go/internal/cli/connection"
	"github.com/yndnr/unionhub-go/internal/telemetry/logger"
)

// Character endpoints.
const (
	CharactersPath       = "/characters/"
	UniqueCharactersPath = "/characters/all-unique"
	FilterOptionsPath    = "/filter-options"
	IsCSettingsPath      = "/settings/is-c"
	ElementAnalysisPath  = "/element-training-analysis/"
)

// Training degrees an element analysis can weigh.
const (
	TrainingAbsolute        = "absolute_training_degree"
	TrainingRelative        = "relative_training_degree"
	TrainingGeneralRelative = "general_relative_training_degree"
)

// Elements reported by the element analysis.
var Elements = []string{"Fire", "Water", "Wind", "Electronic", "Iron"}

var (
	errBadCharacterID  = errors.New("character id must be positive")
	errNoCoefficients  = errors.New("no character coefficients")
	errBadTrainingType = errors.New("unknown training type")
	errNoIsCSettings   = errors.New("no settings")
)

// Character is one character row of a player. Only the is-C flag is
// changed by the client.
type Character struct {
	ID                            int64   `json:"id" yaml:"id"`
	PlayerName                    string  `json:"player_name" yaml:"player_name"`
	UnionID                       *int64  `json:"union_id" yaml:"union_id"`
	UnionName                     string  `json:"union_name" yaml:"union_name"`
	CharacterID                   int64   `json:"character_id" yaml:"character_id"`
	NameCN                        string  `json:"name_cn" yaml:"name_cn"`
	Element                       string  `json:"element" yaml:"element"`
	ElementFromUser               string  `json:"element_from_user" yaml:"element_from_user"`
	Skill1Level                   int     `json:"skill1_level" yaml:"skill1_level"`
	Skill2Level                   int     `json:"skill2_level" yaml:"skill2_level"`
	SkillBurstLevel               int     `json:"skill_burst_level" yaml:"skill_burst_level"`
	LimitBreakGrade               int     `json:"limit_break_grade" yaml:"limit_break_grade"`
	Core                          int     `json:"core" yaml:"core"`
	ItemLevel                     int     `json:"item_level" yaml:"item_level"`
	ItemRare                      string  `json:"item_rare" yaml:"item_rare"`
	TotalStatAtk                  float64 `json:"total_stat_atk" yaml:"total_stat_atk"`
	TotalIncElementDmg            float64 `json:"total_inc_element_dmg" yaml:"total_inc_element_dmg"`
	TotalStatAmmoLoad             float64 `json:"total_stat_ammo_load" yaml:"total_stat_ammo_load"`
	TotalSuperiority              float64 `json:"total_superiority" yaml:"total_superiority"`
	AbsoluteTrainingDegree        float64 `json:"absolute_training_degree" yaml:"absolute_training_degree"`
	RelativeTrainingDegree        float64 `json:"relative_training_degree" yaml:"relative_training_degree"`
	GeneralRelativeTrainingDegree float64 `json:"general_relative_training_degree" yaml:"general_relative_training_degree"`
	Class                         string  `json:"class_" yaml:"class"`
	Corporation                   string  `json:"corporation" yaml:"corporation"`
	WeaponType                    string  `json:"weapon_type" yaml:"weapon_type"`
	OriginalRare                  string  `json:"original_rare" yaml:"original_rare"`
	UseBurstSkill                 string  `json:"use_burst_skill" yaml:"use_burst_skill"`
	IsC                           bool    `json:"is_C" yaml:"is_c"`
	BreakthroughCoefficient       float64 `json:"breakthrough_coefficient" yaml:"breakthrough_coefficient"`
}

// Grade renders the limit break grade as stars and the core level.
func (c Character) Grade() string { return FormatGradeAndCore(c.LimitBreakGrade, c.Core) }

// Item renders the favorite item as rarity-level.
func (c Character) Item() string { return FormatItem(c.ItemRare, c.ItemLevel) }

// Equipment is one equipment slot of a character.
type Equipment struct {
	Slot          int     `json:"equipment_slot" yaml:"equipment_slot" table:"SLOT"`
	FunctionType  string  `json:"function_type" yaml:"function_type" table:"FUNCTION"`
	FunctionValue float64 `json:"function_value" yaml:"function_value" table:"VALUE"`
	Level         int     `json:"level" yaml:"level" table:"LEVEL"`
}

// CharacterDetail is a single character with its equipment.
type CharacterDetail struct {
	ID                            int64       `json:"id" yaml:"id"`
	PlayerName                    string      `json:"player_name" yaml:"player_name"`
	CharacterID                   int64       `json:"character_id" yaml:"character_id"`
	NameCN                        string      `json:"name_cn" yaml:"name_cn"`
	Element                       string      `json:"element" yaml:"element"`
	ElementFromUser               string      `json:"element_from_user" yaml:"element_from_user"`
	Skill1Level                   int         `json:"skill1_level" yaml:"skill1_level"`
	Skill2Level                   int         `json:"skill2_level" yaml:"skill2_level"`
	SkillBurstLevel               int         `json:"skill_burst_level" yaml:"skill_burst_level"`
	LimitBreakGrade               int         `json:"limit_break_grade" yaml:"limit_break_grade"`
	Core                          int         `json:"core" yaml:"core"`
	ItemLevel                     int         `json:"item_level" yaml:"item_level"`
	ItemRare                      string      `json:"item_rare" yaml:"item_rare"`
	Equipments                    []Equipment `json:"equipments" yaml:"equipments"`
	TotalStatAtk                  float64     `json:"total_stat_atk" yaml:"total_stat_atk"`
	TotalIncElementDmg            float64     `json:"total_inc_element_dmg" yaml:"total_inc_element_dmg"`
	TotalStatAmmoLoad             float64     `json:"total_stat_ammo_load" yaml:"total_stat_ammo_load"`
	TotalSuperiority              float64     `json:"total_superiority" yaml:"total_superiority"`
	AbsoluteTrainingDegree        float64     `json:"absolute_training_degree" yaml:"absolute_training_degree"`
	RelativeTrainingDegree        float64     `json:"relative_training_degree" yaml:"relative_training_degree"`
	GeneralRelativeTrainingDegree float64     `json:"general_relative_training_degree" yaml:"general_relative_training_degree"`
	BreakthroughCoefficient       float64     `json:"breakthrough_coefficient" yaml:"breakthrough_coefficient"`
}

// Grade renders the limit break grade as stars and the core level.
func (d CharacterDetail) Grade() string { return FormatGradeAndCore(d.LimitBreakGrade, d.Core) }

// Item renders the favorite item as rarity-level.
func (d CharacterDetail) Item() string { return FormatItem(d.ItemRare, d.ItemLevel) }

// UniqueCharacter is one distinct character across all players.
type UniqueCharacter struct {
	ID              int64  `json:"id" yaml:"id" table:"ID"`
	NameCN          string `json:"name_cn" yaml:"name_cn" table:"CHARACTER"`
	Element         string `json:"element" yaml:"element" table:"ELEMENT"`
	ElementFromUser string `json:"element_from_user" yaml:"element_from_user" table:"ELEMENT_OVERRIDE"`
}

// ElementAnalysisRequest weighs one training degree per character to sum
// it by element for each player.
type ElementAnalysisRequest struct {
	UnionIDs     []int64
	Coefficients map[int64]float64 // character id -> weight
	TrainingType string            // one of the Training* constants; "" is relative
}

// ElementTraining is the weighted training per element of one player.
type ElementTraining struct {
	PlayerName string             `json:"player_name" yaml:"player_name"`
	Elements   map[string]float64 `json:"elements" yaml:"elements"`
}

// CharacterQuery filters and sorts the character list. Zero values are
// omitted and the server defaults apply.
type CharacterQuery struct {
	PlayerNames   []string
	UnionIDs      []int64
	CharacterName string
	Class         string
	Element       string
	WeaponType    string
	UseBurstSkill string
	SortBy        string
	Order         string
}

func (q CharacterQuery) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("player_name", strings.Join(q.PlayerNames, ","))
	if len(q.UnionIDs) > 0 {
		v.Set("union_ids", JoinIDs(q.UnionIDs))
	}
	set("character_name", q.CharacterName)
	set("class", q.Class)
	set("element", q.Element)
	set("weapon_type", q.WeaponType)
	set("use_burst_skill", q.UseBurstSkill)
	set("sort_by", q.SortBy)
	set("order", q.Order)
	return v
}

// FilterOptions lists the distinct values the character filters accept.
type FilterOptions struct {
	Class         []string `json:"class" yaml:"class"`
	Element       []string `json:"element" yaml:"element"`
	WeaponType    []string `json:"weapon_type" yaml:"weapon_type"`
	UseBurstSkill []string `json:"use_burst_skill" yaml:"use_burst_skill"`
}

// CharacterStore is the character collection.
type CharacterStore struct {
	api    API
	logger logger.Logger

	mu         sync.Mutex
	characters []Character
}

// NewCharacterStore creates an empty CharacterStore.
func NewCharacterStore(api API, log logger.Logger) *CharacterStore {
	if log == nil {
		log = logger.Default()
	}
	return &CharacterStore{api: api, logger: log.With("component", "character_store")}
}

// List fetches characters matching q and replaces the collection.
func (s *CharacterStore) List(ctx context.Context, q CharacterQuery) ([]Character, error) {
	ctx = connection.WithNewRequestID(ctx)
	if err := checkOrder(q.Order); err != nil {
		return nil, err
	}
	resp, err := s.api.Get(ctx, connection.WithQuery(CharactersPath, q.values()))
	if err != nil {
		return nil, err
	}
	var chars []Character
	if err := connection.DecodeJSON(resp, &chars); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.characters = chars
	s.mu.Unlock()

	s.logger.WithContext(ctx).Debug("characters loaded", "count", len(chars))
	out := make([]Character, len(chars))
	copy(out, chars)
	return out, nil
}

// FilterOptions fetches the filter values.
func (s *CharacterStore) FilterOptions(ctx context.Context) (FilterOptions, error) {
	ctx = connection.WithNewRequestID(ctx)
	resp, err := s.api.Get(ctx, FilterOptionsPath)
	if err != nil {
		return FilterOptions{}, err
	}
	var opts FilterOptions
	if err := connection.DecodeJSON(resp, &opts); err != nil {
		return FilterOptions{}, err
	}
	return opts, nil
}

// Characters returns a copy of the collection.
func (s *CharacterStore) Characters() []Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.characters == nil {
		return nil
	}
	out := make([]Character, len(s.characters))
	copy(out, s.characters)
	return out
}

// Get fetches one character with its equipment.
func (s *CharacterStore) Get(ctx context.Context, id int64) (CharacterDetail, error) {
	if id <= 0 {
		return CharacterDetail{}, connection.NewSetupError("invalid character id "+strconv.FormatInt(id, 10), errBadCharacterID)
	}
	ctx = connection.WithNewRequestID(ctx)
	resp, err := s.api.Get(ctx, CharactersPath+strconv.FormatInt(id, 10))
	if err != nil {
		return CharacterDetail{}, err
	}
	var d CharacterDetail
	if err := connection.DecodeJSON(resp, &d); err != nil {
		return CharacterDetail{}, err
	}
	s.logger.WithContext(ctx).Debug("character loaded", "id", d.ID, "equipments", len(d.Equipments))
	return d, nil
}

// Unique fetches every distinct character, sorted by id.
func (s *CharacterStore) Unique(ctx context.Context) ([]UniqueCharacter, error) {
	ctx = connection.WithNewRequestID(ctx)
	resp, err := s.api.Get(ctx, UniqueCharactersPath)
	if err != nil {
		return nil, err
	}
	var chars []UniqueCharacter
	if err := connection.DecodeJSON(resp, &chars); err != nil {
		return nil, err
	}
	return chars, nil
}

// IsCSettings fetches the is-C flag per character id.
func (s *CharacterStore) IsCSettings(ctx context.Context) (map[int64]bool, error) {
	ctx = connection.WithNewRequestID(ctx)
	resp, err := s.api.Get(ctx, IsCSettingsPath)
	if err != nil {
		return nil, err
	}
	settings := map[int64]bool{}
	if err := connection.DecodeJSON(resp, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SetIsC stores the is-C flag for the given character ids. The server
// applies it to every existing copy of the character, and so does the
// local collection once the request succeeds.
func (s *CharacterStore) SetIsC(ctx context.Context, settings map[int64]bool) error {
	if len(settings) == 0 {
		return connection.NewSetupError("no is-C settings given", errNoIsCSettings)
	}
	body := make(map[string]bool, len(settings))
	for id, v := range settings {
		if id <= 0 {
			return connection.NewSetupError("invalid character id "+strconv.FormatInt(id, 10), errBadCharacterID)
		}
		body[strconv.FormatInt(id, 10)] = v
	}

	ctx = connection.WithNewRequestID(ctx)
	if _, err := s.api.PostJSON(ctx, IsCSettingsPath, body); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.characters {
		if v, ok := settings[s.characters[i].CharacterID]; ok {
			s.characters[i].IsC = v
		}
	}
	s.mu.Unlock()

	s.logger.WithContext(ctx).Debug("is-C settings saved", "count", len(settings))
	return nil
}

// ElementAnalysis sums the weighted training degree by element for every
// player in the selected unions.
func (s *CharacterStore) ElementAnalysis(ctx context.Context, req ElementAnalysisRequest) ([]ElementTraining, error) {
	if len(req.Coefficients) == 0 {
		return nil, connection.NewSetupError("at least one character coefficient is required", errNoCoefficients)
	}
	training := req.TrainingType
	switch training {
	case "":
		training = TrainingRelative
	case TrainingAbsolute, TrainingRelative, TrainingGeneralRelative:
	default:
		return nil, connection.NewSetupError("invalid training type "+strconv.Quote(training), errBadTrainingType)
	}

	coeffs := make(map[string]float64, len(req.Coefficients))
	for id, w := range req.Coefficients {
		coeffs[strconv.FormatInt(id, 10)] = w
	}
	encoded, err := json.Marshal(coeffs)
	if err != nil {
		return nil, connection.NewSetupError("encode character coefficients", err)
	}

	form := url.Values{
		"character_coefficients": {string(encoded)},
		"training_type":          {training},
	}
	if len(req.UnionIDs) > 0 {
		form.Set("union_ids", JoinIDs(req.UnionIDs))
	}

	ctx = connection.WithNewRequestID(ctx)
	resp, err := s.api.PostForm(ctx, ElementAnalysisPath, form)
	if err != nil {
		return nil, err
	}
	var out []ElementTraining
	if err := connection.DecodeJSON(resp, &out); err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Debug("element analysis loaded", "players", len(out))
	return out, nil
}
