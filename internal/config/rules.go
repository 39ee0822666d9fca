package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/inspect-cli/internal/model"
)

// Strategy kinds accepted in the rules file.
const (
	StrategyDirect      = "direct"
	StrategyDerived     = "derived"
	StrategyLegacyAlias = "legacy_alias"
)

// Rules is the grade and parameter configuration for an inspection dataset.
type Rules struct {
	Grade      GradeRules            `yaml:"grade"`
	Parameters []model.ParameterSpec `yaml:"parameters" validate:"dive"`
	Groups     []ParameterGroup      `yaml:"groups" validate:"dive"`
	Process    ProcessColumns        `yaml:"process"`
}

// GradeRules lists the grade strategies in priority order.
type GradeRules struct {
	Strategies []StrategyConfig `yaml:"strategies" validate:"min=1,dive"`
	// PassGrades are the canonical grades counted as passing (case-insensitive).
	PassGrades []string `yaml:"pass_grades"`
}

// StrategyConfig configures one grade detection strategy.
type StrategyConfig struct {
	Kind string `yaml:"kind" validate:"oneof=direct derived legacy_alias"`
	// Column is used by direct and derived strategies.
	Column string `yaml:"column" validate:"required_unless=Kind legacy_alias"`
	// Columns are the alias columns of a legacy_alias strategy, tried in order.
	Columns []string `yaml:"columns" validate:"required_if=Kind legacy_alias"`
	// Vocabulary maps accepted raw values (case-insensitive) to canonical grades.
	// An empty vocabulary accepts any non-empty text as-is.
	Vocabulary map[string]string `yaml:"vocabulary"`
	Buckets    []BucketConfig    `yaml:"buckets" validate:"required_if=Kind derived,dive"`
	// Floor is the grade for scores below every bucket; empty makes such scores invalid.
	Floor    string   `yaml:"floor"`
	ScoreMin *float64 `yaml:"score_min"`
	ScoreMax *float64 `yaml:"score_max"`
}

// BucketConfig assigns Grade to scores >= Min.
type BucketConfig struct {
	Grade string  `yaml:"grade" validate:"required"`
	Min   float64 `yaml:"min"`
}

// ParameterGroup is a named display group of parameters.
type ParameterGroup struct {
	Name       string   `yaml:"name" validate:"required"`
	Parameters []string `yaml:"parameters"`
}

// ProcessColumns names the columns that carry a row's own process parameter range.
type ProcessColumns struct {
	NameColumn    string `yaml:"name_column"`
	MinColumn     string `yaml:"min_column"`
	MaxColumn     string `yaml:"max_column"`
	AverageColumn string `yaml:"average_column"`
}

func ptr(f float64) *float64 { return &f }

// DefaultRules returns the rules of the PM7 inspection export: the Quality
// column carries OK / NOT OK, and three parameters have fallback ranges when
// the data does not define them.
func DefaultRules() *Rules {
	return &Rules{
		Grade: GradeRules{
			Strategies: []StrategyConfig{
				{
					Kind:   StrategyDirect,
					Column: "Quality",
					Vocabulary: map[string]string{
						"ok":     "OK",
						"not ok": "NOT OK",
						"not_ok": "NOT OK",
					},
				},
			},
			PassGrades: []string{"OK"},
		},
		Parameters: []model.ParameterSpec{
			{Name: "CALIPER", Min: 250, Max: 300, Average: ptr(275)},
			{Name: "BULK", Min: 250, Max: 350, Average: ptr(300)},
			{Name: "MOISTURE", Min: 200, Max: 280, Average: ptr(240)},
		},
		Groups: []ParameterGroup{
			{Name: "Basic Information", Parameters: []string{"M_C", "Jumbo_ID", "Track", "KIT", "Quality", "SUBSTANCE"}},
			{Name: "Physical Properties", Parameters: []string{"CALIPER", "BULK", "GSM_2SIGMA_ABB", "CALIPER_CD_2SIGMA_ABB"}},
			{Name: "Surface Properties", Parameters: []string{"COBB_TS", "COBB_WS", "COBB_FL_3MIN", "COBB_WS_3MIN", "GLOSS_AT_75_TS", "ROUGHNESS_PPS_TS"}},
			{Name: "Optical Properties", Parameters: []string{
				"BRIGHTNESS_ISO_TS", "BRIGHTNESS_ISO_BS", "WHITENESS_TS",
				"L_VALUE_TS", "a_VALUE_TS", "b_VALUE_TS",
				"L_VALUE_BS", "a_VALUE_BS", "b_VALUE_BS", "DELTA_E_TS",
			}},
			{Name: "Mechanical Properties", Parameters: []string{"STIFFNESS_L_W_MD", "STIFFNESS_L_W_CD", "STIFFNESS_L_W_GM", "STIFFNESS_RATIO", "PLYBOND"}},
			{Name: "Chemical Properties", Parameters: []string{"MOISTURE", "MOISTURE_2SIGMA_ABB", "ASH_TOP_LAYER", "ASH_BOTTOM_LAYER"}},
			{Name: "Performance Indicators", Parameters: []string{"IGT_PICK_TOP_MED_VIS", "IGT_PICK_BOT_MED_VIS", "TL_GSM", "BL_GSM", "GSM_2SIGMA_CD_ABB"}},
		},
		Process: defaultProcessColumns(),
	}
}

func defaultProcessColumns() ProcessColumns {
	return ProcessColumns{
		NameColumn:    "Process_Parameters",
		MinColumn:     "Min",
		MaxColumn:     "Max",
		AverageColumn: "Average",
	}
}

// LoadRules reads rules from a YAML file with a top-level "rules" key.
// An empty path returns DefaultRules.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read %s", path)
	}

	var wrapper struct {
		Rules Rules `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "rules: parse")
	}

	rules := &wrapper.Rules
	if rules.Process == (ProcessColumns{}) {
		rules.Process = defaultProcessColumns()
	}
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func rulesValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateRules checks that rules are internally consistent: at least one
// grade strategy, known strategy kinds, and max >= min for every parameter.
func ValidateRules(r *Rules) error {
	if r == nil {
		return eris.New("rules: nil")
	}

	err := rulesValidator().Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return eris.Wrap(err, "rules: validate")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return eris.Errorf("rules: validation failed: %s", strings.Join(msgs, "; "))
}

// IsPassGrade reports whether grade is one of the configured pass grades.
func (g GradeRules) IsPassGrade(grade string) bool {
	for _, p := range g.PassGrades {
		if strings.EqualFold(strings.TrimSpace(p), strings.TrimSpace(grade)) {
			return true
		}
	}
	return false
}

// GroupOf returns the name of the first group containing parameter, or "".
func (r *Rules) GroupOf(parameter string) string {
	for _, g := range r.Groups {
		for _, p := range g.Parameters {
			if p == parameter {
				return g.Name
			}
		}
	}
	return ""
}
