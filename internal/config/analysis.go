package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/rater-agreement/internal/agreement"
	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/banshee-data/rater-agreement/internal/frequency"
	"github.com/banshee-data/rater-agreement/internal/mca"
	"github.com/banshee-data/rater-agreement/internal/sheet"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the checked-in analysis defaults.
const DefaultConfigPath = "config/analysis.defaults.json"

// CollapseAdjacentTable names the built-in recode that merges 4 into 5 and
// 2 into 1. It is always available to ordinal_recode.
const CollapseAdjacentTable = "collapse_adjacent"

// maxFileSize bounds config files.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// AnalysisConfig is the root configuration for an agreement run. Every
// field is optional; the Get* methods supply defaults.
type AnalysisConfig struct {
	// Scoring
	RecodeTables      map[string]map[string]string `json:"recode_tables,omitempty" yaml:"recode_tables,omitempty"`
	OrdinalRecode     *string                      `json:"ordinal_recode,omitempty" yaml:"ordinal_recode,omitempty"` // name in recode_tables, "" for none
	Weighting         *string                      `json:"weighting,omitempty" yaml:"weighting,omitempty"`
	BinaryMethod      *string                      `json:"binary_method,omitempty" yaml:"binary_method,omitempty"`
	OrdinalMethod     *string                      `json:"ordinal_method,omitempty" yaml:"ordinal_method,omitempty"`
	CategoricalMethod *string                      `json:"categorical_method,omitempty" yaml:"categorical_method,omitempty"`
	LabelKinds        map[string]string            `json:"label_kinds,omitempty" yaml:"label_kinds,omitempty"`
	ExcludePrefixes   []string                     `json:"exclude_prefixes,omitempty" yaml:"exclude_prefixes,omitempty"`
	IgnoreLabels      []string                     `json:"ignore_labels,omitempty" yaml:"ignore_labels,omitempty"`

	// Descriptive analyses
	RatingBins        []float64       `json:"rating_bins,omitempty" yaml:"rating_bins,omitempty"`
	Sources           []coding.Source `json:"sources,omitempty" yaml:"sources,omitempty"`
	ElementLabels     []string        `json:"element_labels,omitempty" yaml:"element_labels,omitempty"`
	GoalLabel         *string         `json:"goal_label,omitempty" yaml:"goal_label,omitempty"`
	MCAComponents     *int            `json:"mca_components,omitempty" yaml:"mca_components,omitempty"`
	MCADropSubstrings []string        `json:"mca_drop_substrings,omitempty" yaml:"mca_drop_substrings,omitempty"`

	// Input
	InputEncoding *string `json:"input_encoding,omitempty" yaml:"input_encoding,omitempty"`
	Orientation   *string `json:"orientation,omitempty" yaml:"orientation,omitempty"`
	Rater1Name    *string `json:"rater1_name,omitempty" yaml:"rater1_name,omitempty"`
	Rater2Name    *string `json:"rater2_name,omitempty" yaml:"rater2_name,omitempty"`
}

func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyAnalysisConfig returns a config with every field unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// DefaultAnalysisConfig returns a config with the defaults filled in
// explicitly, which is what analysis.defaults.json holds.
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		OrdinalRecode:     ptrString(""),
		Weighting:         ptrString(string(agreement.WeightQuadratic)),
		BinaryMethod:      ptrString(string(agreement.MethodKappa)),
		OrdinalMethod:     ptrString(string(agreement.MethodWeightedKappa)),
		CategoricalMethod: ptrString(string(agreement.MethodCrosstab)),
		ExcludePrefixes:   coding.DefaultLabelFilter().ExcludePrefixes,
		IgnoreLabels:      coding.DefaultLabelFilter().IgnoreLabels,
		RatingBins:        frequency.DefaultBins(),
		Sources:           coding.DefaultSources(),
		ElementLabels:     append([]string(nil), frequency.DefaultElements...),
		GoalLabel:         ptrString(frequency.DefaultGoalLabel),
		MCAComponents:     ptrInt(mca.DefaultComponents),
		MCADropSubstrings: append([]string(nil), mca.DefaultDropSubstrings...),
		InputEncoding:     ptrString(sheet.EncodingUTF8),
		Orientation:       ptrString(string(sheet.LabelsByItems)),
	}
}

// Load reads a config from a .json, .yaml or .yml file. Fields omitted from
// the file keep their defaults, so partial configs are safe.
func Load(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching from the current
// directory up to the repository root. It panics if the file is not found
// and is intended for test setup.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/irr/ and deeper packages
	}
	for _, path := range candidates {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *AnalysisConfig) Validate() error {
	if _, err := c.GetRecode(); err != nil {
		return err
	}
	if c.Weighting != nil {
		if _, err := agreement.ParseWeighting(*c.Weighting); err != nil {
			return fmt.Errorf("weighting: %w", err)
		}
	}
	for field, v := range map[string]*string{
		"binary_method":      c.BinaryMethod,
		"ordinal_method":     c.OrdinalMethod,
		"categorical_method": c.CategoricalMethod,
	} {
		if v == nil {
			continue
		}
		if _, err := agreement.ParseMethod(*v); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	if _, err := c.GetRubric(); err != nil {
		return err
	}
	for i := 1; i < len(c.RatingBins); i++ {
		if c.RatingBins[i] <= c.RatingBins[i-1] {
			return fmt.Errorf("rating_bins must be strictly increasing, got %v", c.RatingBins)
		}
	}
	seen := make(map[string]bool)
	for _, s := range c.Sources {
		p := strings.ToUpper(strings.TrimSpace(s.Prefix))
		if len(p) != 1 || s.Name == "" {
			return fmt.Errorf("source %+v needs a one-letter prefix and a name", s)
		}
		if seen[p] {
			return fmt.Errorf("duplicate source prefix %q", s.Prefix)
		}
		seen[p] = true
	}
	if c.MCAComponents != nil && *c.MCAComponents < 1 {
		return fmt.Errorf("mca_components must be at least 1, got %d", *c.MCAComponents)
	}
	if c.InputEncoding != nil {
		if _, err := sheet.NewDecodingReader(strings.NewReader(""), *c.InputEncoding); err != nil {
			return fmt.Errorf("input_encoding: %w", err)
		}
	}
	if c.Orientation != nil {
		if _, err := sheet.ParseOrientation(*c.Orientation); err != nil {
			return fmt.Errorf("orientation: %w", err)
		}
	}
	return nil
}

// GetRecode resolves ordinal_recode against recode_tables and the built-in
// collapse_adjacent table. An unset or empty name means no recoding.
func (c *AnalysisConfig) GetRecode() (coding.Recode, error) {
	if c.OrdinalRecode == nil || *c.OrdinalRecode == "" || *c.OrdinalRecode == "none" {
		return nil, nil
	}
	name := *c.OrdinalRecode
	if table, ok := c.RecodeTables[name]; ok {
		return coding.NewRecode(table), nil
	}
	if name == CollapseAdjacentTable {
		return coding.CollapseAdjacent, nil
	}
	return nil, fmt.Errorf("ordinal_recode %q is not a defined recode table", name)
}

// GetRubric returns the declared label kinds.
func (c *AnalysisConfig) GetRubric() (coding.Rubric, error) {
	if len(c.LabelKinds) == 0 {
		return nil, nil
	}
	r := make(coding.Rubric, len(c.LabelKinds))
	for label, name := range c.LabelKinds {
		k, err := coding.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("label_kinds[%q]: %w", label, err)
		}
		r[label] = k
	}
	return r, nil
}

// GetWeighting returns the weighting or quadratic.
func (c *AnalysisConfig) GetWeighting() agreement.Weighting {
	if c.Weighting == nil {
		return agreement.WeightQuadratic
	}
	w, err := agreement.ParseWeighting(*c.Weighting)
	if err != nil {
		return agreement.WeightQuadratic
	}
	return w
}

func getMethod(v *string, def agreement.Method) agreement.Method {
	if v == nil || *v == "" {
		return def
	}
	m, err := agreement.ParseMethod(*v)
	if err != nil {
		return def
	}
	return m
}

// GetBinaryMethod returns the binary_method value or kappa.
func (c *AnalysisConfig) GetBinaryMethod() agreement.Method {
	return getMethod(c.BinaryMethod, agreement.MethodKappa)
}

// GetOrdinalMethod returns the ordinal_method value or weighted_kappa.
func (c *AnalysisConfig) GetOrdinalMethod() agreement.Method {
	return getMethod(c.OrdinalMethod, agreement.MethodWeightedKappa)
}

// GetCategoricalMethod returns the categorical_method value or crosstab.
func (c *AnalysisConfig) GetCategoricalMethod() agreement.Method {
	return getMethod(c.CategoricalMethod, agreement.MethodCrosstab)
}

// GetLabelFilter returns the label filter, falling back to the default
// prefixes and ignored labels for whichever list is unset.
func (c *AnalysisConfig) GetLabelFilter() coding.LabelFilter {
	f := coding.DefaultLabelFilter()
	if c.ExcludePrefixes != nil {
		f.ExcludePrefixes = c.ExcludePrefixes
	}
	if c.IgnoreLabels != nil {
		f.IgnoreLabels = c.IgnoreLabels
	}
	return f
}

// GetRatingBins returns the rating_bins value or 1..5 in half steps.
func (c *AnalysisConfig) GetRatingBins() []float64 {
	if len(c.RatingBins) == 0 {
		return frequency.DefaultBins()
	}
	return c.RatingBins
}

// GetSources returns the sources value or the four study sources.
func (c *AnalysisConfig) GetSources() coding.Sources {
	if len(c.Sources) == 0 {
		return coding.DefaultSources()
	}
	return coding.Sources(c.Sources)
}

// GetElementLabels returns the element_labels value or the default elements.
func (c *AnalysisConfig) GetElementLabels() []string {
	if len(c.ElementLabels) == 0 {
		return frequency.DefaultElements
	}
	return c.ElementLabels
}

// GetGoalLabel returns the goal_label value or the default.
func (c *AnalysisConfig) GetGoalLabel() string {
	if c.GoalLabel == nil || *c.GoalLabel == "" {
		return frequency.DefaultGoalLabel
	}
	return *c.GoalLabel
}

// GetMCAComponents returns the mca_components value or the default.
func (c *AnalysisConfig) GetMCAComponents() int {
	if c.MCAComponents == nil {
		return mca.DefaultComponents
	}
	return *c.MCAComponents
}

// GetMCADropSubstrings returns the mca_drop_substrings value or the default.
func (c *AnalysisConfig) GetMCADropSubstrings() []string {
	if c.MCADropSubstrings == nil {
		return mca.DefaultDropSubstrings
	}
	return c.MCADropSubstrings
}

// GetRater1Name returns rater1_name, or "" to name the rater after its file.
func (c *AnalysisConfig) GetRater1Name() string {
	if c.Rater1Name == nil {
		return ""
	}
	return *c.Rater1Name
}

// GetRater2Name returns rater2_name, or "" to name the rater after its file.
func (c *AnalysisConfig) GetRater2Name() string {
	if c.Rater2Name == nil {
		return ""
	}
	return *c.Rater2Name
}

// ScorerOptions builds agreement options from the config.
func (c *AnalysisConfig) ScorerOptions() (agreement.Options, error) {
	recode, err := c.GetRecode()
	if err != nil {
		return agreement.Options{}, err
	}
	rubric, err := c.GetRubric()
	if err != nil {
		return agreement.Options{}, err
	}
	opts := agreement.DefaultOptions()
	opts.Rubric = rubric
	opts.Filter = c.GetLabelFilter()
	opts.Recode = recode
	opts.Weighting = c.GetWeighting()
	opts.BinaryMethod = c.GetBinaryMethod()
	opts.OrdinalMethod = c.GetOrdinalMethod()
	opts.CategoricalMethod = c.GetCategoricalMethod()
	return opts, nil
}

// SheetOptions returns the options for loading a rater's sheet.
func (c *AnalysisConfig) SheetOptions(rater string) sheet.Options {
	opts := sheet.Options{Rater: rater}
	if c.InputEncoding != nil {
		opts.Encoding = *c.InputEncoding
	}
	if c.Orientation != nil {
		opts.Orientation = sheet.Orientation(*c.Orientation)
	}
	return opts
}
