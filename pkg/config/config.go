// Package config handles estimation and simulation run configuration.
//
// Two on-disk formats are accepted: a native YAML file, and the legacy
// keyword = value text format with '#' comments and brace-delimited
// parameter lists used by earlier tooling. Both decode into the same Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/estimnet/pkg/changestats"
)

// Config is the full configuration surface consumed by the estimation and
// simulation drivers. Field names follow the legacy option names.
type Config struct {
	// Step size / algorithm control.
	ACAS           float64 `yaml:"ACA_S"`
	ACAEE          float64 `yaml:"ACA_EE"`
	CompC          float64 `yaml:"compC"`
	SamplerSteps   int     `yaml:"samplerSteps"`
	SSteps         int     `yaml:"Ssteps"`
	EESteps        int     `yaml:"EEsteps"`
	EEInnerSteps   int     `yaml:"EEinnerSteps"`
	OutputAllSteps bool    `yaml:"outputAllSteps"`

	// Sampler selection.
	UseIFDSampler      bool    `yaml:"useIFDsampler"`
	IFDK               float64 `yaml:"ifd_K"`
	UseTNTSampler      bool    `yaml:"useTNTsampler"`
	UseBorisenkoUpdate bool    `yaml:"useBorisenkoUpdate"`
	LearningRate       float64 `yaml:"learningRate"`
	MinTheta           float64 `yaml:"minTheta"`

	// Constraint regimes.
	UseConditionalEstimation bool `yaml:"useConditionalEstimation"`
	CitationERGM             bool `yaml:"citationERGM"`
	ForbidReciprocity        bool `yaml:"forbidReciprocity"`
	AllowLoops               bool `yaml:"allowLoops"`

	// Graph shape.
	IsDirected    bool `yaml:"isDirected"`
	NumModeANodes int  `yaml:"numModeANodes"`
	// NumNodes sizes the empty starting graph in simulation mode when no
	// arclistFile is given.
	NumNodes int `yaml:"numNodes"`

	// Inputs.
	ArclistFile  string `yaml:"arclistFile"`
	BinattrFile  string `yaml:"binattrFile"`
	CatattrFile  string `yaml:"catattrFile"`
	ContattrFile string `yaml:"contattrFile"`
	SetattrFile  string `yaml:"setattrFile"`
	ZoneFile     string `yaml:"zoneFile"`
	TermFile     string `yaml:"termFile"`

	// Outputs.
	ThetaFilePrefix        string `yaml:"thetaFilePrefix"`
	DzAFilePrefix          string `yaml:"dzAFilePrefix"`
	SimNetFilePrefix       string `yaml:"simNetFilePrefix"`
	OutputSimulatedNetwork bool   `yaml:"outputSimulatedNetwork"`
	StatsFilePrefix        string `yaml:"statsFilePrefix"`
	SQLiteExportFile       string `yaml:"sqliteExportFile"`
	SnapshotFile           string `yaml:"snapshotFile"`

	// Parameter lists; entries look like "Arc", "AltInStars(2.0)" or
	// "Sender(gender)".
	StructParams          []string `yaml:"structParams"`
	AttrParams            []string `yaml:"attrParams"`
	DyadicParams          []string `yaml:"dyadicParams"`
	AttrInteractionParams []string `yaml:"attrInteractionParams"`

	// Promoted tuning knobs (previously hard-coded).
	MinThetaMean       float64 `yaml:"minThetaMean"`
	ThetaSDThreshold   float64 `yaml:"thetaSDThreshold"`
	MaxProposalRetries int     `yaml:"maxProposalRetries"`

	// Run control.
	NumTasks         int    `yaml:"numTasks"`
	Seed             uint64 `yaml:"seed"`
	UseSparseTwoPath bool   `yaml:"useSparseTwoPath"`

	// Simulation mode.
	SimSampleSize int `yaml:"simSampleSize"`
	SimInterval   int `yaml:"simInterval"`
	SimBurnin     int `yaml:"simBurnin"`
}

// Default returns a Config with the conventional defaults.
func Default() Config {
	return Config{
		ACAS:         0.1,
		ACAEE:        1e-9,
		CompC:        1e-2,
		SamplerSteps: 1000,
		SSteps:       100,
		EESteps:      500,
		EEInnerSteps: 100,

		IFDK:         0.1,
		LearningRate: 0.001,
		MinTheta:     0.01,

		IsDirected: true,

		ThetaFilePrefix:  "theta_values",
		DzAFilePrefix:    "dzA_values",
		SimNetFilePrefix: "sim",
		StatsFilePrefix:  "stats",

		MinThetaMean:       0.1,
		ThetaSDThreshold:   1e-10,
		MaxProposalRetries: 10000,

		NumTasks: 1,
		Seed:     1,

		SimSampleSize: 100,
		SimInterval:   1000,
		SimBurnin:     10000,
	}
}

// Load reads a configuration file, picking the format from the extension:
// .yaml/.yml decode as YAML, anything else as the legacy text format.
func Load(path string) (Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return LoadLegacy(path)
	}
}

// LoadYAML reads a YAML configuration file over the defaults.
func LoadYAML(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks for contradictory option combinations. Graph-dependent
// checks (single snowball zone, IFD with an explicit density term) happen in
// the driver once the data is loaded.
func (c *Config) Validate() error {
	switch {
	case c.UseIFDSampler && c.UseTNTSampler:
		return fmt.Errorf("useIFDsampler and useTNTsampler are mutually exclusive")
	case c.UseConditionalEstimation && c.CitationERGM:
		return fmt.Errorf("useConditionalEstimation and citationERGM are mutually exclusive")
	case c.UseConditionalEstimation && c.ZoneFile == "":
		return fmt.Errorf("useConditionalEstimation requires zoneFile")
	case c.CitationERGM && c.TermFile == "":
		return fmt.Errorf("citationERGM requires termFile")
	case c.CitationERGM && !c.IsDirected:
		return fmt.Errorf("citationERGM requires a directed graph")
	case c.ForbidReciprocity && (c.UseConditionalEstimation || c.CitationERGM):
		return fmt.Errorf("forbidReciprocity cannot be combined with conditional estimation")
	case c.AllowLoops && (c.UseConditionalEstimation || c.CitationERGM):
		return fmt.Errorf("allowLoops cannot be combined with conditional estimation")
	case c.ForbidReciprocity && !c.IsDirected:
		return fmt.Errorf("forbidReciprocity requires a directed graph")
	case c.AllowLoops && !c.IsDirected:
		return fmt.Errorf("allowLoops requires a directed graph")
	case c.UseTNTSampler && (c.ForbidReciprocity || c.AllowLoops || c.UseConditionalEstimation || c.CitationERGM):
		return fmt.Errorf("useTNTsampler supports the plain unconstrained regime only")
	case c.SamplerSteps <= 0:
		return fmt.Errorf("samplerSteps must be positive")
	case c.SSteps <= 0:
		return fmt.Errorf("Ssteps must be positive")
	case c.EESteps <= 0 || c.EEInnerSteps <= 0:
		return fmt.Errorf("EEsteps and EEinnerSteps must be positive")
	case c.NumTasks <= 0:
		return fmt.Errorf("numTasks must be positive")
	case len(c.StructParams)+len(c.AttrParams)+len(c.DyadicParams)+len(c.AttrInteractionParams) == 0:
		return fmt.Errorf("no model parameters configured")
	}
	return nil
}

// Warnings returns non-fatal diagnostics about options the selected
// algorithm will ignore.
func (c *Config) Warnings() []string {
	var w []string
	def := Default()
	if c.IFDK != def.IFDK && !c.UseIFDSampler {
		w = append(w, "ifd_K is set but useIFDsampler is not; ignored")
	}
	if c.LearningRate != def.LearningRate && !c.UseBorisenkoUpdate {
		w = append(w, "learningRate is set but useBorisenkoUpdate is not; ignored")
	}
	if c.MinTheta != def.MinTheta && !c.UseBorisenkoUpdate {
		w = append(w, "minTheta is set but useBorisenkoUpdate is not; ignored")
	}
	return w
}

// ParamSpecs parses the four parameter lists into registry specs.
func (c *Config) ParamSpecs() (structural, attr, dyadic, interaction []changestats.ParamSpec, err error) {
	if structural, err = parseSpecs(c.StructParams); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("structParams: %w", err)
	}
	if attr, err = parseSpecs(c.AttrParams); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("attrParams: %w", err)
	}
	if dyadic, err = parseSpecs(c.DyadicParams); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("dyadicParams: %w", err)
	}
	if interaction, err = parseSpecs(c.AttrInteractionParams); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("attrInteractionParams: %w", err)
	}
	return structural, attr, dyadic, interaction, nil
}

func parseSpecs(entries []string) ([]changestats.ParamSpec, error) {
	var specs []changestats.ParamSpec
	for _, e := range entries {
		spec, err := parseParamEntry(e)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// parseParamEntry splits "Name(arg1,arg2)" into a ParamSpec.
func parseParamEntry(entry string) (changestats.ParamSpec, error) {
	entry = strings.TrimSpace(entry)
	open := strings.IndexByte(entry, '(')
	if open < 0 {
		if entry == "" {
			return changestats.ParamSpec{}, fmt.Errorf("empty parameter entry")
		}
		return changestats.ParamSpec{Name: entry}, nil
	}
	if !strings.HasSuffix(entry, ")") {
		return changestats.ParamSpec{}, fmt.Errorf("parameter entry %q: missing closing parenthesis", entry)
	}
	name := strings.TrimSpace(entry[:open])
	if name == "" {
		return changestats.ParamSpec{}, fmt.Errorf("parameter entry %q: missing name", entry)
	}
	inner := entry[open+1 : len(entry)-1]
	var args []string
	for _, a := range strings.Split(inner, ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			return changestats.ParamSpec{}, fmt.Errorf("parameter entry %q: empty argument", entry)
		}
		args = append(args, a)
	}
	return changestats.ParamSpec{Name: name, Args: args}, nil
}
