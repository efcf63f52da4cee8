// Package config loads the YAML pipeline description and materializes it
// into stage instances. All validation beyond YAML shape happens at
// pipeline build time, so configuration errors surface before any data is
// read.
package config

// #region imports
import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/prepflow/prepflow/internal/pipeline"
	"github.com/prepflow/prepflow/internal/selection"
	"github.com/prepflow/prepflow/internal/stages"
)

// #endregion

// #region file-schema

// File is the top-level YAML document.
type File struct {
	Target  string       `yaml:"target"`
	Pinned  []string     `yaml:"pinned"`
	History string       `yaml:"history_db"`
	Stages  []StageEntry `yaml:"stages"`
}

// StageEntry declares one pipeline stage. Type selects the collaborator;
// exactly the matching option block is read.
type StageEntry struct {
	ID          string          `yaml:"id"`
	Type        string          `yaml:"type"`
	SkipOnError bool            `yaml:"skip_on_error"`
	Impute      *ImputeOptions  `yaml:"impute"`
	Outliers    *OutlierOptions `yaml:"outliers"`
	Encode      *EncodeOptions  `yaml:"encode"`
	Scale       *ScaleOptions   `yaml:"scale"`
	Select      *SelectOptions  `yaml:"select"`
	PCA         *PCAOptions     `yaml:"pca"`
}

// ImputeOptions mirrors stages.ImputerConfig.
type ImputeOptions struct {
	Strategy         string  `yaml:"strategy"`
	FixedNumeric     float64 `yaml:"fixed_numeric"`
	FixedCategorical string  `yaml:"fixed_categorical"`
}

// OutlierOptions mirrors stages.OutlierConfig.
type OutlierOptions struct {
	Factor float64 `yaml:"factor"`
}

// EncodeOptions mirrors stages.EncoderConfig.
type EncodeOptions struct {
	Method    string `yaml:"method"`
	MaxLevels int    `yaml:"max_levels"`
}

// ScaleOptions mirrors stages.ScalerConfig.
type ScaleOptions struct {
	Method string `yaml:"method"`
}

// PCAOptions mirrors stages.PCAConfig.
type PCAOptions struct {
	Components int `yaml:"components"`
	MaxIters   int `yaml:"max_iters"`
}

// SelectOptions mirrors selection.Config.
type SelectOptions struct {
	Policy             string             `yaml:"policy"`
	AggregateThreshold float64            `yaml:"aggregate_threshold"`
	Weights            map[string]float64 `yaml:"weights"`
	Criteria           []CriterionOptions `yaml:"criteria"`
}

// CriterionOptions declares one selection criterion.
type CriterionOptions struct {
	Kind        string  `yaml:"kind"`
	Epsilon     float64 `yaml:"epsilon"`      // variance
	Threshold   float64 `yaml:"threshold"`    // correlation
	Alpha       float64 `yaml:"alpha"`        // stat_test
	TopK        int     `yaml:"top_k"`        // stat_test
	TargetCount int     `yaml:"target_count"` // rfe
	Floor       float64 `yaml:"floor"`        // rfe
}

// #endregion file-schema

// #region load

// Load reads and parses a pipeline YAML file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a pipeline YAML document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(f.Stages) == 0 {
		return nil, fmt.Errorf("config declares no stages")
	}
	return &f, nil
}

// #endregion load

// #region build

// BuildInput materializes the config into stage instances for
// pipeline.Build. sink receives selection decisions and may be nil.
func (f *File) BuildInput(sink stages.DecisionSink) (pipeline.BuildInput, error) {
	input := pipeline.BuildInput{Target: f.Target}
	for i, e := range f.Stages {
		if e.ID == "" {
			return pipeline.BuildInput{}, fmt.Errorf("stage %d has no id", i)
		}
		stage, err := f.buildStage(e, sink)
		if err != nil {
			return pipeline.BuildInput{}, err
		}
		input.Stages = append(input.Stages, pipeline.StageSpec{Stage: stage, SkipOnError: e.SkipOnError})
	}
	return input, nil
}

// buildStage constructs one collaborator from its entry.
func (f *File) buildStage(e StageEntry, sink stages.DecisionSink) (pipeline.Stage, error) {
	switch e.Type {
	case "summarize":
		return stages.NewSummarize(e.ID, f.Target), nil
	case "impute":
		cfg := stages.DefaultImputerConfig()
		if e.Impute != nil {
			if e.Impute.Strategy != "" {
				cfg.Strategy = stages.ImputeStrategy(e.Impute.Strategy)
			}
			cfg.FixedNumeric = e.Impute.FixedNumeric
			if e.Impute.FixedCategorical != "" {
				cfg.FixedCategorical = e.Impute.FixedCategorical
			}
		}
		return stages.NewImputer(e.ID, f.Target, cfg), nil
	case "outliers":
		cfg := stages.DefaultOutlierConfig()
		if e.Outliers != nil && e.Outliers.Factor != 0 {
			cfg.Factor = e.Outliers.Factor
		}
		return stages.NewOutlierTreater(e.ID, f.Target, cfg), nil
	case "encode":
		cfg := stages.DefaultEncoderConfig()
		if e.Encode != nil {
			if e.Encode.Method != "" {
				cfg.Method = stages.EncodeMethod(e.Encode.Method)
			}
			cfg.MaxLevels = e.Encode.MaxLevels
		}
		return stages.NewEncoder(e.ID, f.Target, cfg), nil
	case "scale":
		cfg := stages.DefaultScalerConfig()
		if e.Scale != nil && e.Scale.Method != "" {
			cfg.Method = stages.ScaleMethod(e.Scale.Method)
		}
		return stages.NewScaler(e.ID, f.Target, cfg), nil
	case "pca":
		cfg := stages.DefaultPCAConfig()
		if e.PCA != nil {
			if e.PCA.Components != 0 {
				cfg.Components = e.PCA.Components
			}
			if e.PCA.MaxIters != 0 {
				cfg.MaxIters = e.PCA.MaxIters
			}
		}
		return stages.NewPCAProjector(e.ID, f.Target, cfg), nil
	case "select":
		cfg, err := f.selectionConfig(e)
		if err != nil {
			return nil, err
		}
		return stages.NewFeatureSelect(e.ID, f.Target, cfg, sink), nil
	}
	return nil, fmt.Errorf("stage %s: unknown type %q", e.ID, e.Type)
}

// selectionConfig translates SelectOptions into a selection.Config.
func (f *File) selectionConfig(e StageEntry) (selection.Config, error) {
	cfg := selection.DefaultConfig()
	cfg.Pinned = f.Pinned
	if e.Select == nil {
		return cfg, fmt.Errorf("stage %s: select stage needs a select block", e.ID)
	}
	if e.Select.Policy != "" {
		cfg.Policy = selection.Policy(e.Select.Policy)
	}
	if e.Select.AggregateThreshold != 0 {
		cfg.AggregateThreshold = e.Select.AggregateThreshold
	}
	if len(e.Select.Weights) > 0 {
		cfg.Weights = make(map[selection.CriterionKind]float64, len(e.Select.Weights))
		for k, w := range e.Select.Weights {
			cfg.Weights[selection.CriterionKind(k)] = w
		}
	}
	for _, c := range e.Select.Criteria {
		crit, err := buildCriterion(c, f.Pinned)
		if err != nil {
			return selection.Config{}, fmt.Errorf("stage %s: %w", e.ID, err)
		}
		cfg.Criteria = append(cfg.Criteria, crit)
	}
	return cfg, nil
}

// buildCriterion constructs one criterion from its options.
func buildCriterion(c CriterionOptions, pinned []string) (selection.Criterion, error) {
	switch selection.CriterionKind(c.Kind) {
	case selection.CriterionVariance:
		crit := selection.DefaultVarianceThreshold()
		if c.Epsilon != 0 {
			crit.Epsilon = c.Epsilon
		}
		return crit, nil
	case selection.CriterionCorrelation:
		crit := selection.DefaultCorrelationFilter()
		if c.Threshold != 0 {
			crit.Threshold = c.Threshold
		}
		return crit, nil
	case selection.CriterionStatTest:
		crit := selection.DefaultStatisticalTest()
		if c.Alpha != 0 {
			crit.Alpha = c.Alpha
		}
		crit.TopK = c.TopK
		return crit, nil
	case selection.CriterionRFE:
		crit := selection.DefaultRecursiveElimination(c.TargetCount)
		crit.Floor = c.Floor
		crit.Pinned = pinned
		return crit, nil
	}
	return nil, fmt.Errorf("unknown criterion kind %q", c.Kind)
}

// #endregion build
