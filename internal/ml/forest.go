package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
)

// ForestKind distinguishes regression forests from binary classifiers
type ForestKind string

const (
	KindRegression     ForestKind = "regression"
	KindClassification ForestKind = "classification"
)

// Forest is a trained random-forest ensemble. It is immutable after
// training and safe for concurrent prediction.
type Forest struct {
	Kind        ForestKind `json:"kind"`
	NumFeatures int        `json:"num_features"`
	Trees       []*Node    `json:"trees"`
}

// Predict averages the trees. Regression outputs are clamped to be
// non-negative; classification outputs are probabilities in [0, 1].
func (f *Forest) Predict(x []float64) (float64, error) {
	if len(x) != f.NumFeatures {
		return 0, fmt.Errorf("feature count mismatch: forest expects %d, got %d", f.NumFeatures, len(x))
	}

	sum := 0.0
	for _, tree := range f.Trees {
		sum += tree.Predict(x)
	}
	value := sum / float64(len(f.Trees))

	switch f.Kind {
	case KindRegression:
		value = math.Max(value, 0)
	case KindClassification:
		value = math.Min(math.Max(value, 0), 1)
	}

	return value, nil
}

// Marshal serializes the forest parameters for durable storage
func (f *Forest) Marshal() ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal forest: %w", err)
	}
	return data, nil
}

// UnmarshalForest restores a forest from serialized parameters
func UnmarshalForest(data []byte) (*Forest, error) {
	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal forest: %w", err)
	}
	if len(f.Trees) == 0 {
		return nil, fmt.Errorf("serialized forest has no trees")
	}
	return &f, nil
}

// TrainConfig controls ensemble training
type TrainConfig struct {
	Trees    int
	MaxDepth int
	MinLeaf  int
	Seed     int64
}

func (c TrainConfig) withDefaults() TrainConfig {
	if c.Trees <= 0 {
		c.Trees = 100
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 8
	}
	if c.MinLeaf <= 0 {
		c.MinLeaf = 2
	}
	return c
}

// TrainRegressor fits a regression forest (variance-reduction splits,
// bootstrap sampling, sqrt-feature subsampling)
func TrainRegressor(x [][]float64, y []float64, cfg TrainConfig) (*Forest, error) {
	return train(KindRegression, x, y, cfg)
}

// TrainClassifier fits a binary classification forest over 0/1 targets
func TrainClassifier(x [][]float64, y []float64, cfg TrainConfig) (*Forest, error) {
	for _, v := range y {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("classification target must be 0 or 1, got %v", v)
		}
	}
	return train(KindClassification, x, y, cfg)
}

func train(kind ForestKind, x [][]float64, y []float64, cfg TrainConfig) (*Forest, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("invalid training set: %d rows, %d targets", len(x), len(y))
	}

	cfg = cfg.withDefaults()
	numFeatures := len(x[0])
	mtry := int(math.Sqrt(float64(numFeatures)))
	if mtry < 1 {
		mtry = 1
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	trees := make([]*Node, cfg.Trees)

	for t := 0; t < cfg.Trees; t++ {
		samples := make([]int, len(x))
		for i := range samples {
			samples[i] = rng.Intn(len(x))
		}

		builder := &treeBuilder{
			x:        x,
			y:        y,
			maxDepth: cfg.MaxDepth,
			minLeaf:  cfg.MinLeaf,
			mtry:     mtry,
			rng:      rand.New(rand.NewSource(rng.Int63())),
		}
		trees[t] = builder.build(samples, 0)
	}

	return &Forest{
		Kind:        kind,
		NumFeatures: numFeatures,
		Trees:       trees,
	}, nil
}
