package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/exp/rand"

	"github.com/aeroweather/backend/internal/domain"
	"github.com/aeroweather/backend/pkg/utils"
)

const cvFolds = 5

// Metrics bundles the in-sample and cross-validated evaluation scores.
type Metrics struct {
	R2     float64 `json:"r_squared"`
	RMSE   float64 `json:"rmse"`
	MAE    float64 `json:"mae"`
	CVRMSE float64 `json:"cv_rmse"`
}

// FeatureImportance is one row of the ranked importance table.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// TrainedModel is the full prediction bundle: fitted forest, fitted scaler,
// feature order, evaluation metrics, importance ranking, and the percentile
// thresholds behind the severe-weather flag. It is recreated wholesale on
// every retrain.
type TrainedModel struct {
	Forest         *Forest             `json:"forest"`
	Scaler         Scaler              `json:"scaler"`
	FeatureColumns []string            `json:"feature_columns"`
	Metrics        Metrics             `json:"metrics"`
	Importances    []FeatureImportance `json:"feature_importance"`
	Thresholds     severeThresholds    `json:"thresholds"`
	TrainedAt      time.Time           `json:"trained_at"`
}

// Train fits the delay regressor on the given records: engineered features,
// standardization, a seeded tree ensemble, in-sample metrics, and 5-fold
// cross-validated RMSE.
func Train(records []domain.FlightRecord) (*TrainedModel, error) {
	if len(records) < 2*cvFolds {
		return nil, fmt.Errorf("analytics: need at least %d records to train, got %d", 2*cvFolds, len(records))
	}

	thresholds := computeSevereThresholds(records)
	rawFeatures := buildTrainingFeatures(records, thresholds)
	y := make([]float64, len(records))
	for i, rec := range records {
		y[i] = rec.DelayMinutes
	}

	scaler := fitScaler(rawFeatures)
	X := scaler.TransformAll(rawFeatures)

	cfg := DefaultForestConfig()
	forest, rawImportances := fitForest(X, y, cfg)

	importances := make([]FeatureImportance, len(FeatureColumns))
	for i, name := range FeatureColumns {
		importances[i] = FeatureImportance{Feature: name, Importance: rawImportances[i]}
	}
	sort.Slice(importances, func(a, b int) bool {
		return importances[a].Importance > importances[b].Importance
	})

	model := &TrainedModel{
		Forest:         forest,
		Scaler:         scaler,
		FeatureColumns: append([]string(nil), FeatureColumns...),
		Importances:    importances,
		Thresholds:     thresholds,
		TrainedAt:      time.Now().UTC(),
	}
	model.Metrics = evaluate(X, y, forest, cfg)

	return model, nil
}

// evaluate computes in-sample R2/RMSE/MAE plus the 5-fold cross-validated
// RMSE: per-fold mean squared errors averaged, then square-rooted.
func evaluate(X [][]float64, y []float64, forest *Forest, cfg ForestConfig) Metrics {
	n := len(y)
	var sumSq, sumAbs, yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	var ssTot float64
	for i := 0; i < n; i++ {
		pred := forest.Predict(X[i])
		d := y[i] - pred
		sumSq += d * d
		sumAbs += math.Abs(d)
		ssTot += (y[i] - yMean) * (y[i] - yMean)
	}

	m := Metrics{
		RMSE: math.Sqrt(sumSq / float64(n)),
		MAE:  sumAbs / float64(n),
	}
	if ssTot > 0 {
		m.R2 = 1 - sumSq/ssTot
	}

	// Shuffle once with a fold-only seed, then carve contiguous folds.
	perm := rand.New(rand.NewSource(cfg.Seed + 1)).Perm(n)
	foldMSE := 0.0
	for fold := 0; fold < cvFolds; fold++ {
		var trainIdx, testIdx []int
		for i, p := range perm {
			if i%cvFolds == fold {
				testIdx = append(testIdx, p)
			} else {
				trainIdx = append(trainIdx, p)
			}
		}

		foldX := make([][]float64, len(trainIdx))
		foldY := make([]float64, len(trainIdx))
		for i, p := range trainIdx {
			foldX[i] = X[p]
			foldY[i] = y[p]
		}
		foldForest, _ := fitForest(foldX, foldY, cfg)

		var mse float64
		for _, p := range testIdx {
			d := y[p] - foldForest.Predict(X[p])
			mse += d * d
		}
		foldMSE += mse / float64(len(testIdx))
	}
	m.CVRMSE = math.Sqrt(foldMSE / cvFolds)

	return m
}

// Predict produces a point estimate with symmetric normal-approximation
// bounds: margin = cv_rmse * 1.96, lower bound clamped at zero.
func (m *TrainedModel) Predict(temperature, precipitation float64, date time.Time) domain.PredictionResponse {
	if date.IsZero() {
		date = time.Now().UTC()
	}

	row := buildInferenceFeatures(temperature, precipitation, date, m.Thresholds)
	point := m.Forest.Predict(m.Scaler.Transform(row))

	margin := m.Metrics.CVRMSE * 1.96
	return domain.PredictionResponse{
		Prediction: point,
		LowerBound: utils.Clamp(point-margin, 0, math.Inf(1)),
		UpperBound: point + margin,
		Confidence: 0.95,
	}
}

// Save serializes the model as a single JSON snapshot at path, fully
// overwriting any previous snapshot.
func (m *TrainedModel) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("analytics: failed to serialize model: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("analytics: failed to create model directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("analytics: failed to write model snapshot: %w", err)
	}
	return nil
}

// Load reads the model snapshot at path. A missing or corrupt snapshot is an
// error; the caller has no usable model and must retrain.
func Load(path string) (*TrainedModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("analytics: failed to read model snapshot: %w", err)
	}

	var model TrainedModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("analytics: corrupt model snapshot: %w", err)
	}
	if model.Forest == nil || len(model.Forest.Trees) == 0 {
		return nil, fmt.Errorf("analytics: model snapshot has no fitted forest")
	}
	return &model, nil
}
