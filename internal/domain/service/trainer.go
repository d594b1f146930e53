package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/bibbank/fraudml/internal/domain/model"
)

// ErrSingleClass is returned when the training labels contain only one class.
var ErrSingleClass = errors.New("training data must contain both fraud and non-fraud rows")

// TrainerConfig controls the logistic regression fit.
type TrainerConfig struct {
	// C is the inverse regularisation strength.
	C                 float64
	MaxIterations     int
	GradientThreshold float64
	// BalancedClassWeight weights each class by n / (2 * n_class).
	BalancedClassWeight bool
}

// DefaultTrainerConfig returns L2 regularisation with C=1 and balanced class weights.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		C:                   1.0,
		MaxIterations:       1000,
		GradientThreshold:   1e-8,
		BalancedClassWeight: true,
	}
}

// FitReport summarises an optimisation run.
type FitReport struct {
	Iterations int
	Loss       float64
	Converged  bool
}

// LogisticRegressionTrainer fits model.LogisticModel instances with L-BFGS.
type LogisticRegressionTrainer struct {
	cfg    TrainerConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewLogisticRegressionTrainer creates a trainer.
func NewLogisticRegressionTrainer(cfg TrainerConfig, logger *slog.Logger) (*LogisticRegressionTrainer, error) {
	if cfg.C <= 0 {
		return nil, fmt.Errorf("regularisation C must be positive, got %v", cfg.C)
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultTrainerConfig().MaxIterations
	}
	if cfg.GradientThreshold <= 0 {
		cfg.GradientThreshold = DefaultTrainerConfig().GradientThreshold
	}
	return &LogisticRegressionTrainer{cfg: cfg, logger: logger, now: time.Now}, nil
}

// Fit standardises the features, then minimises the class-weighted,
// L2-regularised log loss. The intercept is not regularised.
func (t *LogisticRegressionTrainer) Fit(records []model.FeatureRecord) (*model.LogisticModel, FitReport, error) {
	n := len(records)
	if n == 0 {
		return nil, FitReport{}, fmt.Errorf("no training rows")
	}
	labels := model.Labels(records)
	if err := model.ValidateLabels(labels); err != nil {
		return nil, FitReport{}, err
	}
	positives := floats.Sum(toFloats(labels))
	if positives == 0 || int(positives) == n {
		return nil, FitReport{}, ErrSingleClass
	}

	d := len(model.FeatureNames)
	columns := make([][]float64, d)
	for j := range columns {
		columns[j] = make([]float64, n)
	}
	for i, r := range records {
		for j, v := range r.Features.Values() {
			columns[j][i] = v
		}
	}

	mean := make([]float64, d)
	scale := make([]float64, d)
	for j, col := range columns {
		m, variance := stat.MeanVariance(col, nil)
		mean[j] = m
		// Population standard deviation.
		scale[j] = math.Sqrt(variance * float64(n-1) / float64(n))
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	x := make([][]float64, n)
	for i := range x {
		x[i] = make([]float64, d)
		for j := range x[i] {
			x[i][j] = (columns[j][i] - mean[j]) / scale[j]
		}
	}

	y := toFloats(labels)
	weights := t.sampleWeights(labels, positives)
	obj := &logLoss{x: x, y: y, w: weights, c: t.cfg.C}

	problem := optimize.Problem{
		Func: obj.value,
		Grad: obj.gradient,
	}
	settings := &optimize.Settings{
		GradientThreshold: t.cfg.GradientThreshold,
		MajorIterations:   t.cfg.MaxIterations,
	}

	result, err := optimize.Minimize(problem, make([]float64, d+1), settings, &optimize.LBFGS{})
	if result == nil {
		return nil, FitReport{}, fmt.Errorf("logistic regression fit failed: %w", err)
	}
	report := FitReport{
		Iterations: result.Stats.MajorIterations,
		Loss:       result.F,
		Converged:  err == nil,
	}
	if err != nil {
		t.logger.Warn("optimizer stopped early, using best parameters found",
			"error", err,
			"status", result.Status.String(),
			"iterations", report.Iterations,
		)
	}
	for _, v := range result.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, report, fmt.Errorf("logistic regression fit diverged")
		}
	}

	m, err := model.NewLogisticModel(model.LogisticParams{
		ID:           uuid.New(),
		Features:     model.FeatureNames,
		Coefficients: result.X[:d],
		Intercept:    result.X[d],
		Mean:         mean,
		Scale:        scale,
		Threshold:    model.DefaultThreshold,
		TrainingRows: n,
		TrainedAt:    t.now().UTC(),
	})
	if err != nil {
		return nil, report, fmt.Errorf("failed to build model: %w", err)
	}
	return m, report, nil
}

func (t *LogisticRegressionTrainer) sampleWeights(labels []int, positives float64) []float64 {
	n := float64(len(labels))
	w := make([]float64, len(labels))
	for i, l := range labels {
		switch {
		case !t.cfg.BalancedClassWeight:
			w[i] = 1
		case l == 1:
			w[i] = n / (2 * positives)
		default:
			w[i] = n / (2 * (n - positives))
		}
	}
	return w
}

// logLoss is (C * sum_i w_i * loss_i + ||beta||^2 / 2) / n over parameters
// [beta..., intercept].
type logLoss struct {
	x [][]float64
	y []float64
	w []float64
	c float64
}

func (l *logLoss) value(theta []float64) float64 {
	d := len(theta) - 1
	beta, b := theta[:d], theta[d]
	var sum float64
	for i, row := range l.x {
		z := floats.Dot(beta, row) + b
		// log(1 + exp(z)) - y*z
		sum += l.w[i] * (softplus(z) - l.y[i]*z)
	}
	n := float64(len(l.x))
	return (l.c*sum + 0.5*floats.Dot(beta, beta)) / n
}

func (l *logLoss) gradient(grad, theta []float64) {
	d := len(theta) - 1
	beta, b := theta[:d], theta[d]
	for k := range grad {
		grad[k] = 0
	}
	for i, row := range l.x {
		z := floats.Dot(beta, row) + b
		r := l.c * l.w[i] * (model.Sigmoid(z) - l.y[i])
		floats.AddScaled(grad[:d], r, row)
		grad[d] += r
	}
	floats.Add(grad[:d], beta)
	floats.Scale(1/float64(len(l.x)), grad)
}

func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

func toFloats(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = float64(v)
	}
	return out
}
