package model

// Metric names as written to the metrics file.
const (
	MetricAccuracy  = "accuracy"
	MetricPrecision = "precision"
	MetricRecall    = "recall"
	MetricF1Score   = "f1_score"
	MetricROCAUC    = "roc_auc"
)

// MetricNames lists the metrics in file order.
var MetricNames = []string{MetricAccuracy, MetricPrecision, MetricRecall, MetricF1Score, MetricROCAUC}

// Metrics are the binary-classification scores of one evaluation.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	ROCAUC    float64 `json:"roc_auc"`
}

// Value looks up a metric by its file name.
func (m Metrics) Value(name string) (float64, bool) {
	switch name {
	case MetricAccuracy:
		return m.Accuracy, true
	case MetricPrecision:
		return m.Precision, true
	case MetricRecall:
		return m.Recall, true
	case MetricF1Score:
		return m.F1Score, true
	case MetricROCAUC:
		return m.ROCAUC, true
	default:
		return 0, false
	}
}

// AsMap returns the metrics keyed by file name.
func (m Metrics) AsMap() map[string]float64 {
	out := make(map[string]float64, len(MetricNames))
	for _, name := range MetricNames {
		out[name], _ = m.Value(name)
	}
	return out
}
