package model

// Prediction is the model output for one feature vector.
type Prediction struct {
	Label       int
	Probability float64
}
