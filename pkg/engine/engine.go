// Package engine defines the contracts between the four pipeline stages:
// a DataSource reads raw input into a training dataset, a Preparator turns
// it into a prepared dataset, every named Algorithm trains a model from the
// prepared dataset and answers queries against it, and a Serving policy
// combines the per-algorithm answers into one result.
//
// The pipeline never interprets the dataset payloads, they flow through as
// opaque containers owned by the plugged-in components.
package engine

import "context"

// Params is the parameter set bound to one pipeline component at wiring
// time. It is immutable for the lifetime of one engine instance, components
// must not write into it.
type Params map[string]interface{}

// TrainingData is the opaque container a DataSource emits.
// It is owned by the train run that created it and is discarded after the
// preparator consumed it.
type TrainingData struct {
	Payload interface{}
}

// PreparedData is the opaque container a Preparator emits.
// Multiple algorithms may train from it concurrently, so it must never be
// mutated once handed out.
type PreparedData struct {
	Payload interface{}
}

// Model is one algorithm's trained artifact. It is never mutated after
// Train returns, the serving runtime only holds shared read references.
type Model interface{}

// Query describes one prediction request. Immutable, one per request.
type Query struct {
	User string `json:"user"`
	Num  int    `json:"num"`
}

// ItemScore is one ranked entry of a prediction result
type ItemScore struct {
	Item  string  `json:"item"`
	Score float64 `json:"score"`
}

// PredictionResult is the answer of one algorithm for one query,
// entries ordered by descending score with a stable tie-break.
type PredictionResult struct {
	Algorithm  string      `json:"algorithm"`
	ItemScores []ItemScore `json:"itemScores"`
}

// DataSource reads raw input from a configured source and emits a training
// dataset. It must have no side effects beyond the read and fails with
// errorutils.DataUnavailableError when the source cannot be reached or is
// malformed.
type DataSource interface {
	ReadTraining(ctx context.Context, params Params) (TrainingData, error)
}

// Preparator transforms a training dataset into a prepared dataset.
// Implementations must be pure functions of their input (no I/O, no
// randomness) so a prepare can be re-run or cached, and fail with
// errorutils.InvalidTrainingDataError when structural assumptions are
// violated.
type Preparator interface {
	Prepare(data TrainingData) (PreparedData, error)
}

// Algorithm is the capability every pluggable prediction algorithm
// implements.
//
// Train must be reentrant: invoking it again for a retrain must not leak
// state from a prior run, all trained state lives in the returned Model.
// Predict is a pure read over the given model and must surface an unknown
// subject as errorutils.PredictionFailureError, online traffic cannot be
// assumed well-formed. Result entries are ranked by descending score and
// exact ties are broken deterministically so repeated identical queries
// against an unchanged model return identical ordering.
//
// MarshalModel and UnmarshalModel round-trip a model through the store's
// persistence format. The byte schema is owned and versioned by the
// algorithm, independent of any compute backend representation.
type Algorithm interface {
	Train(ctx context.Context, data PreparedData, params Params) (Model, error)
	Predict(model Model, query Query) (PredictionResult, error)
	MarshalModel(model Model) ([]byte, error)
	UnmarshalModel(raw []byte) (Model, error)
}

// Serving combines the ordered per-algorithm results for one query into a
// single final result. The sequence order matches the registration order of
// the algorithms and may contain fewer entries than registered algorithms
// when some failed for this query. An empty sequence must fail with
// errorutils.NoPredictionAvailableError, never index out of range.
type Serving interface {
	Serve(query Query, results []PredictionResult) (PredictionResult, error)
}

// NamedAlgorithm pairs one registered algorithm instance with its wiring
// name and the params bound to it. Params are bound once and immutable.
type NamedAlgorithm struct {
	Name      string
	Algorithm Algorithm
	Params    Params
}

// Engine is one runnable pipeline instance wired from configuration.
// The algorithm slice keeps registration order, serving depends on it.
type Engine struct {
	DataSource       DataSource
	DataSourceParams Params
	Preparator       Preparator
	Algorithms       []NamedAlgorithm
	Serving          Serving
}
