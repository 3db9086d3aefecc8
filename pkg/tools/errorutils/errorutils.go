package errorutils

import "fmt"

// DataUnavailableError means the data source cannot be read,
// it is fatal to the train run that hit it.
type DataUnavailableError struct {
	Source string
	Cause  error
}

func NewDataUnavailableError(source string, cause error) *DataUnavailableError {
	return &DataUnavailableError{Source: source, Cause: cause}
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data source %s unavailable: %v", e.Source, e.Cause)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Cause
}

// InvalidTrainingDataError means the preparator rejected the training data,
// it is fatal to the train run that hit it.
type InvalidTrainingDataError struct {
	Reason string
}

func NewInvalidTrainingDataError(reason string) *InvalidTrainingDataError {
	return &InvalidTrainingDataError{Reason: reason}
}

func (e *InvalidTrainingDataError) Error() string {
	return "invalid training data: " + e.Reason
}

// TrainFailureError means one algorithm could not produce a model,
// the whole engine instance is marked failed.
type TrainFailureError struct {
	Algorithm string
	Cause     error
}

func NewTrainFailureError(algorithm string, cause error) *TrainFailureError {
	return &TrainFailureError{Algorithm: algorithm, Cause: cause}
}

func (e *TrainFailureError) Error() string {
	return fmt.Sprintf("algorithm %s train failed: %v", e.Algorithm, e.Cause)
}

func (e *TrainFailureError) Unwrap() error {
	return e.Cause
}

// PredictionFailureError means one algorithm could not answer one query,
// for example the query references a subject absent from the training data.
// It is recovered per algorithm per query, never a crash.
type PredictionFailureError struct {
	Algorithm string
	Reason    string
}

func NewPredictionFailureError(algorithm, reason string) *PredictionFailureError {
	return &PredictionFailureError{Algorithm: algorithm, Reason: reason}
}

func (e *PredictionFailureError) Error() string {
	return fmt.Sprintf("algorithm %s cannot predict: %s", e.Algorithm, e.Reason)
}

// NoPredictionAvailableError means every algorithm failed for a query,
// surfaced to the caller as a request level failure.
type NoPredictionAvailableError struct {
	User string
}

func NewNoPredictionAvailableError(user string) *NoPredictionAvailableError {
	return &NoPredictionAvailableError{User: user}
}

func (e *NoPredictionAvailableError) Error() string {
	return "no prediction available for user " + e.User
}

// DeployInconsistencyError means SetCurrent was invoked for an instance
// that is not in the trained state, the current pointer stays unchanged.
type DeployInconsistencyError struct {
	Instance string
	Status   string
}

func NewDeployInconsistencyError(instance, status string) *DeployInconsistencyError {
	return &DeployInconsistencyError{Instance: instance, Status: status}
}

func (e *DeployInconsistencyError) Error() string {
	return fmt.Sprintf("instance %s is %s, only a trained instance is deployable", e.Instance, e.Status)
}
