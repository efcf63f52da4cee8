package pipeline

// #region imports
import "fmt"

// #endregion

// #region dependency-error

// DependencyError reports an unsatisfiable stage ordering detected at
// build time, before any data is touched.
type DependencyError struct {
	Reason string
}

func (e *DependencyError) Error() string {
	return "dependency error: " + e.Reason
}

// #endregion dependency-error

// #region stage-error

// StageError wraps a failure raised by a stage's Apply on the given input.
type StageError struct {
	StageID string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.StageID, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// #endregion stage-error

// #region data-consistency-error

// DataConsistencyError reports a stage that declared a produced profile
// field it did not actually populate.
type DataConsistencyError struct {
	StageID string
	Field   string
	Reason  string
}

func (e *DataConsistencyError) Error() string {
	return fmt.Sprintf("data consistency: stage %s claims field %q: %s", e.StageID, e.Field, e.Reason)
}

// #endregion data-consistency-error
