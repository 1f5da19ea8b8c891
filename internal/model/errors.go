package model

import "errors"

var (
	InsufficientDataErr    = errors.New("insufficient data")
	InsufficientClassesErr = errors.New("insufficient classes")
	ModelNotFoundErr       = errors.New("model not found")
	TrainingFailureErr     = errors.New("training failure")
	PersistenceFailureErr  = errors.New("persistence failure")
	// InvalidVectorErr signals an empty feature vector or one that does not fit the model.
	InvalidVectorErr = errors.New("invalid feature vector")
)
