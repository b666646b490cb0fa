package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrSessionNotFound is returned when an assessment session does not exist.
	ErrSessionNotFound = errors.New("assessment session not found")
	// ErrSessionFinished is returned when answers arrive after the last question.
	ErrSessionFinished = errors.New("assessment session already finished")
	// ErrInvalidState is returned when restored adaptive state does not match
	// the expected shape (wrong arm count, negative counters).
	ErrInvalidState = errors.New("invalid adaptive state")
)
