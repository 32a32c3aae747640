package service

import "errors"

var (
	// ErrQuestionsNotFound is terminal: the section has no questions to attempt.
	ErrQuestionsNotFound = errors.New("no questions found for section")
	ErrSessionNotFound   = errors.New("session not found")
	// ErrBeginInFlight rejects a Begin for a key whose Begin is still running.
	ErrBeginInFlight        = errors.New("session initialization already in progress")
	ErrReadOnly             = errors.New("session is in review and cannot be modified")
	ErrNotInProgress        = errors.New("session is not in progress")
	ErrConfirmationRequired = errors.New("submission requires confirmation")
	ErrInvalidIndex         = errors.New("invalid question or option index")
	ErrAttemptClosed        = errors.New("attempt has been exited")
	ErrTimeExpired          = errors.New("time limit reached, submission pending")
	ErrQuestionSetChanged   = errors.New("stored question set no longer matches the question provider")
)
