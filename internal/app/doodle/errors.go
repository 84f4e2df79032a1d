package doodle

import "errors"

// Mensagens em inglês são exibidas literalmente pelo app.
var (
	ErrUnauthenticated        = errors.New("User must be authenticated")
	ErrMissingField           = errors.New("Missing required field")
	ErrAlreadySubmitted       = errors.New("You have already doodled today")
	ErrSubmissionWindowClosed = errors.New("Submissions are closed for today")
	ErrAlreadyVoted           = errors.New("User has already voted today")
	ErrVotingWindowClosed     = errors.New("Voting is closed right now")
	ErrTargetNotFound         = errors.New("Drawing does not exist")
	ErrSelfVote               = errors.New("You cannot vote for your own doodle")
	ErrTargetOutsideRoom      = errors.New("Drawing is not in your room")
	ErrThemeNotFound          = errors.New("Theme of the day is not available yet")
	ErrUserExists             = errors.New("User profile already exists")
	ErrUserNotFound           = errors.New("User document not found")
	ErrEmailNotVerified       = errors.New("User's email is not verified")
)
