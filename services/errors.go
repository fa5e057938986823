package services

import "errors"

// Errors shared across services and the HTTP mapping.
var (
	ErrValidationFailed = errors.New("validation failed")

	// Tournament creation / registration rules
	ErrTournamentTitleRequired    = errors.New("tournament title is required")
	ErrTournamentNoRounds         = errors.New("tournament requires at least one round")
	ErrTournamentRoundOrder       = errors.New("round numbers must be unique and strictly increasing from 1")
	ErrTournamentInvalidDateRange = errors.New("round end date must be after its start date")
	ErrTournamentDeadlineTooLate  = errors.New("registration deadline must not be after the first round start")
	ErrRegistrationClosed         = errors.New("tournament registration is closed")

	// Progression engine
	ErrInsufficientParticipants = errors.New("not enough participants to start the tournament")
	ErrMisconfiguredRound       = errors.New("round definition is missing required dates")
	ErrTieVote                  = errors.New("battle votes are tied")
	ErrNoCurrentRound           = errors.New("active tournament has no generated round")

	// Voting
	ErrVotingClosed = errors.New("battle is already resolved, voting closed")
	ErrInvalidSide  = errors.New("vote side must be A or B")
)
