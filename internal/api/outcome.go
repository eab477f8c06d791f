package api

// OutcomeKind tags the result of a submission.
type OutcomeKind int

const (
	LoginSuccess OutcomeKind = iota
	LoginUnknownUser
	LoginAlreadyActive
	LogoutSuccess
	LogoutUnknownUser
	RegistrationSuccess
	RegistrationFailure
)

// Outcome is the interpreted result of one remote identity operation.
// User carries the identity the service matched or acted on; Detail holds
// any extra message the service sent back.
type Outcome struct {
	Kind   OutcomeKind
	User   string
	Detail string
}
