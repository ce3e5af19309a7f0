package admin

import "github.com/giantswarm/microerror"

var validationError = &microerror.Error{
	Kind: "validationError",
}

// IsValidation asserts validationError.
func IsValidation(err error) bool {
	return microerror.Cause(err) == validationError
}

var solutionNotFoundError = &microerror.Error{
	Kind: "solutionNotFoundError",
}

// IsSolutionNotFound asserts solutionNotFoundError.
func IsSolutionNotFound(err error) bool {
	return microerror.Cause(err) == solutionNotFoundError
}

var notAuthorizedError = &microerror.Error{
	Kind: "notAuthorizedError",
}

// IsNotAuthorized asserts notAuthorizedError.
func IsNotAuthorized(err error) bool {
	return microerror.Cause(err) == notAuthorizedError
}
