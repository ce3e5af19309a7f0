package install

import "github.com/giantswarm/microerror"

var sourceMissingError = &microerror.Error{
	Kind: "sourceMissingError",
}

// IsSourceMissing asserts sourceMissingError.
func IsSourceMissing(err error) bool {
	return microerror.Cause(err) == sourceMissingError
}

var ioFailureError = &microerror.Error{
	Kind: "ioFailureError",
}

// IsIOFailure asserts ioFailureError.
func IsIOFailure(err error) bool {
	return microerror.Cause(err) == ioFailureError
}

var insufficientSpaceError = &microerror.Error{
	Kind: "insufficientSpaceError",
}

// IsInsufficientSpace asserts insufficientSpaceError.
func IsInsufficientSpace(err error) bool {
	return microerror.Cause(err) == insufficientSpaceError
}
