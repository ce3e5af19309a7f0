package identity

import "github.com/giantswarm/microerror"

var notFoundError = &microerror.Error{
	Kind: "notFoundError",
}

// IsNotFound asserts notFoundError.
func IsNotFound(err error) bool {
	return microerror.Cause(err) == notFoundError
}

var lookupFailedError = &microerror.Error{
	Kind: "lookupFailedError",
}

// IsLookupFailed asserts lookupFailedError.
func IsLookupFailed(err error) bool {
	return microerror.Cause(err) == lookupFailedError
}
