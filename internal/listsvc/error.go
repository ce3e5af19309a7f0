package listsvc

import "github.com/giantswarm/microerror"

var networkOrAuthFailureError = &microerror.Error{
	Kind: "networkOrAuthFailureError",
}

// IsNetworkOrAuthFailure asserts networkOrAuthFailureError. Every transport,
// authentication and protocol failure of the list service is reported as this
// kind so callers can treat them uniformly when deciding to fall back.
func IsNetworkOrAuthFailure(err error) bool {
	return microerror.Cause(err) == networkOrAuthFailureError
}
