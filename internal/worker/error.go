package worker

import "github.com/giantswarm/microerror"

var notInstalledError = &microerror.Error{
	Kind: "notInstalledError",
}

// IsNotInstalled asserts notInstalledError.
func IsNotInstalled(err error) bool {
	return microerror.Cause(err) == notInstalledError
}
