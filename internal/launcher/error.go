package launcher

import "github.com/giantswarm/microerror"

var notInstalledError = &microerror.Error{
	Kind: "notInstalledError",
}

// IsNotInstalled asserts notInstalledError.
func IsNotInstalled(err error) bool {
	return microerror.Cause(err) == notInstalledError
}

var expiredError = &microerror.Error{
	Kind: "expiredError",
}

// IsExpired asserts expiredError.
func IsExpired(err error) bool {
	return microerror.Cause(err) == expiredError
}

var launchFailedError = &microerror.Error{
	Kind: "launchFailedError",
}

// IsLaunchFailed asserts launchFailedError.
func IsLaunchFailed(err error) bool {
	return microerror.Cause(err) == launchFailedError
}
