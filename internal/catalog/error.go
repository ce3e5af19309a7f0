package catalog

import "github.com/giantswarm/microerror"

var invalidEntryError = &microerror.Error{
	Kind: "invalidEntryError",
}

// IsInvalidEntry asserts invalidEntryError.
func IsInvalidEntry(err error) bool {
	return microerror.Cause(err) == invalidEntryError
}

var malformedDateError = &microerror.Error{
	Kind: "malformedDateError",
}

// IsMalformedDate asserts malformedDateError.
func IsMalformedDate(err error) bool {
	return microerror.Cause(err) == malformedDateError
}

var malformedVersionError = &microerror.Error{
	Kind: "malformedVersionError",
}

// IsMalformedVersion asserts malformedVersionError.
func IsMalformedVersion(err error) bool {
	return microerror.Cause(err) == malformedVersionError
}
