/*
Package errors implements custom error interfaces for custody.

The package is built around root errors. A root error is a sentinel
carrying a unique numeric code and a description. All errors created
during runtime should wrap one of the root errors declared here, or one
registered by an extension. This allows error class tests (Is) and safe
transport of the failure class over the host's ABCI-style interface,
while keeping the full description and stack trace for the logs.

Create errors by wrapping a root:

	errors.Wrap(errors.ErrEmpty, "signer id")
	errors.Wrapf(errors.ErrOverflow, "%d signers", n)

and test them by class:

	if errors.ErrNotFound.Is(err) { ... }
*/
package errors
