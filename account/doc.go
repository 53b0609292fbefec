/*
Package account implements the authorization core of a multi-party
controlled account.

The account holds an ordered registry of up to 32 approver identities and
an approval threshold. Every incoming request passes a two gate pipeline:
Validate checks the structure of the call batch and the aggregate
signature against the current policy, Execute dispatches the calls
all-or-nothing under a reentrancy guard. The policy itself is changed by
governance operations (threshold change, signer add/remove/replace) and
the account's executable logic by the two-phase upgrade protocol. Both
are ordinary requests: they must pass the same pipeline and are then
routed back into this package's handlers with the account itself as the
caller, which is the only caller they accept.
*/
package account
