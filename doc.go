/*
Package custody defines all common interfaces and small value types that
wire together the custody account engine and its collaborators.

The account engine itself lives in the account package. This package only
holds what every layer must agree on: the store interfaces, the signer and
address types, the request envelope, the routed message and handler
contracts, and the interfaces of the external primitives the engine
consumes (signature verification, call dispatch, code lookup and event
broadcast).

We pass context through context.Context between the embedding host, the
pipeline decorators and the handlers. There exist two functions for every
XYZ of type T supported in the context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) T
*/
package custody
