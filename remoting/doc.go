/*
	Package remoting exposes Go services over a jsonrpc2.Channel and builds
	local proxies for remote ones.

	Every remote operation is named by a compound method "remoteId/methodName".
	A service is described by an ordered list of MethodInfo descriptors; one-way
	methods are only ever invoked as notifications, two-way methods only as
	requests. Descriptors are supplied explicitly, either by a Describer
	implementation (see TypedReflector) or by a Funcs table.

	Server is a jsonrpc2.Listener holding the registry of services. It answers
	protocol mistakes with structured errors, passes ServiceError values
	through verbatim and masks every other failure. Each Server also serves
	the "$remotingServer" meta service, whose "getObjectInfo" method returns
	the descriptors of a registered service.

	Proxy is the caller side: built from a ServiceInfo, or discovered with
	Discover, it forwards calls by name over a Channel.

	Session ties a Server and a StreamChannel to a single MessageStream, the
	usual setup for one connection.
*/
package remoting
