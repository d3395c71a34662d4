/*
	Package jsonrpc2 implements a transport-agnostic, bidirectional JSONRPC
	message layer.

	Message is a Request, a Notification (a Request without ID), or a Response.

	Codec is the transport and encoding. Once a Codec is established, it does
	not care which side initiated the connection.

	MessageStream delivers inbound messages to a read callback, queueing them
	until one is installed, and signals when the transport closes. CodecStream
	implements it on top of a Codec.

	Channel sends requests and notifications. StreamChannel correlates
	responses to outstanding requests by ID, allowing many calls in flight with
	responses arriving in any order. Inbound requests and notifications are
	dispatched to a Listener. When the stream closes, every pending call fails
	with ErrStreamClosed.

	When a Listener receives a call, its context contains the Channel the call
	arrived on, which can be acquired with CtxChannel(ctx) to call back the
	caller.
*/
package jsonrpc2
