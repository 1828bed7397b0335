// Package ws implements the websocket transport of the notes client on top of
// gorilla/websocket.
//
// The transport maps common.MessageKind to websocket text and binary frames, so the
// JSON serializer travels as text and the protobuf serializer as binary. Dialing honours
// the context passed to Dial (the client cancels it on connect timeout) as well as the
// handshake timeout from common.TransportConfig. An optional cookie is sent with the
// opening handshake for servers that authenticate the socket by session cookie.
//
// Every write gets the configured write deadline. Close sends a normal closure frame
// before tearing the socket down, which makes a blocked ReadMessage return.
package ws
