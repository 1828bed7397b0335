// Package unix implements the Unix domain socket connector for the notes client's
// stream transport. Endpoints look like unix:///run/qn.sock; everything after the
// scheme separator is used as the socket path.
package unix
