// Package remote provides the peer channel abstraction used to execute
// operations on cluster nodes: an SSH-backed production implementation and
// an os-backed local implementation with identical contracts.
//
// The collection engine never talks to a transport directly; everything goes
// through Channel so failure semantics (host unreachable vs remote call
// failure vs timeout) stay uniform across transports.
package remote
