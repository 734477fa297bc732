// Package cli implements the cephmedic command line interface.
package cli
