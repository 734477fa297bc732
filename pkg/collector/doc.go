// Package collector implements the cluster collection engine: dialing each
// inventory node, walking its paths of interest, stat-collecting the
// discovered entries, and committing complete node records into a shared
// store. Node failures are isolated; a run only fails outright when no node
// at all could be collected.
package collector
