// Package errors provides structured error types for better observability
// and programmatic error handling across the collection engine.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeRemoteCall,
//	    "failed to stat remote path",
//	    cause,
//	    map[string]interface{}{
//	        "path": "/etc/ceph/ceph.conf",
//	        "host": hostname,
//	    },
//	)
package errors
