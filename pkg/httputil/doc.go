// Package httputil provides the HTTP plumbing used by remote clients such as
// the optical-constants service client.
//
// # Overview
//
//   - [Client]: JSON GET requests with default headers, status mapping and retries
//   - [Retry]: Automatic retry with exponential backoff
//
// # Retry
//
// [Retry] only repeats operations whose error is wrapped in
// [RetryableError]. [Client] wraps network failures and 5xx responses this
// way; a 404 maps to [ErrNotFound] and is returned immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return client.Get(ctx, url, &v)
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Request timeout: 10 seconds
//   - Max attempts: 3
//   - Base backoff: 1 second
package httputil
