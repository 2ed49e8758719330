// Package httputil provides the HTTP plumbing shared by the registry
// client and the archive fetcher.
//
// # Overview
//
//   - [Cache]: file-based caching of decoded responses (remote registry indexes)
//   - [Retry]: retry with exponential backoff for transient failures
//   - [CheckStatus]: maps response status codes to retryable or permanent errors
//   - [NewClient]: an *http.Client whose transport reports to the
//     observability HTTP hooks and sets a User-Agent
//
// # Caching
//
// [Cache] stores JSON documents under the langpatch cache directory
// ($XDG_CACHE_HOME/langpatch/http or ~/.cache/langpatch/http) with a
// configurable TTL:
//
//	cache, err := httputil.NewCache("", time.Hour)
//	var idx registry.Index
//	if ok, _ := cache.Get(url, &idx); !ok {
//	    idx = download(url)
//	    cache.Set(url, idx)
//	}
//
// Keys should be namespaced with [Cache.Namespace] to avoid collisions.
//
// # Retry
//
// [Retry] only retries errors wrapped in [RetryableError]. [CheckStatus]
// wraps 5xx and 429 responses that way; network errors are wrapped by the
// callers that know whether a retry is still safe. The fetcher, for
// example, stops retrying once bytes have been written to disk.
//
// The cache can be cleared via `langpatch cache clear` or by deleting the
// cache directory.
package httputil
