// Package registry reads the package index that drives a patching run.
//
// An index is a JSON document listing packages, their versions, download
// URLs and checksums, and where each package's definition file lives in the
// repository:
//
//	{
//	  "packages": [
//	    {
//	      "name": "zlib",
//	      "versions": [
//	        {"version": "1.3.1", "url": "https://zlib.net/zlib-1.3.1.tar.gz",
//	         "checksums": {"sha256": "9a93b2b7..."}, "preferred": true}
//	      ]
//	    }
//	  ]
//	}
//
// [Load] accepts a local path or an http(s) URL. Remote indexes are fetched
// through a [Client], which retries transient failures and caches the
// decoded document.
//
// For each package, [Package.Source] picks the preferred version and
// returns its download URL and digest, or an error coded NO_VERSIONS,
// NO_USABLE_URL or NO_USABLE_DIGEST.
package registry
