// Package archive lists the member paths of downloaded source archives
// without extracting them.
//
// # Overview
//
// Source archives arrive from arbitrary web servers, frequently truncated
// because transfers run under a hard time limit. [Inspect] therefore never
// fails on a damaged archive: it recognises the container family and
// returns a [Container] whose [Container.Members] sequence yields whatever
// member names can be read.
//
// Two container families are recognised, in this order:
//
//   - Tar, raw or wrapped in gzip, bzip2, xz or zstd. The first header block
//     must carry a valid checksum. Headers are read one after another until
//     the first structural error; members read before that point are still
//     yielded. Only regular files are reported.
//   - Zip. The buffer must start with "PK". Instead of walking the central
//     directory (missing in truncated downloads) the whole buffer is scanned
//     for local file header signatures (50 4B 03 04) and each header's
//     declared file name is taken verbatim. Candidates that overrun the
//     buffer, declare an empty name or are not valid UTF-8 are dropped one
//     by one.
//
// Anything else yields [ErrNotContainer].
//
// Member content is never decompressed to disk; compressed tar streams are
// only decoded far enough to skip from one header to the next.
package archive
