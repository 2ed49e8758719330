// Package pkg provides the core libraries for langpatch.
//
// # Overview
//
// Langpatch adds build dependency declarations for compiled languages to
// package definitions. For each package of a registry index it downloads the
// source archive, lists its members, classifies them by extension, and
// inserts one generated depends_on line per language after the definition's
// version table. The pkg directory is organized into three areas:
//
//  1. Domain logic: [archive], [langs], [anchor], [patch]
//  2. Collaborators: [registry], [fetch], [cache], [httputil]
//  3. Orchestration: [pipeline], with [errors], [observability] and
//     [buildinfo] as shared support
//
// # Architecture
//
// The data flow of one batch:
//
//	registry index
//	     ↓
//	[registry] preferred version → URL + digest
//	     ↓
//	[fetch] archives named by digest        [cache] digest → languages
//	     ↓
//	[archive] member paths
//	     ↓
//	[langs] language set
//	     ↓
//	[anchor] line after the last version() call
//	     ↓
//	[patch] rewritten definition text
//
// # Quick Start
//
//	idx, _ := registry.Load(ctx, "index.json", registry.LoadOptions{})
//	runner := pipeline.NewRunner(fetch.New(fetch.Options{}), nil, nil, logger)
//	report, err := runner.Run(ctx, idx.Packages, pipeline.Options{Repo: "."})
//
// The individual steps are usable on their own:
//
//	ctr, _ := archive.InspectFile("zlib-1.3.tar.gz")
//	set := langs.Classify(ctr.Members())
//	line, _ := anchor.Locate(src, "Zlib")
//	out, _ := patch.Insert(string(src), line, patch.Declarations(set))
//
// [archive]: github.com/matzehuels/langpatch/pkg/archive
// [langs]: github.com/matzehuels/langpatch/pkg/langs
// [anchor]: github.com/matzehuels/langpatch/pkg/anchor
// [patch]: github.com/matzehuels/langpatch/pkg/patch
// [registry]: github.com/matzehuels/langpatch/pkg/registry
// [fetch]: github.com/matzehuels/langpatch/pkg/fetch
// [cache]: github.com/matzehuels/langpatch/pkg/cache
// [httputil]: github.com/matzehuels/langpatch/pkg/httputil
// [pipeline]: github.com/matzehuels/langpatch/pkg/pipeline
// [errors]: github.com/matzehuels/langpatch/pkg/errors
// [observability]: github.com/matzehuels/langpatch/pkg/observability
// [buildinfo]: github.com/matzehuels/langpatch/pkg/buildinfo
package pkg
