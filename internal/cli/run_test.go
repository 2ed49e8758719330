package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/langpatch/pkg/langs"
	"github.com/matzehuels/langpatch/pkg/pipeline"
	"github.com/matzehuels/langpatch/pkg/registry"
)

type runFixture struct {
	repo     string
	index    string
	work     string
	requests atomic.Int32
}

// newRunFixture serves two archives and writes an index plus definitions
// for zlib (C), fftw (C + Fortran) and docs (no compiled code).
func newRunFixture(t *testing.T) *runFixture {
	t.Helper()
	f := &runFixture{repo: t.TempDir(), work: t.TempDir()}

	archives := map[string][]byte{
		"/zlib.tar.gz": tarGz(t, "zlib-1.3/inflate.c", "zlib-1.3/zlib.h"),
		"/fftw.zip":    zipArchive(t, "fftw/api.c", "fftw/fortran/wrap.f03"),
		"/docs.tar.gz": tarGz(t, "docs/index.rst"),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		data, ok := archives[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(srv.Close)

	version := func(file, digest string) []registry.Version {
		return []registry.Version{{Version: "1.0", URL: srv.URL + file, Checksums: map[string]string{"sha256": digest}}}
	}
	idx := registry.Index{Packages: []registry.Package{
		{Name: "zlib", Versions: version("/zlib.tar.gz", "d-zlib")},
		{Name: "fftw", Versions: version("/fftw.zip", "d-fftw")},
		{Name: "py-docs", Versions: version("/docs.tar.gz", "d-docs")},
	}}
	data, err := json.Marshal(idx)
	if err != nil {
		t.Fatal(err)
	}
	f.index = writeFile(t, filepath.Join(f.work, "index.json"), data)

	writeFile(t, f.definition("zlib"), []byte(definition("Zlib")))
	writeFile(t, f.definition("fftw"), []byte(definition("Fftw")))
	writeFile(t, f.definition("py-docs"), []byte(definition("PyDocs")))
	return f
}

func (f *runFixture) definition(name string) string {
	return filepath.Join(f.repo, "packages", name, "package.py")
}

func (f *runFixture) args(extra ...string) []string {
	return append([]string{
		"run",
		"--index", f.index,
		"--repo", f.repo,
		"--download-dir", filepath.Join(f.work, "downloads"),
	}, extra...)
}

func (f *runFixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(f.definition(name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRunCommand(t *testing.T) {
	f := newRunFixture(t)
	report := filepath.Join(f.work, "report.json")

	out, err := execute(t, f.args("--report", report)...)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}

	zlib := f.read(t, "zlib")
	if !strings.Contains(zlib, `depends_on("c", type="build")  # generated`) {
		t.Errorf("zlib not patched:\n%s", zlib)
	}
	fftw := f.read(t, "fftw")
	for _, tag := range []string{"c", "fortran"} {
		if !strings.Contains(fftw, `depends_on("`+tag+`", type="build")  # generated`) {
			t.Errorf("fftw missing %s:\n%s", tag, fftw)
		}
	}
	if docs := f.read(t, "py-docs"); docs != definition("PyDocs") {
		t.Errorf("py-docs changed:\n%s", docs)
	}

	if _, err := os.Stat(filepath.Join(f.work, "downloads")); !os.IsNotExist(err) {
		t.Errorf("download dir left behind: %v", err)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var r pipeline.Report
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if r.RunID == "" {
		t.Error("report has no run id")
	}
	if r.Stats.ByStatus[pipeline.StatusPatched] != 2 || r.Stats.ByStatus[pipeline.StatusNoLanguages] != 1 {
		t.Errorf("by status = %v", r.Stats.ByStatus)
	}
	for _, o := range r.Outcomes {
		if o.Package == "fftw" && o.Added != langs.Of(langs.C, langs.Fortran) {
			t.Errorf("fftw added = %v", o.Added)
		}
	}

	if !strings.Contains(out, "Run summary") || !strings.Contains(out, "patched") {
		t.Errorf("summary missing:\n%s", out)
	}
}

func TestRunCommandCachesResults(t *testing.T) {
	isolateXDG(t)
	f := newRunFixture(t)

	if out, err := execute(t, f.args()...); err != nil {
		t.Fatalf("first run: %v\n%s", err, out)
	}
	first := f.requests.Load()
	if first != 3 {
		t.Fatalf("first run made %d requests, want 3", first)
	}

	// Restore one definition: its digest is cached, so nothing is downloaded
	// for it, yet it is patched again.
	writeFile(t, f.definition("zlib"), []byte(definition("Zlib")))
	out, err := execute(t, f.args()...)
	if err != nil {
		t.Fatalf("second run: %v\n%s", err, out)
	}
	// Only the pure documentation archive has an empty set and is fetched again.
	if got := f.requests.Load() - first; got != 1 {
		t.Errorf("second run made %d requests, want 1", got)
	}
	if !strings.Contains(f.read(t, "zlib"), `depends_on("c"`) {
		t.Error("zlib not patched from cached result")
	}
	if !strings.Contains(out, "already-patched") {
		t.Errorf("summary missing already-patched:\n%s", out)
	}
}

func TestRunCommandCachePrefixSeparatesRegistries(t *testing.T) {
	isolateXDG(t)
	f := newRunFixture(t)

	if out, err := execute(t, f.args("--cache-prefix", "mirror-a:")...); err != nil {
		t.Fatalf("first run: %v\n%s", err, out)
	}
	first := f.requests.Load()

	for _, name := range []string{"zlib", "fftw"} {
		writeFile(t, f.definition(name), []byte(definition(registry.ClassName(name))))
	}
	if out, err := execute(t, f.args("--cache-prefix", "mirror-b:")...); err != nil {
		t.Fatalf("second run: %v\n%s", err, out)
	}
	if got := f.requests.Load() - first; got != 3 {
		t.Errorf("run under another prefix made %d requests, want 3", got)
	}
}

func TestRunCommandDryRun(t *testing.T) {
	f := newRunFixture(t)

	out, err := execute(t, f.args("--dry-run", "--no-cache")...)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := f.read(t, "zlib"); got != definition("Zlib") {
		t.Errorf("dry run modified zlib:\n%s", got)
	}
	if !strings.Contains(out, "dry run") || !strings.Contains(out, "without --dry-run") {
		t.Errorf("dry run output:\n%s", out)
	}
}

func TestRunCommandStartAt(t *testing.T) {
	f := newRunFixture(t)

	// Packages are sorted by name: fftw, py-docs, zlib.
	if _, err := execute(t, f.args("--no-cache", "--start-at", "py-docs")...); err != nil {
		t.Fatal(err)
	}
	if got := f.read(t, "fftw"); got != definition("Fftw") {
		t.Error("fftw patched although before --start-at")
	}
	if !strings.Contains(f.read(t, "zlib"), "# generated") {
		t.Error("zlib not patched")
	}

	if _, err := execute(t, f.args("--no-cache", "--start-at", "nope")...); err == nil {
		t.Error("--start-at unknown package: want error")
	}
}

func TestRunCommandConfigFile(t *testing.T) {
	f := newRunFixture(t)
	cfg := writeFile(t, filepath.Join(f.work, "langpatch.toml"), []byte(
		"index = \""+filepath.ToSlash(f.index)+"\"\n"+
			"repo = \""+filepath.ToSlash(f.repo)+"\"\n"+
			"download_dir = \""+filepath.ToSlash(filepath.Join(f.work, "dl"))+"\"\n"+
			"batch_size = 1\n"))
	report := filepath.Join(f.work, "r.json")

	if _, err := execute(t, "run", "--config", cfg, "--no-cache", "--report", report); err != nil {
		t.Fatalf("run --config: %v", err)
	}
	data, _ := os.ReadFile(report)
	var r pipeline.Report
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatal(err)
	}
	if r.Stats.Batches != 3 {
		t.Errorf("batches = %d, want 3 from batch_size = 1", r.Stats.Batches)
	}
}

func TestRunCommandErrors(t *testing.T) {
	f := newRunFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no index", []string{"run", "--repo", f.repo}},
		{"missing index", []string{"run", "--index", filepath.Join(f.work, "nope.json")}},
		{"bad batch size", f.args("--batch-size", "0")},
		{"bad cache url", f.args("--cache-url", "memcached://localhost")},
		{"positional args", append(f.args(), "extra")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("%v: want error", tt.args)
			}
		})
	}
}
