package httputil_test

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/langpatch/pkg/httputil"
)

func ExampleCache() {
	dir := filepath.Join(os.TempDir(), "langpatch-example")
	cache, err := httputil.NewCache(dir, 24*time.Hour)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer os.RemoveAll(dir)

	index := cache.Namespace("index:")
	doc := map[string]string{"name": "zlib", "version": "1.3.1"}
	if err := index.Set("https://example.com/index.json", doc); err != nil {
		fmt.Println("Error:", err)
		return
	}

	var result map[string]string
	if ok, err := index.Get("https://example.com/index.json", &result); ok && err == nil {
		fmt.Println("Name:", result["name"])
		fmt.Println("Version:", result["version"])
	}
	// Output:
	// Name: zlib
	// Version: 1.3.1
}

func ExampleCheckStatus() {
	for _, code := range []int{200, 404, 503, 403} {
		err := httputil.CheckStatus(code)
		fmt.Println(code, err, httputil.IsRetryable(err))
	}
	// Output:
	// 200 <nil> false
	// 404 resource not found false
	// 503 network error: status 503 true
	// 403 network error: status 403 false
}
