package langs_test

import (
	"fmt"
	"slices"

	"github.com/matzehuels/langpatch/pkg/langs"
)

func ExampleClassify() {
	members := []string{
		"zlib-1.3/README",
		"zlib-1.3/src/main.cpp",
		"zlib-1.3/src/util.c",
	}

	set := langs.Classify(slices.Values(members))
	fmt.Println(set)
	fmt.Println(set.Tags())
	// Output:
	// {C, C++}
	// [c cxx]
}
