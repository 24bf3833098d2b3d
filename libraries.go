package tikz

import (
	"regexp"
	"sort"
	"strings"
)

var usetikzlibrary = regexp.MustCompile(`\\usetikzlibrary\{([^}]+)\}`)

// CollectLibraries scans every source file for \usetikzlibrary declarations
// and returns the union of declared library names, deduplicated and sorted.
// The set is archive-wide: figures do not track which file declared what.
func CollectLibraries(files []SourceFile) []string {
	seen := make(map[string]bool)
	for _, f := range files {
		for _, m := range usetikzlibrary.FindAllStringSubmatch(f.Text, -1) {
			for _, lib := range strings.Split(m[1], ",") {
				lib = strings.TrimSpace(lib)
				if lib != "" {
					seen[lib] = true
				}
			}
		}
	}

	libs := make([]string, 0, len(seen))
	for lib := range seen {
		libs = append(libs, lib)
	}
	sort.Strings(libs)
	return libs
}
