package tikz

import (
	"reflect"
	"testing"
)

func TestCollectLibraries(t *testing.T) {
	tests := []struct {
		name  string
		files []SourceFile
		want  []string
	}{
		{
			name:  "no declarations",
			files: []SourceFile{{Path: "a.tex", Text: `\documentclass{article}`}},
			want:  []string{},
		},
		{
			name: "single declaration with list",
			files: []SourceFile{
				{Path: "a.tex", Text: `\usetikzlibrary{arrows, positioning}`},
			},
			want: []string{"arrows", "positioning"},
		},
		{
			name: "union across files deduplicated and sorted",
			files: []SourceFile{
				{Path: "a.tex", Text: `\usetikzlibrary{shapes,arrows}`},
				{Path: "b.tex", Text: `\usetikzlibrary{arrows,calc}`},
			},
			want: []string{"arrows", "calc", "shapes"},
		},
		{
			name: "whitespace around names trimmed",
			files: []SourceFile{
				{Path: "a.tex", Text: "\\usetikzlibrary{ decorations.pathmorphing ,\n  calc }"},
			},
			want: []string{"calc", "decorations.pathmorphing"},
		},
		{
			name: "empty entries from stray commas dropped",
			files: []SourceFile{
				{Path: "a.tex", Text: `\usetikzlibrary{arrows,,calc,}`},
			},
			want: []string{"arrows", "calc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollectLibraries(tt.files)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
