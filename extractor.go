package tikz

// ExtractFigures runs the full extraction pipeline over raw e-print archive
// bytes: archive detection, archive-wide library collection, then per file
// and per environment the balanced scan, nesting filter, and caption/label
// association. Figure indices are contiguous from 0 across the whole run.
//
// An unrecognizable archive or an archive without TikZ environments yields
// an empty slice; "no figures" is a normal outcome, not an error.
func ExtractFigures(data []byte, paperID string) []Figure {
	return extractFigures(DetectArchive(data), paperID)
}

func extractFigures(files []SourceFile, paperID string) []Figure {
	if len(files) == 0 {
		return nil
	}

	libraries := CollectLibraries(files)

	var figures []Figure
	index := 0
	for _, f := range files {
		for _, env := range Environments {
			for _, block := range ExtractEnvironments(f.Text, env) {
				// An axis inside a tikzpicture is part of that figure,
				// not a figure of its own.
				if env == "axis" && NestedInTikzPicture(f.Text, block.Start) {
					continue
				}

				figures = append(figures, Figure{
					PaperID:    paperID,
					Index:      index,
					Type:       TypeForEnvironment(env),
					Code:       block.Code,
					SourceFile: f.Path,
					Libraries:  libraries,
					Caption:    CaptionNear(f.Text, block.Start),
					Label:      LabelNear(f.Text, block.Start),
				})
				index++
			}
		}
	}

	return figures
}
