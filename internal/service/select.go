package service

// SelectLocation reconciles the two location signals into one choice.
// Image evidence outranks text when both exist; otherwise whichever signal
// is present wins; with neither, enrichment is skipped for the post.
func SelectLocation(candidates []string, landmark string) (string, bool) {
	switch {
	case landmark != "" && len(candidates) > 0:
		return landmark, true
	case len(candidates) > 0:
		return candidates[0], true
	case landmark != "":
		return landmark, true
	default:
		return "", false
	}
}
