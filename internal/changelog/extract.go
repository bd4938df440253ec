package changelog

import "log/slog"

// ExtractLabels derives extra labels for each pull request from the given
// extractors and appends them in place. It returns prs for chaining.
//
// An extractor reads the field named by its OnProperty (the body by default).
// If that field is missing on a pull request the body is read instead and a
// warning is logged. The label is the extractor target expanded against the
// first match; no match, or an empty expansion, adds nothing. Each extractor
// adds at most one label per pull request.
func ExtractLabels(prs []PullRequest, extractors []Transformer, logger *slog.Logger) []PullRequest {
	if logger == nil {
		logger = slog.Default()
	}

	for _, ex := range extractors {
		if ex.Pattern == nil {
			continue
		}
		for i := range prs {
			pr := &prs[i]
			source, ok := ex.OnProperty.value(pr)
			if !ok {
				logger.Warn("label_extractor property is not valid, using body",
					"property", ex.property, "pr", pr.Number)
				source = pr.Body
			}

			if label := extractLabel(ex, source); label != "" {
				pr.Labels = append(pr.Labels, label)
			}
		}
	}
	return prs
}

// extractLabel expands the target against the first match only; text around
// the match never ends up in the label.
func extractLabel(ex Transformer, source string) string {
	match := ex.Pattern.FindStringSubmatchIndex(source)
	if match == nil {
		return ""
	}
	return string(ex.Pattern.ExpandString(nil, ex.Target, source, match))
}
