package recipe

import (
	"github.com/grovetools/justrun/errors"
	"github.com/moby/patternmatcher"
)

// Match keeps the recipes whose names match any of the glob patterns.
// Patterns prefixed with "!" exclude. No patterns keeps everything.
func Match(recipes []Recipe, patterns []string) ([]Recipe, error) {
	if len(patterns) == 0 {
		return recipes, nil
	}

	pm, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid match pattern")
	}

	var out []Recipe
	for _, r := range recipes {
		matched, err := pm.MatchesOrParentMatches(r.Name)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid match pattern")
		}
		if matched {
			out = append(out, r)
		}
	}
	return out, nil
}
