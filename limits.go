package stelace

const (
	// MaxLimit is the upper bound for nbResultsPerPage.
	MaxLimit = 100
	// DefaultLimit is the page size used when the request omits one.
	DefaultLimit = 20
)

// IsNormalizedLimitMax normalizes limit against maxLimit and reports
// whether the input was already within bounds. Intended for the
// request-decoding layer; the pagers themselves never coerce.
func IsNormalizedLimitMax(limit int, maxLimit int) (int, bool) {
	if limit <= 0 {
		return DefaultLimit, false
	} else if limit > maxLimit {
		return maxLimit, false
	}

	return limit, true
}

func NormalizeLimitMax(limit int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

func NormalizeLimit(limit int) int {
	return NormalizeLimitMax(limit, MaxLimit)
}

// validLimit reports whether limit satisfies the caller contract for
// the cursor paginator.
func validLimit(limit int) bool {
	return limit >= 1 && limit <= MaxLimit
}
