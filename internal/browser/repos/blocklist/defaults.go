package blocklist

import "github.com/haukened/beacon/internal/browser/domain"

// BuiltinSource attributes the compiled-in fragment sets.
const BuiltinSource = "builtin"

// defaultDomains and defaultKeywords are ordered; evaluation order decides
// which fragment is reported when several match.
var (
	defaultDomains = []string{
		"pornhub", "xvideos", "xhamster", "redtube", "youporn",
		"porn", "xxx", "adult",
	}
	defaultKeywords = []string{
		"porn", "xxx", "adult", "sex", "nude", "naked", "explicit",
		"erotic", "mature", "nsfw", "dating", "hookup", "escort",
		"casino", "gambling", "betting", "poker", "lottery",
	}
)

// DefaultDomainFragments returns a fresh copy of the built-in domain fragments.
func DefaultDomainFragments() []domain.Fragment {
	return builtin(defaultDomains, domain.FragmentDomain)
}

// DefaultKeywordFragments returns a fresh copy of the built-in keyword fragments.
func DefaultKeywordFragments() []domain.Fragment {
	return builtin(defaultKeywords, domain.FragmentKeyword)
}

func builtin(texts []string, kind domain.FragmentKind) []domain.Fragment {
	out := make([]domain.Fragment, 0, len(texts))
	for _, t := range texts {
		out = append(out, domain.Fragment{Text: t, Kind: kind, Source: BuiltinSource})
	}
	return out
}
