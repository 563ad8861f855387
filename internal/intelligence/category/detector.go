// Package category implements the keyword-frequency classifier that maps
// free-form discovery text onto the fixed document category taxonomy.
package category

import (
	"sort"
	"strings"

	disc "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// keywordRule binds one category to its lowercase trigger keywords.
type keywordRule struct {
	category disc.Category
	keywords []string
}

// taxonomy is the ordered keyword table.  Detection ties break on declaration
// order (first strictly-highest count wins), so the slice order is part of
// the contract and must match disc.Categories.
var taxonomy = []keywordRule{
	{disc.CategoryFinancial, []string{
		"bank statement", "tax return", "financial", "account", "invoice",
		"receipt", "loan", "credit card", "income", "investment", "payroll",
		"audit", "balance sheet", "wire transfer",
	}},
	{disc.CategoryMedical, []string{
		"medical", "health", "doctor", "hospital", "prescription",
		"diagnosis", "treatment", "injury", "therapy", "patient",
		"physician", "clinic",
	}},
	{disc.CategoryEmployment, []string{
		"employment", "employee", "personnel", "salary", "wage",
		"termination", "hiring", "workplace", "human resources",
		"performance review", "timesheet", "job description",
	}},
	{disc.CategoryProperty, []string{
		"property", "real estate", "deed", "lease", "mortgage",
		"appraisal", "zoning", "easement", "landlord", "tenant",
		"title insurance", "survey",
	}},
	{disc.CategoryLegal, []string{
		"contract", "agreement", "correspondence", "court", "pleading",
		"deposition", "subpoena", "settlement", "attorney", "counsel",
		"memorandum", "affidavit",
	}},
	{disc.CategoryPersonal, []string{
		"personal", "family", "marriage", "divorce", "email",
		"text message", "photograph", "diary", "social media", "journal",
		"voicemail",
	}},
}

// Score describes one category's match against a piece of text.
type Score struct {
	Category        disc.Category `json:"category"`
	Score           int           `json:"score"`
	MatchedKeywords []string      `json:"matched_keywords"`
}

// Detector classifies text against the taxonomy.  It is stateless and safe
// for concurrent use.
type Detector struct{}

// NewDetector returns a ready-to-use Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// matchedKeywords returns the rule keywords occurring as substrings of the
// lowercased text.
func matchedKeywords(lower string, rule keywordRule) []string {
	var matched []string
	for _, kw := range rule.keywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// Detect maps text to the category with the strictly highest keyword count.
// Ties are not broken explicitly: the first category in taxonomy order to
// reach the maximum wins.  Returns false when every category scores zero.
func (d *Detector) Detect(text string) (disc.Category, bool) {
	lower := strings.ToLower(text)

	var best disc.Category
	bestScore := 0
	for _, rule := range taxonomy {
		score := len(matchedKeywords(lower, rule))
		if score > bestScore {
			bestScore = score
			best = rule.category
		}
	}
	if bestScore == 0 {
		return "", false
	}
	return best, true
}

// DetectAll returns every category with a non-zero score, sorted descending
// by score, each with its matched keyword list.  Used for diagnostics and
// UI, never for the core decision.
func (d *Detector) DetectAll(text string) []Score {
	lower := strings.ToLower(text)

	var scores []Score
	for _, rule := range taxonomy {
		matched := matchedKeywords(lower, rule)
		if len(matched) == 0 {
			continue
		}
		scores = append(scores, Score{
			Category:        rule.category,
			Score:           len(matched),
			MatchedKeywords: matched,
		})
	}
	// Stable sort keeps taxonomy order among equal scores.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// ExtractKeywords returns the deduplicated set of taxonomy keywords, across
// all categories, that occur in the text.  The matching engine scores these
// against document file names and subtypes.
func (d *Detector) ExtractKeywords(text string) []string {
	lower := strings.ToLower(text)

	seen := make(map[string]struct{})
	var keywords []string
	for _, rule := range taxonomy {
		for _, kw := range rule.keywords {
			if _, dup := seen[kw]; dup {
				continue
			}
			if strings.Contains(lower, kw) {
				seen[kw] = struct{}{}
				keywords = append(keywords, kw)
			}
		}
	}
	return keywords
}
