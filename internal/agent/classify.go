package agent

import "strings"

// Keyword sets for classification. The rule order below is a deliberate
// precedence policy: an email mentioning both "newsletter" and "deadline"
// is marketing, because marketing is checked first.
var (
	marketingKeywords = []string{
		"sale",
		"discount",
		"exclusive offer",
		"newsletter",
		"update",
		"promotion",
		"promo",
		"deal",
		"limited time",
		"coupon",
		"subscribe",
		"unsubscribe",
		"marketing",
	}

	importantKeywords = []string{
		"meeting",
		"invoice",
		"contract",
		"deadline",
		"action required",
		"follow up",
		"proposal",
		"review",
		"project",
		"urgent",
		"important",
		"approval",
		"deliverable",
	}

	transactionalKeywords = []string{
		"receipt",
		"statement",
		"transaction",
		"payment",
		"confirmation",
		"order",
		"ticket",
		"booking",
	}
)

// classificationRules is evaluated in order; the first rule with any keyword
// match wins. Reordering changes behavior on ambiguous input.
var classificationRules = []struct {
	category Category
	keywords []string
	reason   string
}{
	{CategoryMarketing, marketingKeywords, "Marketing keyword detected"},
	{CategoryImportant, importantKeywords, "Contains formal or time-sensitive request"},
	{CategoryTransactional, transactionalKeywords, "Transactional content detected"},
}

// Classify maps an email to exactly one category via case-insensitive
// substring matching over subject and body.
func Classify(email Email) Classification {
	content := strings.ToLower(email.Subject + " " + email.Body)

	for _, rule := range classificationRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(content, keyword) {
				return Classification{Category: rule.category, Reason: rule.reason}
			}
		}
	}

	return Classification{Category: CategoryPersonal, Reason: "Default classification"}
}
