package permission

import "strings"

const (
	// DefaultCode is the baseline permission every authenticated user
	// holds regardless of tenant state.
	DefaultCode = "VIEW_GENERAL_CATEGORY"

	// DefaultCategory is the category paired with DefaultCode.
	DefaultCategory = "GENERAL"
)

// Suffixes that mark a code's leading segment as a user-visible category.
const (
	suffixView   = "_VIEW"
	suffixManage = "_MANAGE"
)

// ImpliedCategory returns the category a code implies through its suffix.
// Codes ending in _VIEW or _MANAGE contribute the segment before the first
// underscore as a category, so fine-grained codes imply coarse visibility
// even when the catalog's category metadata is inconsistent. The second
// return value is false when the code implies nothing.
func ImpliedCategory(code string) (string, bool) {
	if !strings.HasSuffix(code, suffixView) && !strings.HasSuffix(code, suffixManage) {
		return "", false
	}

	head, _, found := strings.Cut(code, "_")
	if !found || head == "" {
		return "", false
	}
	return head, true
}
