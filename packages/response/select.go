package response

import (
	"fmt"
	"regexp"

	"github.com/abdul-hamid-achik/hitcall/packages/core/dotpath"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// CodeInvalidPattern is the code of PatternError.
const CodeInvalidPattern = "invalid_pattern"

// Selection picks a value out of a response record.
type Selection struct {
	// Select is a dotted path into {status, headers, body}.
	Select string
	// Pattern, when set, is applied to the selected value's string form.
	// The first capture group is returned, or the whole match when the
	// pattern has no groups.
	Pattern string
}

// PatternError reports a pattern that does not compile.
type PatternError struct {
	Code    string
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Select resolves sel against rec. Absent values and non-matching patterns
// yield nil.
func Select(rec *Record, sel Selection) (any, error) {
	return selectFrom(rec.Tree(), sel)
}

// compile returns the selection's pattern, nil when it has none.
func (sel Selection) compile() (*regexp.Regexp, error) {
	if sel.Pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(sel.Pattern)
	if err != nil {
		return nil, &PatternError{Code: CodeInvalidPattern, Pattern: sel.Pattern, Err: err}
	}
	return re, nil
}

func selectFrom(tree *value.Object, sel Selection) (any, error) {
	re, err := sel.compile()
	if err != nil {
		return nil, err
	}
	v, found := dotpath.Resolve(tree, sel.Select)
	if !found {
		return nil, nil
	}
	if re == nil {
		return v, nil
	}

	m := re.FindStringSubmatch(value.Format(v))
	if m == nil {
		return nil, nil
	}
	if re.NumSubexp() > 0 {
		return m[1], nil
	}
	return m[0], nil
}
