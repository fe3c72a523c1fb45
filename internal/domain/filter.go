package domain

import (
	"fmt"
	"strings"
)

// Filter mappings for the Users and Groups collections. The structs are
// bound from the query string by the transport layer and validated here
// before they ever reach the store.

// SortKey is one entry of a multi-key sort, primary first.
type SortKey struct {
	Field string
	Desc  bool
}

var userFields = map[string]struct{}{
	"userid": {}, "username": {}, "firstname": {},
	"lastname": {}, "email": {}, "phone": {},
}

var groupFields = map[string]struct{}{
	"groupid": {}, "groupname": {}, "description": {},
}

type UserFilter struct {
	Username  string `form:"username"`
	Firstname string `form:"firstname"`
	Lastname  string `form:"lastname"`
	Email     string `form:"email"`
	Phone     string `form:"phone"`
	GroupID   *int64 `form:"groupid"`
	Member    *int64 `form:"member"`
	Locked    *bool  `form:"locked"`
	Admin     *bool  `form:"admin"`
	SortBy    string `form:"sortBy"`
	Offset    int    `form:"offset"`
	Limit     *int   `form:"limit"`
	Fields    string `form:"fields"`
}

func (f *UserFilter) Validate() error {
	if err := validateNameSet("username", f.Username, false); err != nil {
		return err
	}
	if err := validateNameSet("firstname", f.Firstname, true); err != nil {
		return err
	}
	if err := validateNameSet("lastname", f.Lastname, true); err != nil {
		return err
	}
	if err := validateRange(f.Offset, f.Limit); err != nil {
		return err
	}
	if err := validateSortBy(f.SortBy, userFields); err != nil {
		return err
	}
	return validateFields(f.Fields, userFields)
}

// SortKeys returns the parsed sortBy list; an empty sortBy defaults to
// ascending userid, matching storage order.
func (f *UserFilter) SortKeys() []SortKey { return parseSortBy(f.SortBy, "userid") }

func (f *UserFilter) ReturnFields() []string { return SplitCSV(f.Fields) }

type GroupFilter struct {
	Groupname string `form:"groupname"`
	Member    *int64 `form:"member"`
	SortBy    string `form:"sortBy"`
	Offset    int    `form:"offset"`
	Limit     *int   `form:"limit"`
	Fields    string `form:"fields"`
}

func (f *GroupFilter) Validate() error {
	if err := validateNameSet("groupname", f.Groupname, false); err != nil {
		return err
	}
	if err := validateRange(f.Offset, f.Limit); err != nil {
		return err
	}
	if err := validateSortBy(f.SortBy, groupFields); err != nil {
		return err
	}
	return validateFields(f.Fields, groupFields)
}

func (f *GroupFilter) SortKeys() []SortKey { return parseSortBy(f.SortBy, "groupid") }

func (f *GroupFilter) ReturnFields() []string { return SplitCSV(f.Fields) }

// SplitCSV splits a comma-separated parameter value, returning nil for
// an empty value.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func parseSortBy(s, def string) []SortKey {
	if s == "" {
		s = def
	}
	parts := SplitCSV(s)
	keys := make([]SortKey, 0, len(parts))
	for _, p := range parts {
		k := SortKey{Field: p}
		if strings.HasPrefix(p, "-") {
			k = SortKey{Field: p[1:], Desc: true}
		}
		keys = append(keys, k)
	}
	return keys
}

func validateSortBy(s string, allowed map[string]struct{}) error {
	for _, p := range SplitCSV(s) {
		name := strings.TrimPrefix(p, "-")
		if _, ok := allowed[name]; !ok {
			return Validation(fmt.Sprintf("unknown sortBy field %q", name))
		}
	}
	return nil
}

func validateFields(s string, allowed map[string]struct{}) error {
	for _, p := range SplitCSV(s) {
		if _, ok := allowed[p]; !ok {
			return Validation(fmt.Sprintf("unknown name %q in fields", p))
		}
	}
	return nil
}

func validateRange(offset int, limit *int) error {
	if offset < 0 {
		return Validation("offset must not be negative")
	}
	if limit != nil && *limit < 1 {
		return Validation("limit must be positive")
	}
	return nil
}

// validateNameSet checks every value of a comma-separated name filter.
// Values are matched exactly against stored names, so only the
// characters a stored name can contain are accepted.
func validateNameSet(key, s string, allowHyphen bool) error {
	for _, n := range SplitCSV(s) {
		if n == "" || !isNameToken(n, allowHyphen) {
			return Validation(fmt.Sprintf("unexpected value %q for %q", n, key))
		}
	}
	return nil
}

func isNameToken(s string, allowHyphen bool) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		case allowHyphen && r == '-':
		default:
			return false
		}
	}
	return true
}
