package data

import "strings"

// Sep separates account name components. AltSep is accepted on input and
// normalized to Sep.
const (
	Sep    = ":"
	AltSep = "/"
)

// CanonicalAccount rewrites name to use Sep only.
func CanonicalAccount(name string) string {
	return strings.ReplaceAll(name, AltSep, Sep)
}

// AccountParts splits an account name into its components.
func AccountParts(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Split(CanonicalAccount(name), Sep)
}

// ValidAccount reports whether name has at least one component and no empty ones.
func ValidAccount(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range AccountParts(name) {
		if part == "" {
			return false
		}
	}
	return true
}

// AccountRoot returns the first component of an account name.
func AccountRoot(name string) string {
	root, _, _ := strings.Cut(CanonicalAccount(name), Sep)
	return root
}

// AccountParent returns the parent of name, or "" for a root account.
func AccountParent(name string) string {
	name = CanonicalAccount(name)
	i := strings.LastIndex(name, Sep)
	if i < 0 {
		return ""
	}
	return name[:i]
}

// AccountLeaf returns the last component of an account name.
func AccountLeaf(name string) string {
	return name[strings.LastIndexAny(name, Sep+AltSep)+1:]
}

// AccountJoin joins account components.
func AccountJoin(parts ...string) string {
	return strings.Join(parts, Sep)
}

// IsAccountOrDescendant reports whether name equals ancestor or lies beneath it.
func IsAccountOrDescendant(name, ancestor string) bool {
	if ancestor == "" {
		return true
	}
	name, ancestor = CanonicalAccount(name), CanonicalAccount(ancestor)
	return name == ancestor || strings.HasPrefix(name, ancestor+Sep)
}

// CommonPrefix returns the longest account that is an ancestor of (or equal to) all names.
func CommonPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}
	prefix := AccountParts(names[0])
	for _, name := range names[1:] {
		parts := AccountParts(name)
		n := 0
		for n < len(prefix) && n < len(parts) && prefix[n] == parts[n] {
			n++
		}
		prefix = prefix[:n]
	}
	return AccountJoin(prefix...)
}
