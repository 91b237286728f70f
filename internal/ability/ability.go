// Package ability derives the authorization predicate the view tree consults.
//
// The backend's authorization is coarse-grained: a permission names an action
// ("view_secteurs", "delete_secteurs") and every rule applies to the wildcard
// subject. An Ability is a read-only projection of the user's permission
// list; callers rebuild it whenever that list changes.
package ability

import "sort"

// Subject is the only subject the backend scopes rules to.
const Subject = "all"

// Ability answers Can(action) for one snapshot of a permission list.
type Ability struct {
	actions map[string]struct{}
}

// FromPermissions builds an Ability from a permission list. A nil or empty
// list yields an Ability that denies everything.
func FromPermissions(permissions []string) Ability {
	actions := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		if p == "" {
			continue
		}
		actions[p] = struct{}{}
	}
	return Ability{actions: actions}
}

// None returns the anonymous Ability.
func None() Ability {
	return Ability{}
}

// Can reports whether the action is allowed.
func (a Ability) Can(action string) bool {
	_, ok := a.actions[action]
	return ok
}

// Cannot is the negation of Can.
func (a Ability) Cannot(action string) bool {
	return !a.Can(action)
}

// Actions returns the sorted allowed actions, for display.
func (a Ability) Actions() []string {
	out := make([]string, 0, len(a.actions))
	for action := range a.actions {
		out = append(out, action)
	}
	sort.Strings(out)
	return out
}
