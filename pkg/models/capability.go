package models

import "sort"

// CapabilitySet is the set of capability tags an executor declares.
type CapabilitySet map[string]struct{}

// NewCapabilitySet builds a set from the given tags.
func NewCapabilitySet(tags ...string) CapabilitySet {
	s := make(CapabilitySet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Covers returns true if the set contains the given capability tag.
func (s CapabilitySet) Covers(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Size returns the number of declared tags.
func (s CapabilitySet) Size() int {
	return len(s)
}

// Tags returns the tags in sorted order.
func (s CapabilitySet) Tags() []string {
	tags := make([]string, 0, len(s))
	for t := range s {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
