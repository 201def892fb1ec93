package incremental

import "sort"

// PostFingerprint identifies a post and the fingerprint of its current source.
type PostFingerprint interface {
	Key() string
	Fingerprint() string
}

// ChangeSet partitions slugs into disjoint groups relative to a CacheState.
type ChangeSet struct {
	// ToRebuild holds new posts and posts whose fingerprint changed, sorted.
	ToRebuild []string
	// ToDelete holds cached slugs that no longer have a source, sorted.
	ToDelete []string
	// Unchanged holds posts whose fingerprint matches the cache, sorted.
	Unchanged []string
}

// HasChanges reports whether anything must be rebuilt or deleted.
func (c ChangeSet) HasChanges() bool {
	return len(c.ToRebuild) > 0 || len(c.ToDelete) > 0
}

// Resolve diffs the current posts against cache. It does not modify cache.
func Resolve[P PostFingerprint](posts []P, cache *CacheState) ChangeSet {
	var cs ChangeSet
	current := make(map[string]struct{}, len(posts))

	for _, p := range posts {
		slug := p.Key()
		if _, dup := current[slug]; dup {
			continue
		}
		current[slug] = struct{}{}

		entry, ok := cache.Lookup(slug)
		if !ok || entry.SourceHash != p.Fingerprint() {
			cs.ToRebuild = append(cs.ToRebuild, slug)
			continue
		}
		cs.Unchanged = append(cs.Unchanged, slug)
	}

	if cache != nil {
		for slug := range cache.Posts {
			if _, ok := current[slug]; !ok {
				cs.ToDelete = append(cs.ToDelete, slug)
			}
		}
	}
	sort.Strings(cs.ToRebuild)
	sort.Strings(cs.ToDelete)
	sort.Strings(cs.Unchanged)

	return cs
}
