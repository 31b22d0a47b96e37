// Package registry answers "is this package version already published?"
// against a sparse registry index, with per-name memoization and
// etag-revalidated fetches so a run issues at most one full download per
// package name.
package registry

// Entry is one package's index record: the list of published versions.
type Entry struct {
	Name     string
	Versions []string
}

// HasVersion reports whether the entry lists the exact version string.
func (e *Entry) HasVersion(version string) bool {
	for _, v := range e.Versions {
		if v == version {
			return true
		}
	}
	return false
}

// Index is the run-scoped cache over the remote index client. Construct it
// explicitly and thread it through planning and publishing; it is not safe
// for concurrent use.
type Index struct {
	// BaseURL overrides the sparse index endpoint, defaulting to the
	// public registry.
	BaseURL string

	client *Client
	cache  map[string]*Entry
}

// NewIndex creates an empty index cache for one run.
func NewIndex() *Index {
	return &Index{cache: make(map[string]*Entry)}
}

// HasPackage reports whether the package exists in the default registry's
// index at all. A configured non-default registry yields false without a
// network call.
func (i *Index) HasPackage(registryName string, name string) (bool, error) {
	entry, known, err := i.entry(registryName, name)
	if err != nil {
		return false, err
	}
	return known && entry != nil, nil
}

// HasVersion reports whether the exact version of the package is already
// published. The result is nil when the registry cannot be queried (a
// non-default registry is configured): callers must treat that as "don't
// know", distinct from both published and unpublished.
func (i *Index) HasVersion(registryName string, name string, fullVersion string) (*bool, error) {
	entry, known, err := i.entry(registryName, name)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, nil
	}
	published := entry != nil && entry.HasVersion(fullVersion)
	return &published, nil
}

// Invalidate drops the cached entry for name so the next query re-fetches.
// Called after the package is actually published so later dependents observe
// the new state within the same run.
func (i *Index) Invalidate(registryName string, name string) {
	if registryName != "" {
		return
	}
	delete(i.cache, name)
}

// entry returns the cached or freshly fetched index record. The second
// result is false when the registry cannot be queried at all.
func (i *Index) entry(registryName string, name string) (*Entry, bool, error) {
	if registryName != "" {
		// Only the default registry's index protocol is known.
		return nil, false, nil
	}
	if entry, cached := i.cache[name]; cached {
		return entry, true, nil
	}
	if i.client == nil {
		i.client = NewClient(i.BaseURL)
	}
	entry, err := i.client.Fetch(name)
	if err != nil {
		return nil, false, err
	}
	if i.cache == nil {
		i.cache = make(map[string]*Entry)
	}
	i.cache[name] = entry
	return entry, true, nil
}
