package bloomdict

import "fmt"

// Set owns one Dictionary per configured language, in the order the
// languages were supplied. It is built once before processing starts and
// read-only afterwards, so it may be shared freely.
type Set struct {
	order  []string
	byLang map[string]*Dictionary
}

// NewSet loads one dictionary per language from the positionally paired
// source references. A length mismatch between the two lists, a duplicate
// language, or an unloadable source is a fatal configuration error.
func NewSet(languages, refs []string, fetcher Fetcher) (*Set, error) {
	if len(languages) != len(refs) {
		return nil, fmt.Errorf("%d languages paired with %d dictionary sources; the lists must match positionally", len(languages), len(refs))
	}
	s := &Set{
		order:  make([]string, 0, len(languages)),
		byLang: make(map[string]*Dictionary, len(languages)),
	}
	for i, lang := range languages {
		if lang == "" {
			return nil, fmt.Errorf("empty language code at position %d", i)
		}
		if _, dup := s.byLang[lang]; dup {
			return nil, fmt.Errorf("language %q supplied twice; dictionaries for one language are never merged", lang)
		}
		d, err := load(refs[i], lang, fetcher)
		if err != nil {
			return nil, err
		}
		s.order = append(s.order, lang)
		s.byLang[lang] = d
	}
	return s, nil
}

func load(ref, language string, fetcher Fetcher) (*Dictionary, error) {
	src, err := ParseSource(ref, fetcher)
	if err != nil {
		return nil, err
	}
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Read(rc, language, src.Ref())
}

// Resolve returns the dictionary for lang. Absence is not an error by
// itself; callers decide the policy.
func (s *Set) Resolve(lang string) (*Dictionary, bool) {
	d, ok := s.byLang[lang]
	return d, ok
}

// Languages returns the configured language codes in supply order.
func (s *Set) Languages() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of loaded dictionaries.
func (s *Set) Len() int { return len(s.order) }
