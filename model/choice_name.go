package model

import (
	"sort"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ChoiceName is a choice's display name: either a plain string or a
// language→string map. On the wire both shapes are legal; in memory the two
// cases never mix.
type ChoiceName struct {
	plain     string
	localized map[string]string
}

func PlainName(name string) ChoiceName {
	return ChoiceName{plain: name}
}

func LocalizedName(names map[string]string) ChoiceName {
	return ChoiceName{localized: names}
}

func (n ChoiceName) Localized() bool {
	return n.localized != nil
}

// Resolve picks the display string for a language: requested language, then
// "en", then the lexicographically first entry. Plain names ignore the
// language entirely.
func (n ChoiceName) Resolve(language string) string {
	if n.localized == nil {
		return n.plain
	}
	if name, ok := n.localized[language]; ok {
		return name
	}
	if name, ok := n.localized["en"]; ok {
		return name
	}
	languages := make([]string, 0, len(n.localized))
	for lang := range n.localized {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	if len(languages) == 0 {
		return ""
	}
	return n.localized[languages[0]]
}

// Matches reports whether s equals any variant of the name.
func (n ChoiceName) Matches(s string) bool {
	if n.localized == nil {
		return n.plain == s
	}
	for _, name := range n.localized {
		if name == s {
			return true
		}
	}
	return false
}

func (n ChoiceName) MarshalJSON() ([]byte, error) {
	if n.localized != nil {
		return json.Marshal(n.localized)
	}
	return json.Marshal(n.plain)
}

func (n *ChoiceName) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*n = ChoiceName{plain: plain}
		return nil
	}
	var localized map[string]string
	if err := json.Unmarshal(data, &localized); err != nil {
		return errors.Wrap(err, "choice name must be a string or a language map")
	}
	*n = ChoiceName{localized: localized}
	return nil
}
