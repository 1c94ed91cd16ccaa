// Package i18n holds the localized strings of the contact page and the API messages.
// Tables are YAML files keyed by language; keys are dotted paths such as "form.submit".
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// DefaultLang is used when a request names no supported language
const DefaultLang = "en"

// Store is a read-only key -> localized string lookup
type Store struct {
	defaultLang string
	tables      map[string]map[string]string
	langs       []string
	matcher     language.Matcher
}

// New loads the bundled locale tables
func New(defaultLang string) (*Store, error) {
	return Load(localeFS, "locales", defaultLang)
}

// Load reads every <lang>.yaml file in dir
func Load(fsys fs.FS, dir, defaultLang string) (*Store, error) {
	if defaultLang == "" {
		defaultLang = DefaultLang
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales: %w", err)
	}

	s := &Store{
		defaultLang: defaultLang,
		tables:      make(map[string]map[string]string),
	}

	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		lang := strings.TrimSuffix(e.Name(), ".yaml")
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
		table := make(map[string]string)
		flatten("", tree, table)
		s.tables[lang] = table
	}

	if _, ok := s.tables[defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: no table for default language %q", defaultLang)
	}

	// default language first so the matcher falls back to it
	s.langs = append(s.langs, defaultLang)
	for lang := range s.tables {
		if lang != defaultLang {
			s.langs = append(s.langs, lang)
		}
	}
	sort.Strings(s.langs[1:])

	tags := make([]language.Tag, len(s.langs))
	for i, l := range s.langs {
		tags[i] = language.Make(l)
	}
	s.matcher = language.NewMatcher(tags)

	return s, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// T returns the string for key in lang. Unsupported languages use the default
// language; a key missing from the table is returned unchanged.
func (s *Store) T(key, lang string) string {
	table := s.tables[s.Normalize(lang)]
	if v, ok := table[key]; ok && v != "" {
		return v
	}
	return key
}

// Format looks up key and substitutes {name} placeholders from vars
func (s *Store) Format(key, lang string, vars map[string]string) string {
	msg := s.T(key, lang)
	if len(vars) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Normalize maps a language tag such as "vi-VN" onto a supported table name
func (s *Store) Normalize(lang string) string {
	if lang == "" {
		return s.defaultLang
	}
	if _, ok := s.tables[lang]; ok {
		return lang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return s.defaultLang
	}
	base, _ := tag.Base()
	if _, ok := s.tables[base.String()]; ok {
		return base.String()
	}
	return s.defaultLang
}

// Match picks the best supported language for an Accept-Language header value
func (s *Store) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return s.defaultLang
	}
	_, idx, conf := s.matcher.Match(tags...)
	if conf == language.No {
		return s.defaultLang
	}
	return s.langs[idx]
}

// Table returns a copy of the flattened table for lang
func (s *Store) Table(lang string) (map[string]string, bool) {
	table, ok := s.tables[lang]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out, true
}

// Languages lists the supported languages, default first
func (s *Store) Languages() []string {
	return append([]string(nil), s.langs...)
}

// Default returns the default language
func (s *Store) Default() string {
	return s.defaultLang
}
