// Package language is the closed table of dubbing languages: ISO code, TTS
// locale, default neural voice and display names.
package language

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Code is a two-letter ISO 639-1 code from the supported set.
type Code string

const (
	Turkish    Code = "tr"
	English    Code = "en"
	French     Code = "fr"
	German     Code = "de"
	Spanish    Code = "es"
	Italian    Code = "it"
	Portuguese Code = "pt"
	Russian    Code = "ru"
	Japanese   Code = "ja"
	Korean     Code = "ko"
	Chinese    Code = "zh"
	Arabic     Code = "ar"
)

// Info describes one supported language.
type Info struct {
	Code   Code   `json:"code"`
	Locale string `json:"locale"`
	Voice  string `json:"voice"`
	Native string `json:"native_name"`
	Name   string `json:"name"`
}

type entry struct {
	locale string
	voice  string
	native string
}

var table = map[Code]entry{
	Turkish:    {"tr-TR", "tr-TR-EmelNeural", "Türkçe"},
	English:    {"en-US", "en-US-JennyNeural", "English"},
	French:     {"fr-FR", "fr-FR-DeniseNeural", "Français"},
	German:     {"de-DE", "de-DE-KatjaNeural", "Deutsch"},
	Spanish:    {"es-ES", "es-ES-ElviraNeural", "Español"},
	Italian:    {"it-IT", "it-IT-ElsaNeural", "Italiano"},
	Portuguese: {"pt-BR", "pt-BR-FranciscaNeural", "Português"},
	Russian:    {"ru-RU", "ru-RU-SvetlanaNeural", "Русский"},
	Japanese:   {"ja-JP", "ja-JP-NanamiNeural", "日本語"},
	Korean:     {"ko-KR", "ko-KR-SunHiNeural", "한국어"},
	Chinese:    {"zh-CN", "zh-CN-XiaoxiaoNeural", "中文"},
	Arabic:     {"ar-SA", "ar-SA-ZariyahNeural", "العربية"},
}

// display order
var order = []Code{
	Turkish, English, French, German, Spanish, Italian,
	Portuguese, Russian, Japanese, Korean, Chinese, Arabic,
}

// Codes lists the supported languages in display order.
func Codes() []Code {
	out := make([]Code, len(order))
	copy(out, order)
	return out
}

// All returns the Info of every supported language in display order.
func All() []Info {
	out := make([]Info, 0, len(order))
	for _, c := range order {
		info, _ := Lookup(string(c))
		out = append(out, info)
	}
	return out
}

// Lookup accepts a code or a BCP 47 tag ("pt-BR", "zh-Hans") and returns
// the supported language it belongs to.
func Lookup(s string) (Info, error) {
	code, err := Parse(s)
	if err != nil {
		return Info{}, err
	}
	e := table[code]
	return Info{
		Code:   code,
		Locale: e.locale,
		Voice:  e.voice,
		Native: e.native,
		Name:   EnglishName(string(code)),
	}, nil
}

// Parse normalizes s to a supported Code.
func Parse(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty language code")
	}
	if _, ok := table[Code(strings.ToLower(s))]; ok {
		return Code(strings.ToLower(s)), nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", s, err)
	}
	base, _ := tag.Base()
	code := Code(base.String())
	if _, ok := table[code]; !ok {
		return "", fmt.Errorf("unsupported language %q (supported: %s)", s, strings.Join(codeStrings(), ", "))
	}
	return code, nil
}

// ParseList splits a comma separated list, dropping duplicates while
// keeping the first occurrence order.
func ParseList(s string) ([]Code, error) {
	var out []Code
	seen := make(map[Code]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := Parse(part)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no languages given")
	}
	return out, nil
}

// NativeName is the language's own name, or the upper-cased code when the
// language is unknown.
func NativeName(code string) string {
	if e, ok := table[Code(strings.ToLower(code))]; ok {
		return e.native
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	name := display.Self.Name(tag)
	if name == "" {
		return strings.ToUpper(code)
	}
	return cases.Title(tag).String(name)
}

// EnglishName is the English display name ("German" for "de"). Translation
// prompts use it.
func EnglishName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}

func codeStrings() []string {
	out := make([]string, 0, len(table))
	for c := range table {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}
