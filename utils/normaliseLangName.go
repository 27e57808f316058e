package utils

import (
	"strings"
	"unicode"
)

// NormalizeLanguage maps the loose language names users type into the
// display name used in generation prompts. Unknown values are title-cased.
func NormalizeLanguage(lang string) string {

	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return "English"
	}

	languageMap := map[string]string{

		"en":      "English",
		"eng":     "English",
		"english": "English",
		"englsh":  "English",
		"inglish": "English",

		"hi":     "Hindi",
		"hin":    "Hindi",
		"hindi":  "Hindi",
		"hindhi": "Hindi",

		"es":      "Spanish",
		"spa":     "Spanish",
		"spanish": "Spanish",
		"espanol": "Spanish",
		"español": "Spanish",

		"fr":       "French",
		"fra":      "French",
		"french":   "French",
		"francais": "French",
		"français": "French",

		"de":      "German",
		"ger":     "German",
		"german":  "German",
		"deutsch": "German",

		"pt":         "Portuguese",
		"portuguese": "Portuguese",
		"portugues":  "Portuguese",
	}

	if normalized, ok := languageMap[lang]; ok {
		return normalized
	}

	r := []rune(lang)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
