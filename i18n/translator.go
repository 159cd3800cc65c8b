package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "type" or "expected").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dict = map[string]map[string]string{
	"en": {
		"unresolved_type":       "cannot resolve content type of {type}",
		"unexpected_token":      "unexpected token for {type}",
		"null_rejected":         "{type} does not accept null values",
		"invalid_format":        "invalid format",
		"invalid_type":          "invalid type",
		"unknown_key":           "unknown key",
		"duplicate_key":         "duplicate key",
		"discriminator_missing": "type id property missing",
		"discriminator_unknown": "unknown type id",
		"parse_error":           "parse error",
		"truncated":             "truncated",
	},
	"ja": {
		"unresolved_type":       "{type} の要素型を解決できません",
		"unexpected_token":      "{type} に対して予期しないトークンです",
		"null_rejected":         "{type} は null を受け付けません",
		"invalid_format":        "形式が不正です",
		"invalid_type":          "型が不正です",
		"unknown_key":           "未知のキーです",
		"duplicate_key":         "キーが重複しています",
		"discriminator_missing": "型識別子がありません",
		"discriminator_unknown": "未知の型識別子です",
		"parse_error":           "解析エラー",
		"truncated":             "打ち切られました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dict[t.lang][code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
