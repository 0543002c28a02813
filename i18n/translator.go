package i18n

import "strings"

// Message codes used by the validator compiler.
const (
	TypeMismatch       = "type_mismatch"
	AncestryMismatch   = "ancestry_mismatch"
	NotInteger         = "not_integer"
	EmptyString        = "empty_string"
	ValueNotAllowed    = "value_not_allowed"
	PrimitiveValue     = "primitive_value"
	PropertyMissing    = "property_missing"
	PropertyNotAllowed = "property_not_allowed"
	SparseArray        = "sparse_array"
	NoBranch           = "no_branch"
)

// Translator retrieves localized messages for diagnostic codes.
// data provides values substituted for {name} placeholders (for example,
// "expected").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var tmpl string
	switch t.lang {
	case "ja":
		switch code {
		case TypeMismatch:
			tmpl = "型が '{expected}' ではありません"
		case AncestryMismatch:
			tmpl = "継承チェーンに '{expected}' が含まれていません"
		case NotInteger:
			tmpl = "整数ではありません"
		case EmptyString:
			tmpl = "空でない文字列ではありません"
		case ValueNotAllowed:
			tmpl = "{expected} のいずれの値でもありません"
		case PrimitiveValue:
			tmpl = "プリミティブ値は許可されていません"
		case PropertyMissing:
			tmpl = "必須プロパティが不足しています"
		case PropertyNotAllowed:
			tmpl = "許可されていないプロパティです"
		case SparseArray:
			tmpl = "連続した配列ではありません"
		case NoBranch:
			tmpl = "一致し得る分岐がありません"
		}
	default: // "en"
		switch code {
		case TypeMismatch:
			tmpl = "type is not '{expected}'"
		case AncestryMismatch:
			tmpl = "ancestry does not include '{expected}'"
		case NotInteger:
			tmpl = "not an integer"
		case EmptyString:
			tmpl = "not a non-empty string"
		case ValueNotAllowed:
			tmpl = "not a value from {expected}"
		case PrimitiveValue:
			tmpl = "not a non-primitive value"
		case PropertyMissing:
			tmpl = "property is missing"
		case PropertyNotAllowed:
			tmpl = "property is not allowed"
		case SparseArray:
			tmpl = "not a sequentially strict array"
		case NoBranch:
			tmpl = "union has no branch to match"
		}
	}
	if tmpl == "" {
		return code
	}
	return expand(tmpl, data)
}

func expand(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
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
