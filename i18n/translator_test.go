package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("null_rejected", map[string]string{"type": "ImmutableList[string]"}); msg != "ImmutableList[string] does not accept null values" {
		t.Fatalf("unexpected message %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_type", nil); msg == "invalid type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unknown codes fall back to the code, got %q", msg)
	}
}
