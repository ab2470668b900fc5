package html

import (
	"strings"
	"testing"
)

func TestCSRFFormScriptUsesSharedNames(t *testing.T) {
	script := CSRFFormScript()
	if strings.Contains(script, "__COOKIE__") || strings.Contains(script, "__FIELD__") {
		t.Fatal("placeholders left in script")
	}
	if !strings.Contains(script, `getCookie("X-CSRF-Token")`) || !strings.Contains(script, `input.name = "_csrf"`) {
		t.Fatalf("script does not reference csrf names:\n%s", script)
	}
	if !strings.Contains(script, "data-confirm") {
		t.Fatal("script must handle data-confirm")
	}
}
