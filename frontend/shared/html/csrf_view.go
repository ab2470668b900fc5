package html

import "strings"

// Names shared by the CSRF middleware and the form script.
const (
	CSRFCookieName = "X-CSRF-Token"
	CSRFHeaderName = "X-CSRF-Token"
	CSRFFormField  = "_csrf"
)

// CSRFFormScript adds the CSRF token to POST forms at submit time and asks
// for confirmation on forms marked with data-confirm.
func CSRFFormScript() string {
	return strings.NewReplacer("__COOKIE__", CSRFCookieName, "__FIELD__", CSRFFormField).Replace(`<script>
(function () {
  function getCookie(name) {
    var prefix = name + "=";
    var parts = document.cookie ? document.cookie.split(";") : [];
    for (var i = 0; i < parts.length; i++) {
      var c = parts[i].trim();
      if (c.indexOf(prefix) === 0) return decodeURIComponent(c.substring(prefix.length));
    }
    return "";
  }

  document.addEventListener("submit", function (ev) {
    var form = ev.target;
    if (!form || (form.getAttribute("method") || "GET").toUpperCase() !== "POST") return;

    var question = form.getAttribute("data-confirm");
    if (question && !window.confirm(question)) {
      ev.preventDefault();
      return;
    }

    var token = getCookie("__COOKIE__");
    if (!token) return;
    var input = form.querySelector("input[name='__FIELD__']");
    if (!input) {
      input = document.createElement("input");
      input.type = "hidden";
      input.name = "__FIELD__";
      form.appendChild(input);
    }
    input.value = token;
  }, true);
})();
</script>`)
}
