package components

const jsonTextareaTemplate = templatePrefix + "json_textarea.tmpl"

func jsonTextareaDescriptor() Descriptor {
	return Descriptor{
		Renderer: templateComponentRenderer("forms.json-textarea", jsonTextareaTemplate),
		Scripts: []Script{
			{
				Inline: jsonTextareaInlineScript,
				Defer:  true,
			},
		},
	}
}

// jsonTextareaInlineScript flags textareas whose content is not valid JSON.
// Submission still goes through; the server falls back to the raw text.
const jsonTextareaInlineScript = `(function () {
  var ROOT = 'textarea[data-json-textarea="true"]';

  function check(el) {
    var text = el.value.trim();
    var valid = true;
    if (text !== "") {
      try {
        JSON.parse(text);
      } catch (e) {
        valid = false;
      }
    }
    el.classList.toggle("tf-input--invalid-json", !valid);
    el.setAttribute("aria-invalid", valid ? "false" : "true");
  }

  function init() {
    var nodes = document.querySelectorAll(ROOT);
    for (var i = 0; i < nodes.length; i++) {
      (function (el) {
        el.addEventListener("input", function () { check(el); });
        check(el);
      })(nodes[i]);
    }
  }

  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", init);
  } else {
    init();
  }
})();`
