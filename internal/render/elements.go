// Package render interprets a page config into a host-agnostic element tree.
//
// A host toolkit walks the Element tree, creates one primitive per Element
// and wires each Handler to the host event of the same name. When the host
// event fires it calls Handler.Fire; afterwards it calls Render again, since
// triggers may have changed the DataStore or the open modals.
package render

import "strings"

var elements = map[string]string{
	"page":    "div",
	"form":    "form",
	"button":  "button",
	"select":  "select",
	"input":   "input",
	"label":   "label",
	"div":     "div",
	"span":    "span",
	"h1":      "h1",
	"h2":      "h2",
	"h3":      "h3",
	"p":       "p",
	"modal":   "div",
	"section": "section",
	"nav":     "nav",
	"header":  "header",
	"grid":    "div",
	"table":   "table",
	"thead":   "thead",
	"tbody":   "tbody",
	"tr":      "tr",
	"th":      "th",
	"td":      "td",
}

// ElementFor maps an abstract type tag to a host primitive. Unknown tags map
// to a generic "div".
func ElementFor(tag string) string {
	if el, ok := elements[strings.ToLower(tag)]; ok {
		return el
	}
	return "div"
}

var handlerNames = map[string]string{
	"onSubmit": "onSubmit",
	"onClick":  "onClick",
	"onChange": "onChange",
	"onLoad":   "onLoad",
}

// HandlerName maps an event class to the host handler it binds to. Classes
// without a host counterpart bind to onClick.
func HandlerName(eventClass string) string {
	if name, ok := handlerNames[eventClass]; ok {
		return name
	}
	return "onClick"
}
