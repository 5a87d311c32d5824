package trigger

import (
	"regexp"
	"strings"

	"github.com/specialistvlad/pagegridgo/internal/value"
)

var tokenPattern = regexp.MustCompile(`\{\{(getVal:|pageConfig\.props\.|pageConfig\.|selected\.|row\.)(\w+)\}\}`)

// DecodeContent decodes a string holding a JSON object or array. Anything
// else, including text that fails to decode, is returned unchanged.
func DecodeContent(v value.Value) value.Value {
	s, ok := v.AsString()
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return v
	}
	decoded, err := value.ParseJSON([]byte(trimmed))
	if err != nil {
		return v
	}
	return decoded
}

// ResolveTemplates substitutes template tokens in every string of v,
// object keys included.
func ResolveTemplates(v value.Value, ec *Context) value.Value {
	if ec == nil {
		ec = &Context{}
	}
	switch v.Kind() {
	case value.KindString:
		s, _ := v.AsString()
		return resolveString(s, ec)
	case value.KindArray:
		elems := v.Elements()
		for i := range elems {
			elems[i] = ResolveTemplates(elems[i], ec)
		}
		return value.Array(elems...)
	case value.KindObject:
		fields := make(map[string]value.Value, v.Len())
		for k, f := range v.Fields() {
			fields[resolveString(k, ec).Text()] = ResolveTemplates(f, ec)
		}
		return value.Object(fields)
	}
	return v
}

func resolveString(s string, ec *Context) value.Value {
	if !strings.Contains(s, "{{") {
		return value.String(s)
	}

	if m := tokenPattern.FindStringSubmatchIndex(s); m != nil && m[0] == 0 && m[1] == len(s) {
		if v, ok := lookupToken(s[m[2]:m[3]], s[m[4]:m[5]], ec); ok {
			return v
		}
		return value.String(s)
	}

	return value.String(tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		sub := tokenPattern.FindStringSubmatch(tok)
		v, ok := lookupToken(sub[1], sub[2], ec)
		if !ok {
			return tok
		}
		return v.Text()
	}))
}

func lookupToken(scope, key string, ec *Context) (value.Value, bool) {
	switch scope {
	case "getVal:":
		if v, ok := ec.Values.Get(key); ok {
			return v, true
		}
		return value.String(""), true
	case "pageConfig.props.":
		return ec.PageConfig.Props().Get(key)
	case "pageConfig.":
		if key == "primaryEventType" && ec.PageConfig != nil {
			return value.String(ec.PageConfig.PrimaryEventType), true
		}
		if p := ec.PageConfig.Primary(); p != nil {
			return p.Attr(key)
		}
	case "selected.":
		return ec.Selected.Get(key)
	case "row.":
		return ec.RowData.Get(key)
	}
	return value.Null(), false
}
