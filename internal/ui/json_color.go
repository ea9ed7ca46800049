package ui

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// colorizeJSON pretty-prints raw JSON with one style per token kind. Object
// keys keep their encoded order. Invalid input is returned as is.
func colorizeJSON(raw []byte, st Styles) string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var b strings.Builder
	if err := renderJSONValue(&b, dec, st, 0); err != nil {
		return string(raw)
	}
	return b.String()
}

func renderJSONValue(b *strings.Builder, dec *json.Decoder, st Styles, indent int) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	ind := strings.Repeat("  ", indent)
	switch t := tok.(type) {
	case json.Delim:
		closing := "}"
		if t == '[' {
			closing = "]"
		}
		b.WriteString(st.JSONPunct.Render(t.String()))
		first := true
		for dec.More() {
			if !first {
				b.WriteString(st.JSONPunct.Render(","))
			}
			first = false
			b.WriteString("\n" + ind + "  ")
			if t == '{' {
				k, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := k.(string)
				b.WriteString(st.JSONKey.Render(strconv.Quote(key)))
				b.WriteString(st.JSONPunct.Render(": "))
			}
			if err := renderJSONValue(b, dec, st, indent+1); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil {
			return err
		}
		if !first {
			b.WriteString("\n" + ind)
		}
		b.WriteString(st.JSONPunct.Render(closing))
	case string:
		b.WriteString(st.JSONString.Render(strconv.Quote(t)))
	case json.Number:
		b.WriteString(st.JSONNumber.Render(t.String()))
	case bool:
		b.WriteString(st.JSONBool.Render(strconv.FormatBool(t)))
	case nil:
		b.WriteString(st.JSONNull.Render("null"))
	}
	return nil
}
