package controlplane

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/CloudNativeWorks/datalayer-license/dlmlicense"
)

const maxBodyBytes = 1 << 20 // 1 MB

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

var actionRule = "required,oneof=" + strings.Join(actionNames(), " ")

func actionNames() []string {
	names := make([]string, 0, len(dlmlicense.Actions))
	for _, a := range dlmlicense.Actions {
		names = append(names, string(a))
	}
	return names
}

// decodeRequest reads a JSON body, falling back to form fields when the body
// is not a non-empty JSON object.
func decodeRequest(r *http.Request) (dlmlicense.Request, error) {
	var req dlmlicense.Request

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return req, fmt.Errorf("read body: %w", err)
	}

	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err == nil && len(raw) > 0 {
		req = dlmlicense.Request{
			Action:     dlmlicense.Action(stringField(raw, "action")),
			Plugin:     stringField(raw, "plugin"),
			LicenseKey: stringField(raw, "license_key"),
			SiteURL:    stringField(raw, "site_url"),
		}
		return sanitize(req), nil
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		// malformed form data is treated as an empty request
		form = url.Values{}
	}
	req = dlmlicense.Request{
		Action:     dlmlicense.Action(form.Get("action")),
		Plugin:     form.Get("plugin"),
		LicenseKey: form.Get("license_key"),
		SiteURL:    form.Get("site_url"),
	}
	return sanitize(req), nil
}

// stringField returns raw[key] when it is a string or a number, "" otherwise.
// Numbers keep their literal JSON text.
func stringField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func sanitize(req dlmlicense.Request) dlmlicense.Request {
	req.Action = dlmlicense.Action(strings.TrimSpace(string(req.Action)))
	req.Plugin = strings.TrimSpace(req.Plugin)
	req.LicenseKey = strings.TrimSpace(req.LicenseKey)
	req.SiteURL = strings.TrimSpace(req.SiteURL)
	return req
}
