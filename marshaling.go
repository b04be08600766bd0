package requester

import (
	"encoding/json"
	"net/url"

	"github.com/ansel1/merry"
	goquery "github.com/google/go-querystring/query"
)

// Common media types used as Content-Type values by the marshalers below.
const (
	MediaTypeJSON = "application/json"
	MediaTypeForm = "application/x-www-form-urlencoded"
)

// BodyMarshaler marshals structs into a []byte, and supplies a matching
// Content-Type header. It is the collaborator contract.BodyEncoder
// implementations (JSONBodyEncoder, FormBodyEncoder) delegate to.
type BodyMarshaler interface {
	Marshal(v interface{}) (data []byte, contentType string, err error)
}

// JSONMarshaler implements BodyMarshaler.  It marshals values to JSON.  If
// Indent is true, marshaled JSON will be indented.
type JSONMarshaler struct {
	Indent bool
}

// Marshal implements BodyMarshaler.
func (m *JSONMarshaler) Marshal(v interface{}) (data []byte, contentType string, err error) {
	if m.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	return data, MediaTypeJSON, err
}

// FormMarshaler implements BodyMarshaler.  It marshals values into URL-Encoded form data.
//
// The value can be either a map[string][]string, map[string]string, url.Values, or a struct with `url` tags.
type FormMarshaler struct{}

// Marshal implements BodyMarshaler.
func (*FormMarshaler) Marshal(v interface{}) (data []byte, contentType string, err error) {
	switch t := v.(type) {
	case map[string][]string:
		urlV := url.Values(t)
		return []byte(urlV.Encode()), MediaTypeForm, nil
	case map[string]string:
		urlV := url.Values{}
		for key, value := range t {
			urlV.Set(key, value)
		}
		return []byte(urlV.Encode()), MediaTypeForm, nil
	case url.Values:
		return []byte(t.Encode()), MediaTypeForm, nil
	default:
		values, err := goquery.Values(v)
		if err != nil {
			return nil, "", merry.Prepend(err, "invalid form struct")
		}
		return []byte(values.Encode()), MediaTypeForm, nil
	}
}
