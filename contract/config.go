package contract

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ansel1/merry"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Options is the per-operation (connectTimeout, readTimeout) pair from spec
// §6, selected by configKey.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// optionsFile is the TOML document shape: a table of configKey -> timeout
// strings, e.g.:
//
//	[operations."GitHub#contributors(String,String)"]
//	connectTimeout = "500ms"
//	readTimeout = "5s"
type optionsFile struct {
	Operations map[string]rawOptions `toml:"operations"`
}

type rawOptions struct {
	ConnectTimeout string `toml:"connectTimeout"`
	ReadTimeout    string `toml:"readTimeout"`
}

// LoadOptionsTOML decodes a TOML document (as infogulch-xtemplate loads its
// own app config) into a configKey -> Options map, parsing duration strings
// with xhit/go-str2duration (which accepts everything time.ParseDuration
// does, such as "1h30m", plus day and week units like "2d" and "1w" that
// time.ParseDuration rejects, matching rakunlabs-at's own config-duration
// handling).
func LoadOptionsTOML(data []byte) (map[string]Options, error) {
	var f optionsFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, merry.Prepend(err, "decoding options TOML")
	}

	out := make(map[string]Options, len(f.Operations))
	for key, raw := range f.Operations {
		opts, err := raw.parse()
		if err != nil {
			return nil, merry.Prependf(err, "options for %q", key)
		}
		out[key] = opts
	}
	return out, nil
}

func (r rawOptions) parse() (Options, error) {
	var opts Options
	if r.ConnectTimeout != "" {
		d, err := str2duration.ParseDuration(r.ConnectTimeout)
		if err != nil {
			return Options{}, merry.Prepend(err, "parsing connectTimeout")
		}
		opts.ConnectTimeout = d
	}
	if r.ReadTimeout != "" {
		d, err := str2duration.ParseDuration(r.ReadTimeout)
		if err != nil {
			return Options{}, merry.Prepend(err, "parsing readTimeout")
		}
		opts.ReadTimeout = d
	}
	return opts, nil
}
