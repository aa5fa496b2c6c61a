package der

import (
	"github.com/magiconair/properties"
	"github.com/pkg/errors"
)

// Options controls checking and emission. It is read from a .properties
// file; every key is optional.
type Options struct {
	Headers bool   `properties:"emit.headers,default=true"`
	Output  string `properties:"emit.output,default="`
	Trace   bool   `properties:"check.trace,default=false"`
}

func DefaultOptions() Options {
	return Options{Headers: true}
}

func LoadOptions(path string) (Options, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return Options{}, errors.Wrapf(err, "loading options from %s", path)
	}
	return decodeOptions(p)
}

func ParseOptions(source string) (Options, error) {
	p, err := properties.LoadString(source)
	if err != nil {
		return Options{}, errors.Wrap(err, "parsing options")
	}
	return decodeOptions(p)
}

func decodeOptions(p *properties.Properties) (Options, error) {
	var opts Options
	if err := p.Decode(&opts); err != nil {
		return Options{}, errors.Wrap(err, "decoding options")
	}
	return opts, nil
}
