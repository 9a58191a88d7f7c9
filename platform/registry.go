package platform

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/TomKeddie/luna/log"
	"github.com/TomKeddie/luna/util"
)

// EnvVar selects the platform when no flag does.
const EnvVar = "LUNA_PLATFORM"

var builtin = util.NewOrderedMap[string, func() Platform]()

func init() {
	register("arcticserdes35", ArcticSerdes35)
}

func register(name string, fn func() Platform) {
	if err := builtin.Insert(name, fn); err != nil {
		panic(err)
	}
}

// Names lists the built-in platforms.
func Names() []string {
	return builtin.Keys()
}

// Lookup returns a fresh copy of a built-in platform.
func Lookup(name string) (Platform, error) {
	fn, ok := builtin.Lookup(strings.ToLower(name))
	if !ok {
		return Platform{}, errors.Errorf("unknown platform '%s', built-in platforms are: %s", name, strings.Join(Names(), ", "))
	}
	return fn(), nil
}

// Load reads a platform from a YAML board file. Unknown keys are errors.
func Load(path string) (Platform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Platform{}, errors.Wrap(err, "reading board file")
	}
	var p Platform
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return Platform{}, errors.Wrapf(err, "parsing board file '%s'", path)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := p.Validate(); err != nil {
		return Platform{}, err
	}
	log.Debug("Loaded platform '%s' from '%s'\n", p.Name, path)
	return p, nil
}

// Select picks the platform: a board file first, then a platform name from
// the command line, then the environment, then the configured default.
func Select(boardFile, name, configured string) (Platform, error) {
	if boardFile != "" {
		return Load(boardFile)
	}
	if name == "" {
		name = os.Getenv(EnvVar)
	}
	if name == "" {
		name = configured
	}
	if name == "" {
		return Platform{}, errors.Errorf("no platform selected, use --platform, --board-file or set %s", EnvVar)
	}
	p, err := Lookup(name)
	if err != nil {
		return Platform{}, err
	}
	return p, p.Validate()
}
