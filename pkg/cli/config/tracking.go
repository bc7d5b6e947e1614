package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/language"

	"github.com/dakala/h5p-xapi/pkg/xapi"
)

// Default extension keys under which H5P publishes its content ids.
const (
	defaultContentIDKey    = "http://h5p.org/x-api/h5p-local-content-id"
	defaultSubContentIDKey = "http://h5p.org/x-api/h5p-subContentId"
)

// Tracking holds the admin-facing tracking settings: which extension keys
// identify content, whether raw statements are retained, and what the
// browser listener should capture. A TOML file can override the flag
// values.
type Tracking struct {
	configPath string

	ContentIDKey        string
	SubContentIDKey     string
	Locale              string
	RetainRaw           bool
	Debug               bool
	CaptureAllTypes     bool
	CaptureAllowedTypes []string
}

// Flags returns CLI flags for tracking configuration.
func (t *Tracking) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tracking-config",
			Usage:       "Path to a TOML file with tracking settings (overrides flags)",
			Sources:     cli.EnvVars("H5P_XAPI_TRACKING_CONFIG"),
			Destination: &t.configPath,
		},
		&cli.StringFlag{
			Name:        "content-id-key",
			Usage:       "Extension key holding the content id",
			Value:       defaultContentIDKey,
			Sources:     cli.EnvVars("H5P_XAPI_CONTENT_ID_KEY"),
			Destination: &t.ContentIDKey,
		},
		&cli.StringFlag{
			Name:        "sub-content-id-key",
			Usage:       "Extension key holding the sub-content id",
			Value:       defaultSubContentIDKey,
			Sources:     cli.EnvVars("H5P_XAPI_SUB_CONTENT_ID_KEY"),
			Destination: &t.SubContentIDKey,
		},
		&cli.StringFlag{
			Name:        "locale",
			Usage:       "Locale tag used to resolve localized statement strings",
			Value:       "en-US",
			Sources:     cli.EnvVars("H5P_XAPI_LOCALE"),
			Destination: &t.Locale,
		},
		&cli.BoolFlag{
			Name:        "retain-raw",
			Usage:       "Store complete raw statement JSON on every summary (grows quickly)",
			Sources:     cli.EnvVars("H5P_XAPI_RETAIN_RAW"),
			Destination: &t.RetainRaw,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "Tell the browser listener to log statements to the console",
			Sources:     cli.EnvVars("H5P_XAPI_DEBUG"),
			Destination: &t.Debug,
		},
		&cli.BoolFlag{
			Name:        "capture-all-types",
			Usage:       "Capture statements for all content types",
			Value:       true,
			Sources:     cli.EnvVars("H5P_XAPI_CAPTURE_ALL_TYPES"),
			Destination: &t.CaptureAllTypes,
		},
	}
}

// trackingFile is the TOML shape; pointer fields distinguish "absent" from
// an explicit zero value.
type trackingFile struct {
	ContentIDKey        *string  `toml:"content_id_key"`
	SubContentIDKey     *string  `toml:"sub_content_id_key"`
	Locale              *string  `toml:"locale"`
	RetainRaw           *bool    `toml:"retain_raw"`
	Debug               *bool    `toml:"debug"`
	CaptureAllTypes     *bool    `toml:"capture_all_types"`
	CaptureAllowedTypes []string `toml:"capture_allowed_types"`
}

// Configure loads the optional TOML file and validates the result.
func (t *Tracking) Configure() error {
	if t.configPath != "" {
		data, err := os.ReadFile(t.configPath)
		if err != nil {
			return goerr.Wrap(err, "failed to read tracking config", goerr.V("path", t.configPath))
		}
		var file trackingFile
		if err := toml.Unmarshal(data, &file); err != nil {
			return goerr.Wrap(err, "failed to parse tracking config", goerr.V("path", t.configPath))
		}
		t.apply(&file)
	}

	if t.ContentIDKey == "" {
		return goerr.New("content id key is required")
	}

	tag, err := language.Parse(strings.ReplaceAll(t.Locale, "_", "-"))
	if err != nil {
		return goerr.Wrap(err, "invalid locale tag", goerr.V("locale", t.Locale))
	}
	t.Locale = tag.String()
	return nil
}

func (t *Tracking) apply(file *trackingFile) {
	if file.ContentIDKey != nil {
		t.ContentIDKey = *file.ContentIDKey
	}
	if file.SubContentIDKey != nil {
		t.SubContentIDKey = *file.SubContentIDKey
	}
	if file.Locale != nil {
		t.Locale = *file.Locale
	}
	if file.RetainRaw != nil {
		t.RetainRaw = *file.RetainRaw
	}
	if file.Debug != nil {
		t.Debug = *file.Debug
	}
	if file.CaptureAllTypes != nil {
		t.CaptureAllTypes = *file.CaptureAllTypes
	}
	if file.CaptureAllowedTypes != nil {
		t.CaptureAllowedTypes = file.CaptureAllowedTypes
	}
}

// Normalizer builds the statement normalizer for these settings.
func (t *Tracking) Normalizer() *xapi.Normalizer {
	return xapi.NewNormalizer(t.Locale, t.ContentIDKey, t.SubContentIDKey)
}
