package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. KMMCTL_SERVER_ADDRESS
	EnvPrefix = "KMMCTL"

	// DefaultCookieEnvName is read for a cookie when no other source is given
	DefaultCookieEnvName = "PARK_MEDIA_API_SESSION_COOKIE"

	localOptionsFile = "kmmctl_options.yaml"
	userOptionsFile  = "options.yaml"
)

// Options holds every setting of one kmmctl run. Keys match the long flag
// names, both in the options file and (upper-cased, '-' as '_') in the
// environment.
type Options struct {
	ServerAddress string        `mapstructure:"server-address"`
	ServerPort    int           `mapstructure:"server-port"`
	BasePath      string        `mapstructure:"base-path"`
	Insecure      bool          `mapstructure:"insecure"`
	Timeout       time.Duration `mapstructure:"timeout"`

	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	ForceLogin bool   `mapstructure:"force-login"`

	MethodName      string `mapstructure:"method-name"`
	MethodArguments string `mapstructure:"method-arguments"`

	PrettyPrint bool   `mapstructure:"pretty-print"`
	Format      string `mapstructure:"format"`
	NoParse     bool   `mapstructure:"no-parse"`

	CookieContents  string `mapstructure:"cookie-contents"`
	CookieFileName  string `mapstructure:"cookie-file-name"`
	CookieEnvName   string `mapstructure:"cookie-env-name"`
	SetCookieEnv    bool   `mapstructure:"set-cookie-env"`
	SetCookieFile   string `mapstructure:"set-cookie-file"`
	SaveSession     bool   `mapstructure:"save-session"`
	UseSavedSession bool   `mapstructure:"use-saved-session"`

	LogTo    string `mapstructure:"log-to"`
	LogLevel string `mapstructure:"log-level"`
}

// parkMediaFlagNames maps the park-media- prefixed spellings accepted by
// the older park_media command line client to the current flag names.
var parkMediaFlagNames = map[string]string{
	"park-media-server-address": "server-address",
	"park-media-server-port":    "server-port",
	"park-media-username":       "username",
	"park-media-password":       "password",
}

// NormalizeFlagName resolves the park-media- prefixed aliases
func NormalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if current, ok := parkMediaFlagNames[name]; ok {
		name = current
	}
	return pflag.NormalizedName(name)
}

// RegisterFlags adds the option flags to fs. The --park-media-server-address,
// --park-media-server-port, --park-media-username and --park-media-password
// aliases are accepted too.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(NormalizeFlagName)

	fs.String("server-address", "eval.parkmedia.tv", "Server hostname")
	fs.Int("server-port", 8123, "Server HTTPS port")
	fs.String("base-path", "/kmm/svc", "Path prefix of the API")
	fs.Bool("insecure", false, "Skip TLS certificate verification")
	fs.Duration("timeout", 0, "Request timeout (0 waits indefinitely)")

	fs.String("username", "", "Login username")
	fs.String("password", "", "Login password (prompted when omitted on a terminal)")
	fs.Bool("force-login", false, "Log in even if cookie information is present")

	fs.String("method-name", "", "API method to call (see 'kmmctl methods')")
	fs.String("method-arguments", "", "JSON encoded method arguments")

	fs.Bool("pretty-print", false, "Indent output")
	fs.String("format", "json", "Output format: json, yaml or raw")
	fs.Bool("no-parse", false, "Print response bodies without decoding them")

	fs.String("cookie-contents", "", "Session cookie to use")
	fs.String("cookie-file-name", "", "Read the session cookie from a file")
	fs.String("cookie-env-name", DefaultCookieEnvName, "Environment variable holding the session cookie")
	fs.Bool("set-cookie-env", false, "Print an export line for the cookie variable on stderr")
	fs.String("set-cookie-file", "", "Write the session cookie to a file")
	fs.Bool("save-session", false, "Store the session cookie in the session registry")
	fs.Bool("use-saved-session", false, "Use the cookie stored in the session registry")

	fs.String("log-to", "", "Log file location (default stderr)")
	fs.String("log-level", "", "Logging level: debug, info, warn, error, fatal")

	fs.String("options-file", "", "YAML file with default option values")
	fs.Bool("no-options-file", false, "Do not read any options file")
}

// FindOptionsFile picks the options file to read. An explicit path must
// exist. Otherwise ./kmmctl_options.yaml is used when present, then
// options.yaml in the config directory; "" means no file.
func FindOptionsFile(explicit string, disabled bool) (string, error) {
	if disabled {
		return "", nil
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("options file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	candidates := []string{localOptionsFile}
	if dir, err := GetConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, userOptionsFile))
	}
	for _, c := range candidates {
		_, err := os.Stat(c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("options file %s: %w", c, err)
		}
	}
	return "", nil
}

// Load resolves the options from flags, environment, options file and
// defaults, in that order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet, optionsFile string) (*Options, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("server-address", "eval.parkmedia.tv")
	v.SetDefault("server-port", 8123)
	v.SetDefault("base-path", "/kmm/svc")
	v.SetDefault("format", "json")
	v.SetDefault("cookie-env-name", DefaultCookieEnvName)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if optionsFile != "" {
		v.SetConfigFile(optionsFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read options file %s: %w", optionsFile, err)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return nil, fmt.Errorf("failed to decode options: %w", err)
	}
	return &opts, nil
}

// CookieSource names where a cookie came from, for log messages
type CookieSource string

const (
	CookieFromFlag    CookieSource = "cookie-contents"
	CookieFromFile    CookieSource = "cookie-file"
	CookieFromEnv     CookieSource = "environment"
	CookieFromSession CookieSource = "saved-session"
)

// ResolveCookie returns the first cookie found in, in order: the inline
// contents, the cookie file, the named environment variable and the saved
// session (when enabled). An empty result means a login is needed.
func (o *Options) ResolveCookie(registry *Registry) (string, CookieSource, error) {
	if o.CookieContents != "" {
		return o.CookieContents, CookieFromFlag, nil
	}
	if o.CookieFileName != "" {
		data, err := os.ReadFile(o.CookieFileName)
		if err != nil {
			return "", "", fmt.Errorf("failed to read cookie file: %w", err)
		}
		if c := strings.TrimSpace(string(data)); c != "" {
			return c, CookieFromFile, nil
		}
	}
	if o.CookieEnvName != "" {
		if c := os.Getenv(o.CookieEnvName); c != "" {
			return c, CookieFromEnv, nil
		}
	}
	if o.UseSavedSession && registry != nil {
		if s := registry.GetSession(o.ServerAddress, o.ServerPort); s != nil && s.Cookie != "" {
			return s.Cookie, CookieFromSession, nil
		}
	}
	return "", "", nil
}
