package rumbleup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog/log"
)

// Settings keys read from the .env store.
const (
	KeyEmail             = "email"
	KeyPassword          = "password"
	KeyFolderPath        = "folder_path"
	KeyVideoTitle        = "video_title"
	KeyDeleteWhenDone    = "delete_when_done"
	KeyOpenLogWhenDone   = "open_log_when_done"
	KeyHeadless          = "headless"
	KeyChromePath        = "chrome_path"
	KeyUserAgent         = "user_agent"
	KeyCookiesFile       = "cookies_file"
	KeyMaxPollAttempts   = "max_poll_attempts"
	KeyPollInterval      = "poll_interval"
	KeyScreenshotDir     = "screenshot_dir"
	KeyLogFile           = "log_file"
	KeyPrimaryCategory   = "primary_category"
	KeySecondaryCategory = "secondary_category"
)

var settingKeys = []string{
	KeyEmail, KeyPassword, KeyFolderPath, KeyVideoTitle, KeyDeleteWhenDone, KeyOpenLogWhenDone,
	KeyHeadless, KeyChromePath, KeyUserAgent, KeyCookiesFile, KeyMaxPollAttempts, KeyPollInterval,
	KeyScreenshotDir, KeyLogFile, KeyPrimaryCategory, KeySecondaryCategory,
}

const TemplateSuffix = ".template"

var ErrMissingKey = errors.New("missing setting")

// Settings is the key/value configuration loaded once at startup.
// It is never modified after LoadSettings returns.
type Settings struct {
	path   string
	values map[string]string
}

// LoadSettings reads the .env store at path. A missing store is first
// created from path+".template"; if that is missing too, LoadSettings
// warns and returns empty Settings so the first Get reports the gap.
// Environment variables win over the store, matching dotenv loaders that
// never override the environment. They are read here, once.
func LoadSettings(path string) (*Settings, error) {
	if err := bootstrap(path); err != nil {
		return nil, err
	}

	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		values = map[string]string{}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	keys := append([]string{}, settingKeys...)
	for key := range values {
		keys = append(keys, key)
	}
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			values[key] = value
		}
	}
	return &Settings{path: path, values: values}, nil
}

// NewSettings builds Settings from an in-memory map. The environment is
// not consulted.
func NewSettings(values map[string]string) *Settings {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Settings{values: copied}
}

func bootstrap(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	template := path + TemplateSuffix
	content, err := os.ReadFile(template)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("store", path).Str("template", template).Msg("no settings file or template found")
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to read settings template: %w", err)
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("failed to create settings from template: %w", err)
	}
	log.Info().Str("store", path).Msg("created settings from template")
	return nil
}

// Get returns the trimmed value for key.
func (s *Settings) Get(key string) (string, error) {
	value := strings.TrimSpace(s.values[key])
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	return value, nil
}

// Lookup returns the value for key, or fallback when it is not set.
func (s *Settings) Lookup(key, fallback string) string {
	value, err := s.Get(key)
	if err != nil {
		return fallback
	}
	return value
}

// Flag reads key as a boolean-ish value, see ParseFlag.
func (s *Settings) Flag(key string) (bool, error) {
	value, err := s.Get(key)
	if err != nil {
		return false, err
	}
	return ParseFlag(value), nil
}

// Path reads key as a filesystem path, expanding a leading ~.
func (s *Settings) Path(key string) (string, error) {
	value, err := s.Get(key)
	if err != nil {
		return "", err
	}
	return homedir.Expand(value)
}

// ParseFlag reports false only for "0" and "false" (any case).
func ParseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "false":
		return false
	}
	return true
}

// StringToBinary is ParseFlag as 0 or 1.
func StringToBinary(s string) int {
	if ParseFlag(s) {
		return 1
	}
	return 0
}
