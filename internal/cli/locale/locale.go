package locale

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/yndnr/unionhub-go/internal/storage"
	"github.com/yndnr/unionhub-go/internal/telemetry/logger"
)

// ErrUnsupported is returned by Set for a locale outside Supported.
var ErrUnsupported = errors.New("locale: unsupported locale")

// Fallback is used when nothing else matches.
const Fallback = "en"

var supported = []language.Tag{
	language.English,
	language.SimplifiedChinese,
	language.Japanese,
	language.Korean,
	language.TraditionalChinese,
}

var matcher = language.NewMatcher(supported)

// Supported returns the supported locale codes, fallback first.
func Supported() []string {
	out := make([]string, len(supported))
	for i, t := range supported {
		out[i] = t.String()
	}
	return out
}

// IsSupported reports whether code names a supported locale exactly.
func IsSupported(code string) bool {
	_, ok := lookup(code)
	return ok
}

func lookup(code string) (language.Tag, bool) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return language.Und, false
	}
	for _, t := range supported {
		if t.String() == tag.String() {
			return t, true
		}
	}
	return language.Und, false
}

// Match returns the supported locale closest to an environment language
// such as "zh_TW.UTF-8" or "ja-JP", or Fallback.
func Match(envLang string) string {
	envLang = strings.TrimSpace(envLang)
	if i := strings.IndexAny(envLang, ".@"); i >= 0 {
		envLang = envLang[:i]
	}
	envLang = strings.ReplaceAll(envLang, "_", "-")
	if envLang == "" || envLang == "C" || envLang == "POSIX" {
		return Fallback
	}

	tag, err := language.Parse(envLang)
	if err != nil {
		return Fallback
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Fallback
	}
	return supported[idx].String()
}

// EnvLanguage returns the first of LC_ALL, LC_MESSAGES and LANG that is set.
func EnvLanguage() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// Store is the locale preference.
type Store struct {
	kv     storage.KV
	logger logger.Logger

	mu      sync.RWMutex
	current language.Tag
}

// New resolves the initial locale: the stored value if supported, else the
// best match for envLang, else Fallback. Storage errors are logged and
// treated as no stored value.
func New(ctx context.Context, kv storage.KV, envLang string, log logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	s := &Store{kv: kv, logger: log.With("component", "locale")}

	stored, err := kv.Get(ctx, storage.KeyLocale)
	switch {
	case err == nil:
		if tag, ok := lookup(stored); ok {
			s.current = tag
			return s
		}
		s.logger.Debug("ignoring unsupported stored locale", "locale", stored)
	case errors.Is(err, storage.ErrKeyNotFound):
	default:
		s.logger.Warn("stored locale unreadable", "error", err)
	}

	s.current, _ = lookup(Match(envLang))
	return s
}

// Current returns the active locale code.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.String()
}

// Tag returns the active locale tag.
func (s *Store) Tag() language.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set validates code, writes it to storage and makes it current. An
// unsupported code or a storage failure leaves the current locale unchanged.
func (s *Store) Set(ctx context.Context, code string) error {
	tag, ok := lookup(code)
	if !ok {
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupported, code, strings.Join(Supported(), ", "))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(ctx, storage.KeyLocale, tag.String()); err != nil {
		return fmt.Errorf("persist locale: %w", err)
	}
	s.current = tag
	s.logger.Debug("locale changed", "locale", tag.String())
	return nil
}

// Printer returns a printer for the active locale.
func (s *Store) Printer() *message.Printer {
	return NewPrinter(s.Tag())
}
