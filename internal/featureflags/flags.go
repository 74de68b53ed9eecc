// Package featureflags holds the server-side feature flag registry.
//
// A request sees flags resolved with this precedence:
// URL parameter ff_<name> > cookie ff_<name> > server override > default.
// Cookie and parameter names carry the lowercased flag name; Resolve maps
// them back to the canonical camelCase name.
package featureflags

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Known flags. The names are shared with the frontend.
const (
	UseDBCompanies         = "useDbCompanies"
	UseDBProducts          = "useDbProducts"
	UseDBWebsites          = "useDbWebsites"
	UseDBTherapeuticAreas  = "useDbTherapeuticAreas"
	UseDBCompanyFinancials = "useDbCompanyFinancials"
	UseDBCompanyMetrics    = "useDbCompanyMetrics"
	UseDBCompanyStockData  = "useDbCompanyStockData"
	UseLocalDatabase       = "useLocalDatabase"
	EnableDataSourceToggle = "enableDataSourceToggle"
)

// DatabaseCookie selects the local or remote database per browser. It is
// written by the Supabase env toggle, not by the flag endpoints.
const DatabaseCookie = "use_local_database"

// CookiePrefix is prepended to a lowercased flag name for cookies and URL params.
const CookiePrefix = "ff_"

// CookieMaxAge is how long a toggled flag persists in the browser.
const CookieMaxAge = 30 * 24 * time.Hour

// Flags is a snapshot of flag values.
type Flags map[string]bool

// Registry is a concurrency-safe set of known flags with defaults and
// server-side overrides.
type Registry struct {
	mu        sync.RWMutex
	defaults  Flags
	overrides Flags
	lower     map[string]string
}

// Defaults returns the built-in defaults for the given environment.
func Defaults(useLocalDatabase, dev bool) Flags {
	return Flags{
		UseDBCompanies:         false,
		UseDBProducts:          false,
		UseDBWebsites:          false,
		UseDBTherapeuticAreas:  false,
		UseDBCompanyFinancials: false,
		UseDBCompanyMetrics:    false,
		UseDBCompanyStockData:  false,
		UseLocalDatabase:       useLocalDatabase,
		EnableDataSourceToggle: dev,
	}
}

// NewRegistry creates a registry. The keys of defaults are the known flags.
func NewRegistry(defaults Flags) *Registry {
	d := make(Flags, len(defaults))
	lower := make(map[string]string, len(defaults))
	for k, v := range defaults {
		d[k] = v
		lower[strings.ToLower(k)] = k
	}
	return &Registry{defaults: d, overrides: Flags{}, lower: lower}
}

// Known reports whether name is a registered flag.
func (r *Registry) Known(name string) bool {
	_, ok := r.defaults[name]
	return ok
}

// Names returns the registered flag names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defaults))
	for name := range r.defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set records a server-side override. Unknown names return false.
func (r *Registry) Set(name string, value bool) bool {
	if !r.Known(name) {
		return false
	}
	r.mu.Lock()
	r.overrides[name] = value
	r.mu.Unlock()
	return true
}

// Reset drops every server-side override.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.overrides = Flags{}
	r.mu.Unlock()
}

// Current returns defaults merged with server-side overrides.
func (r *Registry) Current() Flags {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flags := make(Flags, len(r.defaults))
	for k, v := range r.defaults {
		flags[k] = v
	}
	for k, v := range r.overrides {
		flags[k] = v
	}
	return flags
}

// Resolve returns the flags as seen by the request.
func (r *Registry) Resolve(req *http.Request) Flags {
	flags := r.Current()

	for _, c := range req.Cookies() {
		if name, ok := r.fromParam(c.Name); ok {
			flags[name] = c.Value == "true"
		}
	}

	for key, values := range req.URL.Query() {
		if name, ok := r.fromParam(key); ok && len(values) > 0 {
			flags[name] = values[0] == "true"
		}
	}

	return flags
}

func (r *Registry) fromParam(key string) (string, bool) {
	if !strings.HasPrefix(key, CookiePrefix) {
		return "", false
	}
	name, ok := r.lower[strings.ToLower(strings.TrimPrefix(key, CookiePrefix))]
	return name, ok
}

// ParamName returns the cookie and URL parameter name for a flag.
func ParamName(flag string) string {
	return CookiePrefix + strings.ToLower(flag)
}

// Cookie builds the persistence cookie for a toggled flag.
func Cookie(flag string, value bool, now time.Time) *http.Cookie {
	v := "false"
	if value {
		v = "true"
	}
	return &http.Cookie{
		Name:     ParamName(flag),
		Value:    v,
		Path:     "/",
		Expires:  now.Add(CookieMaxAge),
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie builds a cookie that clears a flag in the browser.
func ExpiredCookie(flag string) *http.Cookie {
	return &http.Cookie{
		Name:     ParamName(flag),
		Value:    "false",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	}
}

// Truthy converts a decoded JSON value to a bool the way a loosely typed
// client expects: false, 0, "", and null are false, anything else is true.
func Truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}
