// Package persona defines the extraction identities used to make engine
// requests look like specific legitimate clients, and the order in which
// they are tried.
package persona

// Header is one HTTP header sent with extraction requests. Order matters
// to some platforms, so personas carry a slice rather than a map.
type Header struct {
	Key   string
	Value string
}

// Persona is one extraction identity: a named combination of client type,
// user-agent, headers and optional credentials. Immutable once defined.
type Persona struct {
	Name        string
	Client      string // engine player-client tag, e.g. "android"
	ClientType  string // descriptive tag: ios-app, android-app, web-browser
	UserAgent   string
	Headers     []Header
	Credentials *CredentialBundle // nil when no bundle is loaded or wanted
	GeoBypass   bool

	// wantsCredentials marks personas that should pick up the process
	// credential bundle when one is available.
	wantsCredentials bool
}

// Catalog is the process-wide static persona table. The list order is the
// retry order: personas most likely to succeed come first.
type Catalog struct {
	personas []Persona
}

// NewCatalog builds the catalog, attaching the credential bundle (which
// may be nil) to the personas that use one.
func NewCatalog(creds *CredentialBundle) *Catalog {
	personas := []Persona{
		{
			Name:       "android",
			Client:     "android",
			ClientType: "android-app",
			UserAgent:  "com.google.android.youtube/19.09.37 (Linux; U; Android 14) gzip",
			Headers: []Header{
				{Key: "X-YouTube-Client-Name", Value: "3"},
				{Key: "X-YouTube-Client-Version", Value: "19.09.37"},
			},
			GeoBypass: true,
		},
		{
			Name:       "ios",
			Client:     "ios",
			ClientType: "ios-app",
			UserAgent:  "com.google.ios.youtube/19.09.3 (iPhone14,3; U; CPU iOS 15_6 like Mac OS X)",
			Headers: []Header{
				{Key: "X-YouTube-Client-Name", Value: "5"},
				{Key: "X-YouTube-Client-Version", Value: "19.09.3"},
			},
			GeoBypass: true,
		},
		{
			Name:       "web",
			Client:     "web",
			ClientType: "web-browser",
			UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			Headers: []Header{
				{Key: "Accept-Language", Value: "en-US,en;q=0.9"},
				{Key: "Sec-Fetch-Mode", Value: "navigate"},
			},
			GeoBypass: true,
		},
		{
			Name:       "web-authenticated",
			Client:     "web",
			ClientType: "web-browser",
			UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			Headers: []Header{
				{Key: "Accept-Language", Value: "en-US,en;q=0.9"},
			},
			GeoBypass:        true,
			wantsCredentials: true,
		},
	}

	for i := range personas {
		if personas[i].wantsCredentials {
			personas[i].Credentials = creds
		}
	}

	return &Catalog{personas: personas}
}

// List returns the personas in retry order. The returned slice must not
// be mutated.
func (c *Catalog) List() []Persona {
	return c.personas
}
