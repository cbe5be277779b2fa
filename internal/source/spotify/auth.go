package spotify

import "golang.org/x/oauth2"

// Scope grants read access to the listener's top artists and tracks.
const Scope = "user-top-read"

var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.spotify.com/authorize",
	TokenURL: "https://accounts.spotify.com/api/token",
}

// AuthConfig returns the authorization-code flow configuration for an app
// registered with Spotify.
func AuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{Scope},
		Endpoint:     Endpoint,
	}
}
