package config

type OAuthConfig interface {
	GetGitHubClientID() string
	GetGitHubClientSecret() string
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GoogleEnabled() bool
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GitHub keeps the bare CLIENT_ID/CLIENT_SECRET names used by the pages deployment.
func (OAuth) GetGitHubClientID() string {
	return GetEnv("CLIENT_ID", "")
}

func (OAuth) GetGitHubClientSecret() string {
	return GetEnv("CLIENT_SECRET", "")
}

func (OAuth) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (OAuth) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

func (o OAuth) GoogleEnabled() bool {
	return o.GetGoogleClientID() != "" && o.GetGoogleClientSecret() != ""
}
