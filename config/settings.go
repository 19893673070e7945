package config

import (
	"os"
	"time"
)

// Environment variables read by DefaultSettings.
const (
	EnvConfig     = "BBTOOLS_CONFIG"
	EnvOpenBBURL  = "OPENBB_API_URL"
	EnvOpenBBPAT  = "OPENBB_PAT"
	EnvOpenAPI    = "OPENBB_OPENAPI"
	EnvSECFirm    = "SEC_FIRM"
	EnvSECUser    = "SEC_USER"
	EnvBasePrompt = "BBTOOLS_PROMPT"
)

// Defaults for Settings.
const (
	DefaultConfigPath = "obbtools.yaml"
	DefaultOpenBBURL  = "http://127.0.0.1:6900"
	DefaultTimeout    = 30 * time.Second
)

// Settings are the runtime settings of the bbtools binary.
type Settings struct {
	// ConfigPath is the YAML file of tool definitions.
	ConfigPath string
	// OpenBBURL is the base URL of the OpenBB Platform API, without the /api/v1 prefix.
	OpenBBURL string
	// OpenBBToken is an optional personal access token sent as a bearer token.
	OpenBBToken string
	// OpenAPISpec optionally points at the API's OpenAPI document (file or URL);
	// when set, every configured operation path is checked against it.
	OpenAPISpec string
	// SECFirm and SECUser identify the caller to SEC EDGAR, which rejects anonymous clients.
	SECFirm string
	SECUser string
	// PromptPath optionally points at a file replacing the default base prompt.
	PromptPath string
	// Timeout bounds every HTTP request and tool execution.
	Timeout time.Duration
}

// DefaultSettings returns Settings populated from the environment, falling back to defaults.
func DefaultSettings() Settings {
	return Settings{
		ConfigPath:  envOr(EnvConfig, DefaultConfigPath),
		OpenBBURL:   envOr(EnvOpenBBURL, DefaultOpenBBURL),
		OpenBBToken: os.Getenv(EnvOpenBBPAT),
		OpenAPISpec: os.Getenv(EnvOpenAPI),
		SECFirm:     os.Getenv(EnvSECFirm),
		SECUser:     os.Getenv(EnvSECUser),
		PromptPath:  os.Getenv(EnvBasePrompt),
		Timeout:     DefaultTimeout,
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
