package credentials

import (
	"context"
	"io"
	"net/http"
	"testing"

	"golang.org/x/oauth2"

	"github.com/odyssey4me/atlascore/config"
)

func envMap(values map[string]string) func(string) string {
	return func(name string) string { return values[name] }
}

func loadMap(files map[string]*config.Service) func(string) (*config.Service, error) {
	return func(service string) (*config.Service, error) { return files[service], nil }
}

func TestResolvePriority(t *testing.T) {
	tests := []struct {
		name       string
		store      SecretStore
		env        map[string]string
		files      map[string]*config.Service
		wantURL    string
		wantSecret string
		wantSource config.Source
	}{
		{
			name: "secret store beats env and file",
			store: &StaticStore{Values: map[string]map[Field]string{
				"jira": {FieldSecret: "store-token"},
			}},
			env: map[string]string{"JIRA_API_TOKEN": "env-token"},
			files: map[string]*config.Service{
				"jira": {Token: "file-token", URL: "https://file.example.com"},
			},
			wantURL:    "https://file.example.com",
			wantSecret: "store-token",
			wantSource: config.SourceSecretStore,
		},
		{
			name: "env beats file",
			env:  map[string]string{"JIRA_API_TOKEN": "env-token"},
			files: map[string]*config.Service{
				"jira": {Token: "file-token", URL: "https://file.example.com"},
			},
			wantURL:    "https://file.example.com",
			wantSecret: "env-token",
			wantSource: config.SourceEnv,
		},
		{
			name: "file beats shared",
			files: map[string]*config.Service{
				"jira":      {Token: "file-token", URL: "https://file.example.com"},
				"atlassian": {Token: "shared-token", URL: "https://shared.example.com"},
			},
			wantURL:    "https://file.example.com",
			wantSecret: "file-token",
			wantSource: config.SourceFile,
		},
		{
			name: "shared config is the last resort",
			files: map[string]*config.Service{
				"atlassian": {Token: "shared-token", URL: "https://shared.example.com"},
			},
			wantURL:    "https://shared.example.com",
			wantSecret: "shared-token",
			wantSource: config.SourceShared,
		},
		{
			name:       "shared env applies when nothing else does",
			env:        map[string]string{"ATLASSIAN_API_TOKEN": "shared-env", "ATLASSIAN_URL": "https://shared-env.example.com"},
			wantURL:    "https://shared-env.example.com",
			wantSecret: "shared-env",
			wantSource: config.SourceShared,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resolver{
				Store:      tt.store,
				Getenv:     envMap(tt.env),
				LoadConfig: loadMap(tt.files),
				ErrWriter:  io.Discard,
			}

			creds, err := r.Resolve(context.Background(), "jira")
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if creds.BaseURL != tt.wantURL {
				t.Errorf("BaseURL = %q, want %q", creds.BaseURL, tt.wantURL)
			}
			if creds.Secret != tt.wantSecret {
				t.Errorf("Secret = %q, want %q", creds.Secret, tt.wantSecret)
			}
			if got := creds.Source(FieldSecret); got != tt.wantSource {
				t.Errorf("Source(secret) = %q, want %q", got, tt.wantSource)
			}
		})
	}
}

func TestResolveFieldAliases(t *testing.T) {
	t.Run("BASE_URL and USERNAME env aliases", func(t *testing.T) {
		r := &Resolver{
			Getenv: envMap(map[string]string{
				"JIRA_BASE_URL": "https://alias.example.com/",
				"JIRA_USERNAME": "jdoe",
				"JIRA_PASSWORD": "hunter2",
			}),
			LoadConfig: loadMap(nil),
		}

		creds, err := r.Resolve(context.Background(), "jira")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if creds.BaseURL != "https://alias.example.com" {
			t.Errorf("BaseURL = %q, want trailing slash trimmed", creds.BaseURL)
		}
		if creds.Identity != "jdoe" || creds.Secret != "hunter2" {
			t.Errorf("identity/secret = %q/%q", creds.Identity, creds.Secret)
		}
	})

	t.Run("config email wins over username, token over password", func(t *testing.T) {
		r := &Resolver{
			Getenv: envMap(nil),
			LoadConfig: loadMap(map[string]*config.Service{
				"confluence": {
					Email:    "dev@example.com",
					Username: "jdoe",
					Token:    "tok",
					Password: "pw",
				},
			}),
		}

		creds, err := r.Resolve(context.Background(), "confluence")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if creds.Identity != "dev@example.com" {
			t.Errorf("Identity = %q, want email preferred", creds.Identity)
		}
		if creds.Secret != "tok" {
			t.Errorf("Secret = %q, want token preferred", creds.Secret)
		}
	})

	t.Run("fields undefined everywhere resolve empty", func(t *testing.T) {
		r := &Resolver{Getenv: envMap(nil), LoadConfig: loadMap(nil)}

		creds, err := r.Resolve(context.Background(), "jira")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if creds.BaseURL != "" || creds.Identity != "" || creds.Secret != "" {
			t.Errorf("got %+v, want all empty", creds)
		}
		if got := creds.Source(FieldURL); got != config.SourceUnset {
			t.Errorf("Source(url) = %q, want unset", got)
		}
	})
}

func TestValidity(t *testing.T) {
	tests := []struct {
		name      string
		creds     Credentials
		mode      Mode
		wantValid bool
		wantMiss  int
	}{
		{
			name:      "token plus url is valid under token mode",
			creds:     Credentials{BaseURL: "https://x.atlassian.net", Secret: "tok"},
			mode:      ModeToken,
			wantValid: true,
		},
		{
			name:      "token plus url is invalid under basic mode",
			creds:     Credentials{BaseURL: "https://x.atlassian.net", Secret: "tok"},
			mode:      ModeBasic,
			wantValid: false,
			wantMiss:  1,
		},
		{
			name:      "full triple is valid under basic mode",
			creds:     Credentials{BaseURL: "https://x.atlassian.net", Identity: "me", Secret: "pw"},
			mode:      ModeBasic,
			wantValid: true,
		},
		{
			name:      "missing url invalidates both modes",
			creds:     Credentials{Secret: "tok"},
			mode:      ModeToken,
			wantValid: false,
			wantMiss:  1,
		},
		{
			name:      "empty credentials name every missing field",
			creds:     Credentials{},
			mode:      ModeBasic,
			wantValid: false,
			wantMiss:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.creds.Valid(tt.mode); got != tt.wantValid {
				t.Errorf("Valid(%s) = %v, want %v", tt.mode, got, tt.wantValid)
			}
			if got := len(tt.creds.MissingFields(tt.mode)); got != tt.wantMiss {
				t.Errorf("MissingFields(%s) has %d entries, want %d", tt.mode, got, tt.wantMiss)
			}
		})
	}
}

func TestApply(t *testing.T) {
	t.Run("identity plus secret uses basic auth", func(t *testing.T) {
		creds := Credentials{Identity: "dev@example.com", Secret: "tok"}
		req, _ := http.NewRequest(http.MethodGet, "https://x.atlassian.net", nil)
		creds.Apply(req)

		// base64("dev@example.com:tok")
		want := "Basic ZGV2QGV4YW1wbGUuY29tOnRvaw=="
		if got := req.Header.Get("Authorization"); got != want {
			t.Errorf("Authorization = %q, want %q", got, want)
		}
	})

	t.Run("secret alone uses bearer auth", func(t *testing.T) {
		creds := Credentials{Secret: "pat-token"}
		req, _ := http.NewRequest(http.MethodGet, "https://jira.corp.example.com", nil)
		creds.Apply(req)

		if got := req.Header.Get("Authorization"); got != "Bearer pat-token" {
			t.Errorf("Authorization = %q, want Bearer", got)
		}
	})

	t.Run("no secret sets nothing", func(t *testing.T) {
		creds := Credentials{Identity: "jdoe"}
		req, _ := http.NewRequest(http.MethodGet, "https://x", nil)
		creds.Apply(req)

		if got := req.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
	})
}

func TestTokenSourceStore(t *testing.T) {
	store := &TokenSourceStore{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "oauth-token"}),
	}

	got, err := store.Lookup(context.Background(), "jira", FieldSecret)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got != "oauth-token" {
		t.Errorf("Lookup(secret) = %q, want %q", got, "oauth-token")
	}

	got, err = store.Lookup(context.Background(), "jira", FieldIdentity)
	if err != nil || got != "" {
		t.Errorf("Lookup(identity) = %q, %v; want empty, nil", got, err)
	}
}
