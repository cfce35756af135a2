package oauth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/browser"
	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"go.withmatt.com/maildigest/internal/log"
)

const (
	callbackPath   = "/oauth2callback"
	keyringService = "go.withmatt.com/maildigest"
)

// Environment variables holding credentials.
const (
	EnvAccessToken  = "GMAIL_ACCESS_TOKEN"
	EnvRefreshToken = "GMAIL_REFRESH_TOKEN"
	EnvClientID     = "GMAIL_CLIENT_ID"
	EnvClientSecret = "GMAIL_CLIENT_SECRET"
)

var (
	ErrNoCredentials = errors.New("no Gmail credentials in environment")
	ErrNotLoggedIn   = errors.New("not logged in")
)

// Config returns the OAuth client config, read-only Gmail scope, with the
// client ID and secret taken from the environment.
func Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}
}

// FromEnv builds a token source from GMAIL_* environment variables. A
// refresh token lets the source renew expired access tokens on its own.
func FromEnv(ctx context.Context) (oauth2.TokenSource, error) {
	access := strings.TrimSpace(os.Getenv(EnvAccessToken))
	refresh := strings.TrimSpace(os.Getenv(EnvRefreshToken))
	if access == "" && refresh == "" {
		return nil, ErrNoCredentials
	}

	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}
	if refresh == "" {
		return oauth2.StaticTokenSource(tok), nil
	}

	cfg := Config()
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%s and %s are required with %s", EnvClientID, EnvClientSecret, EnvRefreshToken)
	}
	return cfg.TokenSource(ctx, tok), nil
}

// TokenSource returns a token source for email using the token stored in
// the keyring by Login. A refreshed token is written back.
func TokenSource(ctx context.Context, email string) (oauth2.TokenSource, error) {
	if strings.TrimSpace(email) == "" {
		return nil, errors.New("missing email for oauth")
	}

	tok, err := tokenFromKeyring(email)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("%w as %s: run 'maildigest auth login %s'", ErrNotLoggedIn, email, email)
		}
		return nil, fmt.Errorf("unable to load oauth token from keyring: %w", err)
	}

	tokenSource := Config().TokenSource(ctx, tok)
	newTok, err := tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed for %s: %w", email, err)
	}
	if newTok.AccessToken != tok.AccessToken {
		if err := saveTokenToKeyring(email, newTok); err != nil {
			log.Printf("Unable to cache oauth token in keyring: %v", err)
		}
	}
	return tokenSource, nil
}

// Login runs the browser authorization flow for email and stores the
// resulting token in the keyring.
func Login(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("missing email for oauth")
	}
	cfg := Config()
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return fmt.Errorf("%s and %s must be set to log in", EnvClientID, EnvClientSecret)
	}

	tok, err := getTokenFromWeb(ctx, cfg, email)
	if err != nil {
		return err
	}
	return saveTokenToKeyring(email, tok)
}

func getTokenFromWeb(ctx context.Context, config *oauth2.Config, email string) (*oauth2.Token, error) {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("unable to start oauth callback server: %w", err)
	}
	defer listener.Close()

	cfg := *config
	cfg.RedirectURL = fmt.Sprintf("http://%s%s", listener.Addr().String(), callbackPath)

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	pkceVerifier, pkceChallenge, err := generatePKCE()
	if err != nil {
		return nil, err
	}

	authURL := cfg.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("login_hint", email),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", pkceChallenge),
	)

	if err := browser.OpenURL(authURL); err != nil {
		fmt.Fprintf(os.Stderr, "Open this URL to authorize: %v\n", authURL)
	} else {
		fmt.Fprintf(os.Stderr, "If your browser does not open, visit: %v\n", authURL)
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	sendErr := func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "Invalid state parameter.", http.StatusBadRequest)
			sendErr(errors.New("oauth state mismatch"))
		case q.Get("error") != "":
			http.Error(w, q.Get("error"), http.StatusBadRequest)
			sendErr(fmt.Errorf("oauth error: %s", q.Get("error")))
		case q.Get("code") == "":
			http.Error(w, "Missing code parameter.", http.StatusBadRequest)
			sendErr(errors.New("oauth callback missing code"))
		default:
			_, _ = w.Write([]byte("maildigest authentication complete. You can close this window."))
			select {
			case codeCh <- q.Get("code"):
			default:
			}
		}
	})

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sendErr(err)
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", pkceVerifier))
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-waitCtx.Done():
		return nil, errors.New("timed out waiting for oauth callback")
	}
}

func generatePKCE() (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("unable to generate PKCE verifier: %w", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(buf)
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])
	return verifier, challenge, nil
}

func randomState() (string, error) {
	const size = 16
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("unable to generate oauth state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func tokenFromKeyring(email string) (*oauth2.Token, error) {
	value, err := keyring.Get(keyringService, keyringAccount(email))
	if err != nil {
		return nil, err
	}

	var tok oauth2.Token
	if err := json.Unmarshal([]byte(value), &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func saveTokenToKeyring(email string, token *oauth2.Token) error {
	if token == nil {
		return errors.New("missing oauth token")
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	log.Printf("Saving credential to keyring for: %s", email)
	return keyring.Set(keyringService, keyringAccount(email), string(data))
}

// DeleteToken removes the stored token for email.
func DeleteToken(email string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	if err := keyring.Delete(keyringService, keyringAccount(email)); err != nil &&
		!errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("unable to delete token from keyring: %w", err)
	}
	return nil
}

func keyringAccount(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
