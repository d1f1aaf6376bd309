package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/graphdeck/graphdeck-cli/pkg/auth"
	"github.com/graphdeck/graphdeck-cli/pkg/oauth"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Authenticate with GraphDeck via browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "auth-url",
				Usage:   "GraphDeck auth service URL",
				Value:   DefaultAuthURL,
				EnvVars: []string{"GRAPHDECK_AUTH_URL"},
			},
		},
		Action: func(c *cli.Context) error {
			return browserLogin(c.Context, c.String("auth-url"))
		},
	}
}

// browserLogin runs the PKCE flow: start a localhost callback server, open
// the authorization URL in the browser, exchange the returned code and store
// the minted session key.
func browserLogin(ctx context.Context, authURL string) error {
	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	flow, err := oauth.NewFlow(authURL, port)
	if err != nil {
		return err
	}

	type callbackResult struct {
		code string
		err  error
	}
	resultCh := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != flow.State() {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			resultCh <- callbackResult{err: fmt.Errorf("OAuth state mismatch; possible CSRF, aborting")}
			return
		}
		if errMsg := query.Get("error"); errMsg != "" {
			http.Error(w, errMsg, http.StatusBadRequest)
			resultCh <- callbackResult{err: fmt.Errorf("authorization failed: %s", errMsg)}
			return
		}
		fmt.Fprintln(w, "Login complete. You can close this tab and return to the terminal.")
		resultCh <- callbackResult{code: query.Get("code")}
	})

	server := &http.Server{Handler: mux}
	go server.Serve(listener)
	defer server.Close()

	url := flow.AuthURL()
	fmt.Println("Opening browser for authentication...")
	fmt.Printf("If the browser does not open, visit:\n  %s\n\n", url)
	openBrowser(url)

	var code string
	select {
	case res := <-resultCh:
		if res.err != nil {
			return res.err
		}
		code = res.code
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timed out waiting for browser authorization")
	case <-ctx.Done():
		return ctx.Err()
	}

	token, err := flow.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}

	creds := &auth.Credentials{
		APIKey:    token.AccessToken,
		CreatedAt: time.Now(),
		ExpiresAt: token.Expiry,
	}
	if email, ok := token.Extra("email").(string); ok {
		creds.Email = email
	}
	if ws, ok := token.Extra("workspace_id").(string); ok {
		creds.WorkspaceID = ws
	}

	if err := auth.SaveCredentials(creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	if creds.Email != "" {
		fmt.Printf("✓ Logged in as %s\n", creds.Email)
	} else {
		fmt.Println("✓ Logged in")
	}
	return nil
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Remove stored credentials",
		Action: func(c *cli.Context) error {
			if err := auth.ClearCredentials(); err != nil {
				return fmt.Errorf("failed to logout: %w", err)
			}
			fmt.Println("✓ Logged out")
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Display the current authentication context",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: func(c *cli.Context) error {
			creds, err := auth.LoadCredentials()
			if err != nil {
				return err
			}

			if c.Bool("json") {
				output := map[string]interface{}{
					"email":           creds.Email,
					"workspace_id":    creds.WorkspaceID,
					"organization_id": creds.OrganizationID,
					"valid":           auth.IsValid(creds),
				}
				if !creds.ExpiresAt.IsZero() {
					output["expires_at"] = creds.ExpiresAt
				}
				data, _ := json.MarshalIndent(output, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			if creds.Email != "" {
				fmt.Printf("Email: %s\n", creds.Email)
			} else {
				fmt.Println("Authentication: service key (GRAPHDECK_API_KEY)")
			}
			if creds.WorkspaceID != "" {
				fmt.Printf("Workspace: %s\n", creds.WorkspaceID)
			}
			if creds.OrganizationID != "" {
				fmt.Printf("Organization: %s\n", creds.OrganizationID)
			}
			if !creds.ExpiresAt.IsZero() {
				fmt.Printf("Expires: %s\n", creds.ExpiresAt.Format("2006-01-02 15:04:05"))
				if !auth.IsValid(creds) {
					fmt.Println("⚠️  Credentials have expired, run 'graphdeck login'")
				}
			}
			return nil
		},
	}
}

// openBrowser launches the default browser; failures are non-fatal since the
// URL is printed for manual use
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
