// Package auth implements login, logout and session status.
package auth

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/term"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/config"
)

// Login authenticates against the backend and stores the session in the
// keyring.
func Login(ctx context.Context, svc api.AuthService, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	var username string
	for _, arg := range args {
		if strings.HasPrefix(arg, "--username=") {
			username = strings.TrimPrefix(arg, "--username=")
		}
	}
	if username == "" {
		fmt.Print("Username: ")
		username, _ = reader.ReadString('\n')
		username = strings.TrimSpace(username)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %v", err)
	}
	password := string(passwordBytes)
	if password == "" {
		return fmt.Errorf("password is required")
	}

	response, err := svc.Login(ctx, username, password)
	if err != nil {
		return err
	}

	if err := config.StoreSession(response.Username, response.Token); err != nil {
		return fmt.Errorf("failed to store session: %v", err)
	}

	fmt.Printf("Successfully logged in as '%s'\n", response.Username)
	return nil
}

// Logout clears the stored session.
func Logout() error {
	username, err := config.GetUsername()
	if err != nil {
		fmt.Println("No user logged in")
		return nil
	}
	if err := config.ClearSession(username); err != nil {
		return fmt.Errorf("failed to clear session: %v", err)
	}
	fmt.Printf("Logged out '%s'\n", username)
	return nil
}

// Status shows the current session, including token expiry when the token
// is a JWT. The expiry is read without verification; only the backend can
// verify its own tokens.
func Status() error {
	username, err := config.GetUsername()
	if err != nil {
		fmt.Println("Not logged in")
		return nil
	}
	token, err := config.GetToken(username)
	if err != nil {
		fmt.Println("Not logged in")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "User:\t%s\n", username)
	fmt.Fprintf(w, "Backend:\t%s\n", config.GetConfig().BaseURL())

	if expiry, ok := tokenExpiry(token); ok {
		status := "valid"
		if time.Now().After(expiry) {
			status = "expired"
		}
		fmt.Fprintf(w, "Token:\t%s (expires %s)\n", status, expiry.Format(time.RFC3339))
	} else {
		fmt.Fprintf(w, "Token:\tstored\n")
	}
	_ = w.Flush()
	return nil
}

func tokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}
	return expiry.Time, true
}
