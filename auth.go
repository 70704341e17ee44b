package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Acquire an app-only access token",
		Long: `Request a token with the client-credentials grant and report its type
and lifetime. When the token is a JWT its app id, tenant and application
roles are shown too, which is usually enough to diagnose a missing
Sites.Selected grant. The token itself is printed only with --show.`,
		Args: cobra.NoArgs,
		RunE: runToken,
	}

	cmd.Flags().Bool("show", false, "print the access token")

	return cmd
}

// tokenJSON is the JSON output schema for the token command.
type tokenJSON struct {
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	ExtExpiresIn int          `json:"ext_expires_in"`
	Expiry       string       `json:"expiry"`
	Claims       *tokenClaims `json:"claims,omitempty"`
	AccessToken  string       `json:"access_token,omitempty"`
}

// tokenClaims is the subset of access-token claims worth showing.
type tokenClaims struct {
	AppID    string   `json:"app_id,omitempty"`
	TenantID string   `json:"tenant_id,omitempty"`
	Audience string   `json:"audience,omitempty"`
	Roles    []string `json:"roles"`
}

// decodeClaims reads the claims of a JWT access token without verifying
// its signature; only the service can do that. Opaque tokens yield false.
func decodeClaims(accessToken string) (*tokenClaims, bool) {
	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, false
	}

	out := &tokenClaims{Roles: []string{}}

	out.AppID, _ = claims["appid"].(string)
	if out.AppID == "" {
		out.AppID, _ = claims["azp"].(string)
	}

	out.TenantID, _ = claims["tid"].(string)

	if aud, err := claims.GetAudience(); err == nil && len(aud) > 0 {
		out.Audience = aud[0]
	}

	if roles, ok := claims["roles"].([]any); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok {
				out.Roles = append(out.Roles, s)
			}
		}
	}

	return out, true
}

func runToken(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cc := mustCLIContext(ctx)

	show, err := cmd.Flags().GetBool("show")
	if err != nil {
		return err
	}

	sess, err := NewSession(ctx, cc)
	if err != nil {
		return err
	}

	tok := sess.Token
	claims, _ := decodeClaims(tok.AccessToken)

	if cc.Flags.JSON {
		out := tokenJSON{
			TokenType:    tok.TokenType,
			ExpiresIn:    tok.ExpiresIn,
			ExtExpiresIn: tok.ExtExpiresIn,
			Expiry:       tok.Expiry.UTC().Format(time.RFC3339),
			Claims:       claims,
		}

		if show {
			out.AccessToken = tok.AccessToken
		}

		enc := json.NewEncoder(cc.Out)
		enc.SetIndent("", "  ")

		return enc.Encode(out)
	}

	fmt.Fprintf(cc.Out, "Token type: %s\n", tok.TokenType)
	fmt.Fprintf(cc.Out, "Expires in: %s (at %s)\n",
		time.Duration(tok.ExpiresIn)*time.Second, tok.Expiry.Local().Format(time.RFC1123))

	if claims != nil {
		fmt.Fprintf(cc.Out, "App ID:     %s\n", claims.AppID)
		fmt.Fprintf(cc.Out, "Tenant:     %s\n", claims.TenantID)

		roles := "(none)"
		if len(claims.Roles) > 0 {
			roles = strings.Join(claims.Roles, ", ")
		}

		fmt.Fprintf(cc.Out, "Roles:      %s\n", roles)
	}

	if show {
		fmt.Fprintln(cc.Out, tok.AccessToken)
	}

	return nil
}
