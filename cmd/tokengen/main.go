// Package main provides a CLI tool for minting test access tokens for the
// autoquote API. These tokens use the dev signing key and will NOT work in
// production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/token"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "autoquote"
	defaultAudience = "autoquote-api"
	defaultTokenTTL = 24 * time.Hour
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	userID := flag.String("user-id", "", "User ID (UUID). Generated if empty.")
	sessionID := flag.String("session-id", "", "Session ID (UUID). Generated if empty.")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	signingKey := flag.String("signing-key", devSigningKey, "JWT signing key")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Usage = printUsage
	flag.Parse()

	uid := parseOrGenerateUUID(*userID, "user-id")
	sid := parseOrGenerateUUID(*sessionID, "session-id")

	svc := token.NewJWTService(*signingKey, defaultIssuer, defaultAudience, *ttl)
	accessToken, jti, err := svc.GenerateAccessToken(uid, sid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     accessToken,
			Type:      "access_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"user_id":    uid.String(),
				"session_id": sid.String(),
				"jti":        jti,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Expires In: %s\n", *ttl)
	fmt.Printf("User ID:    %s\n", uid)
	fmt.Printf("Session ID: %s\n", sid)
	fmt.Printf("JTI:        %s\n", jti)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(accessToken)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/quotes")
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `tokengen - Generate test access tokens for the autoquote API

WARNING: Tokens minted with the default key only validate against a server
         running with the default dev signing key.

Usage:
  tokengen [flags]

Examples:
  # Generate a token for a fresh user
  tokengen

  # Generate a token for a known user
  tokengen -user-id "550e8400-e29b-41d4-a716-446655440000"

  # Output as JSON
  tokengen -json

Flags:`)
	flag.PrintDefaults()
}

func parseOrGenerateUUID(input, fieldName string) uuid.UUID {
	if input == "" {
		return uuid.New()
	}
	parsed, err := uuid.Parse(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid %s UUID: %s\n", fieldName, input)
		os.Exit(1)
	}
	return parsed
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
