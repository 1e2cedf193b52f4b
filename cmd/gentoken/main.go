// gentoken mints a signed access token for local API testing, skipping the
// Google login flow. The user must already exist (or pass -user-id).
//
//	go run ./cmd/gentoken -email dev@example.com
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"buzzhire/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	email := flag.String("email", "", "email claim (required)")
	name := flag.String("name", "Dev User", "name claim")
	userID := flag.String("user-id", "", "user ID claim; random when empty")
	hours := flag.Int("hours", 8, "token lifetime in hours")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: gentoken -email <email> [-name <name>] [-user-id <uuid>] [-hours <n>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	uid := *userID
	if uid == "" {
		uid = uuid.NewString()
	}

	claims := jwt.MapClaims{
		"user_id": uid,
		"email":   *email,
		"name":    *name,
		"picture": "",
		"typ":     "access",
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(time.Duration(*hours) * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign:", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
