// Command token mints a bearer token for local development and ops.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"booklib/internal/auth"
	"booklib/internal/policy"

	"github.com/joho/godotenv"
)

func main() {
	var (
		id   = flag.String("id", "dev", "Actor id to embed in the token")
		role = flag.String("role", policy.RoleEditor, "Actor role: ADMIN, EDITOR or VIEWER")
		ttl  = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	)
	flag.Parse()

	_ = godotenv.Load(".env.local")

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("missing required environment variable: JWT_SECRET")
	}

	token, err := auth.GenerateToken(secret, policy.Actor{ID: *id, Role: *role}, *ttl)
	if err != nil {
		log.Fatalf("cannot generate token: %v", err)
	}
	fmt.Println(token)
}
