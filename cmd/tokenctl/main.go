// tokenctl emite e inspeciona tokens com o JWT_SECRET do ambiente (ou .env).
//
//	tokenctl issue --user u1 --email a@b.com --role user [--tenant r1] [--ttl 2h]
//	tokenctl verify [--check-user] <token>
//
// verify faz as checagens locais (estrutura, assinatura, expiração). Com
// --check-user consulta também o usuário ativo no Postgres (DATABASE_URL).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"restaurant-gateway/internal/config"
	"restaurant-gateway/middleware/auth/application"
	"restaurant-gateway/middleware/auth/domain"
	"restaurant-gateway/middleware/auth/infra"

	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

const usage = `usage:
  tokenctl issue --user ID [--email E] [--role R] [--tenant T] [--ttl D]
  tokenctl verify [--check-user] TOKEN
`

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return 1
	}

	switch args[0] {
	case "issue":
		return issue(cfg, args[1:], stdout, stderr)
	case "verify":
		return verify(cfg, args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return 2
	}
}

// noUsers satisfaz o TokenService quando só as checagens locais são usadas.
var noUsers = domain.UserLookupFunc(func(context.Context, string) (*domain.User, error) {
	return nil, errors.New("user lookup not configured")
})

func issue(cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("issue", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	user := fs.String("user", "", "user id (required)")
	email := fs.String("email", "", "user email")
	role := fs.String("role", domain.RoleUser, "user role")
	tenant := fs.String("tenant", "", "restaurant id for tenant admins")
	ttl := fs.Duration("ttl", cfg.JWTExpiresIn, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *user == "" {
		fmt.Fprintln(stderr, "--user is required")
		return 2
	}

	svc, err := application.NewTokenService(application.TokenConfig{Secret: cfg.JWTSecret, TTL: *ttl, Users: noUsers})
	if err != nil {
		fmt.Fprintf(stderr, "token service error: %v\n", err)
		return 1
	}
	tok, err := svc.Issue(domain.Subject{UserID: *user, Email: *email, Role: *role, TenantID: *tenant})
	if err != nil {
		fmt.Fprintf(stderr, "issue error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, tok)
	return 0
}

func verify(cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	checkUser := fs.Bool("check-user", false, "also look up the active user in DATABASE_URL")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	token := fs.Arg(0)

	users := domain.UserLookup(noUsers)
	if *checkUser {
		if cfg.DatabaseURL == "" {
			fmt.Fprintln(stderr, "--check-user needs DATABASE_URL")
			return 2
		}
		db, err := infra.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintf(stderr, "postgres error: %v\n", err)
			return 1
		}
		defer func() { _ = db.Close() }()
		users = infra.NewPostgresUsers(db)
	}

	svc, err := application.NewTokenService(application.TokenConfig{Secret: cfg.JWTSecret, Users: users})
	if err != nil {
		fmt.Fprintf(stderr, "token service error: %v\n", err)
		return 1
	}

	var out any
	if *checkUser {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		id, err := svc.Verify(ctx, token)
		if err != nil {
			return fail(stdout, err)
		}
		out = map[string]any{"valid": true, "identity": id}
	} else {
		claims, err := svc.Decode(token)
		if err != nil {
			return fail(stdout, err)
		}
		out = map[string]any{
			"valid":     true,
			"claims":    claims,
			"expiresAt": claims.ExpiresAt.UTC().Format(time.RFC3339),
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
	return 0
}

func fail(stdout io.Writer, err error) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]any{"valid": false, "code": domain.CodeOf(err), "error": err.Error()})
	return 1
}
