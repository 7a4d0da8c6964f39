// Command gentoken prints a session token for a user in the local
// database, for calling the API by hand during development.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gistree/server/internal/config"
	"github.com/gistree/server/storage/sqlite"
	"github.com/gistree/server/token"
	"github.com/gistree/server/token/jwt"
	"github.com/gistree/server/users"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var dbPath, studentID string
	var ttl time.Duration

	flagSet := pflag.NewFlagSet("gentoken", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&dbPath, "db", config.GetEnv("DB_PATH", "./data/gistree.db"), "path to the SQLite database")
	flagSet.StringVar(&studentID, "student-id", "", "student id of the user to sign for (default: the first user)")
	flagSet.DurationVar(&ttl, "ttl", jwt.DefaultSessionTTL, "token lifetime")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	if ttl <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	secret, err := config.SigningSecret()
	if err != nil {
		return err
	}
	signer, err := token.NewHMACSigner(secret)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store := sqlite.NewUserStore(db)
	var user *users.User
	if studentID != "" {
		user, err = store.GetByStudentID(ctx, studentID)
	} else {
		user, err = store.First(ctx)
	}
	if err != nil {
		return fmt.Errorf("finding user: %w", err)
	}

	tok, err := jwt.NewCreator(signer, ttl).CreateSessionTokenWithTTL(user, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Signed a %s token for %s (%s)\n", ttl, user.Name, user.StudentID)
	fmt.Fprintln(stdout, tok)
	return nil
}
