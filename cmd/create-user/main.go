package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/app"
	"github.com/vladislavdragonenkov/shop/internal/auth"
	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/account"
)

const defaultTimeout = 30 * time.Second

var errEmptyInput = errors.New("input is empty")

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.LookupEnv); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// run регистрирует пользователя в хранилище из SHOP_*.
// Недостающие email и пароль читаются построчно из in.
func run(ctx context.Context, args []string, in io.Reader, out io.Writer, lookup app.EnvLookup) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var email, password string
	fs.StringVar(&email, "email", "", "user email (prompted when empty)")
	fs.StringVar(&password, "password", "", "user password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, warnings := app.ConfigFromEnv(lookup)
	for _, w := range warnings {
		_, _ = fmt.Fprintf(out, "warning: %s\n", w)
	}
	// Пользователь из in-memory хранилища исчезнет вместе с процессом.
	if cfg.StorageDriver == app.StorageDriverMemory {
		cfg.StorageDriver = app.StorageDriverSQLite
	}

	logger := cliLogger()
	store, err := app.OpenStore(ctx, cfg, logger.WithField("layer", "storage"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	reader := bufio.NewReader(in)
	if strings.TrimSpace(email) == "" {
		if email, err = prompt(reader, out, "Email: "); err != nil {
			return fmt.Errorf("read email: %w", err)
		}
	}
	email = domain.NormalizeEmail(email)

	// Занятый email сообщаем до запроса пароля.
	if _, err := store.GetUserByEmail(ctx, email); err == nil {
		_, err = fmt.Fprintf(out, "User with email %s already exists.\n", email)
		return err
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("lookup user: %w", err)
	}

	if password == "" {
		if password, err = prompt(reader, out, "Password: "); err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}

	accounts := account.NewService(store, auth.NewPasswordHasher(cfg.BcryptCost), nil, logger.WithField("layer", "account"))
	user, err := accounts.Register(ctx, email, password)
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		_, err = fmt.Fprintf(out, "User with email %s already exists.\n", email)
		return err
	case err != nil:
		return fmt.Errorf("create user: %w", err)
	}

	_, err = fmt.Fprintf(out, "User created successfully! id=%d\n", user.ID)
	return err
}

func prompt(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	if _, err := io.WriteString(out, label); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return "", errEmptyInput
	}
	return line, nil
}

func cliLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(log.WarnLevel)
	return log.NewEntry(logger).WithField("component", "create-user")
}
