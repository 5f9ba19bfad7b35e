package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"fruitygit/internal/auth"
	"fruitygit/internal/config"
	"fruitygit/internal/db"
	apperrors "fruitygit/internal/errors"
	"fruitygit/internal/logger"
	"fruitygit/internal/model"
	"fruitygit/internal/policy"
	"fruitygit/internal/repository"
	"fruitygit/internal/service"
)

type seedOptions struct {
	email    string
	password string
	name     string
	repos    []string
	private  bool
	readme   bool
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &seedOptions{}
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Create a demo user and repositories",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	addFlags(cmd.Flags(), opts)
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func addFlags(fs *pflag.FlagSet, opts *seedOptions) {
	fs.StringVar(&opts.email, "email", "", "user email")
	fs.StringVar(&opts.password, "password", "", "user password, at least six characters")
	fs.StringVar(&opts.name, "name", "Demo User", "display name")
	fs.StringSliceVar(&opts.repos, "repo", []string{"demo"}, "repository to create, repeatable")
	fs.BoolVar(&opts.private, "private", false, "create repositories as private")
	fs.BoolVar(&opts.readme, "readme", true, "commit a README.md to newly created repositories")
}

func run(ctx context.Context, opts *seedOptions) error {
	if len(opts.password) < 6 {
		return fmt.Errorf("password must be at least six characters")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty).With().Str("cmd", "seed").Logger()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(gormDB, false); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info().Msg("database migrations completed")

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	userRepo := repository.NewUserRepository(gormDB)
	authService := service.NewAuthService(
		userRepo,
		repository.NewRefreshTokenRepository(gormDB),
		jwtService,
		auth.NewTokenStore(nil),
		cfg.RefreshTokenTTL,
		log,
	)
	repoService := service.NewRepositoryService(
		repository.NewRepoRepository(gormDB),
		nil,
		cfg.ReposRoot,
		cfg.MaxUploadBytes,
		log,
	)

	user, err := ensureUser(ctx, authService, opts, log)
	if err != nil {
		return err
	}
	owner := policy.Principal{UserID: user.ID, Name: user.Name, Email: user.Email}

	created, skipped := 0, 0
	for _, name := range opts.repos {
		repo, err := repoService.Init(ctx, owner, name, opts.private, "seeded repository")
		if errors.Is(err, apperrors.ErrRepositoryExists) {
			log.Info().Str("repo", name).Msg("repository exists, skipping")
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("init %s: %w", name, err)
		}
		created++

		if opts.readme {
			readme := fmt.Sprintf("# %s\n\nSeeded for %s.\n", repo.Name, user.Email)
			_, err := repoService.Commit(ctx, owner, repo.Name, service.Upload{
				FileName: "README.md",
				Size:     int64(len(readme)),
				Content:  strings.NewReader(readme),
			}, "Initial commit", "Add README")
			if err != nil {
				return fmt.Errorf("commit README to %s: %w", name, err)
			}
		}
	}

	log.Info().
		Str("email", user.Email).
		Int("created", created).
		Int("skipped", skipped).
		Msg("seed completed")
	return nil
}

// ensureUser registers the user, or signs in when the email is taken.
func ensureUser(ctx context.Context, authService service.AuthService, opts *seedOptions, log zerolog.Logger) (*model.User, error) {
	pair, err := authService.Register(ctx, opts.email, opts.password, opts.name)
	if errors.Is(err, apperrors.ErrUserAlreadyExists) {
		log.Info().Str("email", opts.email).Msg("user exists, signing in")
		pair, err = authService.Login(ctx, opts.email, opts.password)
	}
	if err != nil {
		return nil, fmt.Errorf("ensure user %s: %w", opts.email, err)
	}
	return pair.User, nil
}
