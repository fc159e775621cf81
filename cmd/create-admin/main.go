// Command create-admin bootstraps an administrator account.
//
//	create-admin -email root@example.com -name "Root" -password ... [-role super_admin]
//
// The password may also come from ADMIN_PASSWORD so it stays out of shell history.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/blackicons2020/skillskonnect-sub001/internal/config"
	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/internal/service"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/database"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	name := flag.String("name", "Administrator", "display name")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "password, at least 8 characters")
	role := flag.String("role", string(domain.AdminRoleSuper), "admin role: super_admin, support or moderator")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		l := log.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.Log.ServiceName = "skillskonnect-create-admin"
	log.Init(cfg.Log)
	l := log.L()

	if *email == "" || len(*password) < 8 {
		flag.Usage()
		l.Fatal().Msg("email and a password of at least 8 characters are required")
	}
	adminRole := domain.AdminRole(*role)
	if !adminRole.Valid() {
		l.Fatal().Str("role", *role).Msg("unknown admin role")
	}

	db, err := database.New(cfg.Database.ToDatabaseConfig())
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := repository.Migrate(db); err != nil {
		l.Fatal().Err(err).Msg("failed to auto-migrate")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := service.CreateAdminAccount(ctx, repository.NewGormUserRepository(db), &domain.CreateAdminRequest{
		Name:      *name,
		Email:     *email,
		Password:  *password,
		AdminRole: adminRole,
	}, bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			l.Fatal().Str("email", *email).Msg("an account with this email already exists")
		}
		l.Fatal().Err(err).Msg("failed to create admin")
	}

	l.Info().Str(log.FieldUserID, user.ID).Str("admin_role", string(user.AdminRole)).Msg("admin account created")
}
