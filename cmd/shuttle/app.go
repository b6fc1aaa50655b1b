package main

import (
	"context"

	"github.com/pkordes/shuttle-control/internal/archive"
	"github.com/pkordes/shuttle-control/internal/auth"
	"github.com/pkordes/shuttle-control/internal/report"
	"github.com/pkordes/shuttle-control/internal/repo"
	"github.com/pkordes/shuttle-control/internal/service"
)

// app holds the services built on one store.
type app struct {
	tokens      *auth.Tokens
	auth        *service.AuthService
	passengers  *service.PassengerService
	conductors  *service.ConductorService
	users       *service.UserService
	signatures  *service.SignatureService
	credentials *service.CredentialService
	trips       *service.TripService
	reports     *service.ReportService
}

// newApp wires the services around tokens. notify may be nil.
func newApp(ctx context.Context, s repo.Store, tokens *auth.Tokens, notify service.TripNotifier) (*app, error) {
	var (
		passengerRepo  = repo.NewPassengerRepo(s)
		conductorRepo  = repo.NewConductorRepo(s)
		userRepo       = repo.NewUserRepo(s)
		signatureRepo  = repo.NewSignatureRepo(s)
		credentialRepo = repo.NewCredentialRepo(s)
		tripRepo       = repo.NewTripRepo(s)
	)

	var archiver service.Archiver
	if cfg.ReportBucket != "" {
		a, err := archive.NewS3(ctx, archive.Options{
			Bucket:          cfg.ReportBucket,
			Region:          cfg.ReportRegion,
			Prefix:          cfg.ReportPrefix,
			Endpoint:        cfg.ReportEndpoint,
			AccessKeyID:     cfg.ReportAccessKeyID,
			SecretAccessKey: cfg.ReportSecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("report archive enabled", "bucket", cfg.ReportBucket, "prefix", cfg.ReportPrefix)
		archiver = a
	}

	return &app{
		tokens: tokens,
		auth: service.NewAuthService(userRepo, conductorRepo, credentialRepo, tokens, service.RootCredentials{
			Username: cfg.RootUsername,
			Password: cfg.RootPassword,
		}),
		passengers:  service.NewPassengerService(passengerRepo),
		conductors:  service.NewConductorService(conductorRepo),
		users:       service.NewUserService(userRepo),
		signatures:  service.NewSignatureService(signatureRepo),
		credentials: service.NewCredentialService(credentialRepo, conductorRepo),
		trips:       service.NewTripService(tripRepo, passengerRepo, conductorRepo, notify),
		reports: service.NewReportService(tripRepo, passengerRepo, conductorRepo, signatureRepo,
			cfg.Location(),
			report.Letterhead{Company: cfg.CompanyName, RIF: cfg.CompanyRIF},
			archiver,
		),
	}, nil
}

func newTokens() *auth.Tokens {
	return auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
}
