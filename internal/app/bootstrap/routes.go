// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	filesfeature "github.com/imagenix/mediateca/internal/app/features/files"
	foldersfeature "github.com/imagenix/mediateca/internal/app/features/folders"
	groupsfeature "github.com/imagenix/mediateca/internal/app/features/groups"
	healthfeature "github.com/imagenix/mediateca/internal/app/features/health"
	tagsfeature "github.com/imagenix/mediateca/internal/app/features/tags"
	usersfeature "github.com/imagenix/mediateca/internal/app/features/users"
	filestore "github.com/imagenix/mediateca/internal/app/store/files"
	folderstore "github.com/imagenix/mediateca/internal/app/store/folders"
	groupstore "github.com/imagenix/mediateca/internal/app/store/groups"
	tagstore "github.com/imagenix/mediateca/internal/app/store/tags"
	userstore "github.com/imagenix/mediateca/internal/app/store/users"
	"github.com/imagenix/mediateca/internal/app/system/authn"
	"github.com/imagenix/mediateca/internal/app/system/mailer"
	"github.com/imagenix/mediateca/internal/app/system/storage"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed. It builds the stores, the token signer, the
// storage provider and the mailer, then mounts every feature under /api.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	groups := groupstore.New(db)
	folders := folderstore.New(db)
	files := filestore.New(db)
	tags := tagstore.New(db)

	signer := authn.NewSigner(appCfg.JWTSecret, appCfg.JWTTTL)
	authed := authn.Middleware(signer, users, logger)

	provider, err := buildStorage(appCfg)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	mail := mailer.NewSMTP(mailer.SMTPConfig{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
	})

	r := chi.NewRouter()

	r.Mount("/health", healthfeature.Routes(&healthfeature.Handler{DB: db, Log: logger}))

	usersHandler := usersfeature.NewHandler(users, groups, signer, mail, appCfg.BaseURL, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler, authed))

	groupsHandler := groupsfeature.NewHandler(groups, logger)
	r.Mount("/api/groups", groupsfeature.Routes(groupsHandler, authed))

	foldersHandler := foldersfeature.NewHandler(folders, groups, logger)
	r.Mount("/api/folders", foldersfeature.Routes(foldersHandler, authed))

	filesHandler := filesfeature.NewHandler(files, folders, groups, tags, provider, logger)
	r.Mount("/api/files", filesfeature.Routes(filesHandler, authed))

	tagsHandler := tagsfeature.NewHandler(tags, logger)
	r.Mount("/api/tags", tagsfeature.Routes(tagsHandler, authed))

	// Locally stored uploads are served straight from disk.
	if appCfg.StorageType == "local" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	return r, nil
}

func buildStorage(appCfg AppConfig) (storage.Provider, error) {
	if appCfg.StorageType == "minio" {
		return storage.NewMinIO(context.Background(), storage.MinIOConfig{
			Endpoint:  appCfg.MinIOEndpoint,
			AccessKey: appCfg.MinIOAccessKey,
			SecretKey: appCfg.MinIOSecretKey,
			Bucket:    appCfg.MinIOBucket,
			UseSSL:    appCfg.MinIOUseSSL,
		})
	}
	return storage.NewLocal(appCfg.StorageLocalPath, appCfg.BaseURL+appCfg.StorageLocalURL)
}
