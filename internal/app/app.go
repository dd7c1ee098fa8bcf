package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/filevault/filevault/internal/config"
	"github.com/filevault/filevault/internal/db"
	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/service"
	"github.com/filevault/filevault/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	UserRepository repository.UserRepository
	AuthService    *service.AuthService
	EmailService   *service.EmailService
	FileService    *service.FileService
	FolderService  *service.FolderService
	ShareService   *service.ShareService
	StorageService *service.StorageService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	fileRepository := repository.NewFileRepository(database)
	folderRepository := repository.NewFolderRepository(database)
	shareRepository := repository.NewShareRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		userRepository,
		emailService,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.IsProduction(),
	)
	fileService := service.NewFileService(fileRepository, folderRepository, fileStorage)
	folderService := service.NewFolderService(folderRepository, fileRepository)
	shareService := service.NewShareService(shareRepository, cfg.AppURL)
	storageService := service.NewStorageService(fileRepository, cfg.StorageQuotaBytes)

	return &App{
		Cfg:            cfg,
		DB:             database,
		UserRepository: userRepository,
		AuthService:    authService,
		EmailService:   emailService,
		FileService:    fileService,
		FolderService:  folderService,
		ShareService:   shareService,
		StorageService: storageService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
