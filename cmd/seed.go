package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/propflow/propertyflow/internal/config"
	"github.com/propflow/propertyflow/internal/database"
	"github.com/propflow/propertyflow/internal/model"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/workflow"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed an initial admin account",
	Long: `Create an initial admin account so the system can be bootstrapped.
Subsequent users are created by the admin through the API.
The command is idempotent: if the email already exists, nothing is changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if password == "" {
			return fmt.Errorf("--password is required")
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			if sqlDB != nil {
				sqlDB.Close()
			}
		}()

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		users := repository.NewUserRepository(db)
		if _, err := users.FindActiveByEmail(email); err == nil {
			log.Printf("Admin account %s already exists, nothing to do", email)
			return nil
		} else if !repository.IsNotFound(err) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		now := time.Now()
		admin := &model.UserModel{
			ID:           uuid.New().String(),
			FullName:     "System Administrator",
			Email:        email,
			Position:     string(workflow.RoleAdmin),
			EmployeeID:   "ADMIN-001",
			PasswordHash: string(hash),
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(admin); err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}

		log.Printf("Admin account %s created", email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
	seedCmd.Flags().String("email", "admin@propertyflow.local", "Admin account email")
	seedCmd.Flags().String("password", "", "Admin account password (required)")
}
