package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flatrent-backend/models"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "flatrent_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

// SeedDatabase creates a demo owner, tenant and flat for local development.
func SeedDatabase() {
	var userCount int64
	DB.Model(&models.User{}).Count(&userCount)
	if userCount > 0 {
		log.Println("demo data already seeded")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("warning: failed to hash demo password: %v", err)
		return
	}

	owner := models.User{
		Role:     models.RoleOwner,
		FullName: "Demo Owner",
		Email:    "owner@flatrent.local",
		Password: string(hash),
		Verified: true,
	}
	tenant := models.User{
		Role:     models.RoleTenant,
		FullName: "Demo Tenant",
		Email:    "tenant@flatrent.local",
		Password: string(hash),
		Verified: true,
	}
	if err := DB.Create(&owner).Error; err != nil {
		log.Printf("warning: failed to seed demo owner: %v", err)
		return
	}
	if err := DB.Create(&tenant).Error; err != nil {
		log.Printf("warning: failed to seed demo tenant: %v", err)
		return
	}

	flat := models.Flat{
		OwnerID:           owner.ID,
		AddressLine:       "12 Demo Street",
		City:              "Berlin",
		PostalCode:        "10115",
		MonthlyRentalCost: 950,
		Rooms:             2,
		AreaSqm:           54,
		Furnished:         true,
		Status:            models.FlatStatusAvailable,
	}
	if err := DB.Create(&flat).Error; err != nil {
		log.Printf("warning: failed to seed demo flat: %v", err)
		return
	}

	log.Println("demo data seeded")
}

func ConnectDatabase(seedDemoData bool) error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	// AutoMigrate in parent->child order.
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Flat{},
		&models.Booking{},
		&models.Extension{},
		&models.Payment{},
		&models.Review{},
	); err != nil {
		return err
	}

	if seedDemoData {
		SeedDatabase()
	}
	return nil
}
