package main

import (
	"errors"
	"flag"
	"os"

	"github.com/sudheeshpoolakkal/vespera-sub001/config"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/infrastructure/database"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// Usage: migrate [-path migrations] up|down|version
func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	path := flag.String("path", "migrations", "directory holding the SQL migrations")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	m, err := migrate.New("file://"+*path, database.URL(cfg.DB))
	if err != nil {
		logrus.Fatalf("Failed to create migrator: %v", err)
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			logrus.Fatalf("Failed to read version: %v", verr)
		}
		logrus.Infof("Schema version %d (dirty=%t)", version, dirty)
		return
	default:
		logrus.Fatalf("Unknown command %q, expected up, down or version", command)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logrus.Fatalf("Migration %s failed: %v", command, err)
	}
	logrus.Infof("Migration %s complete", command)
}
