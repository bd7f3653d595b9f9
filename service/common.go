package service

import (
	"fmt"
	"os"

	"studentblog/app/config"
)

// dbPath overrides the configured Badger directory when set.
var dbPath string

// backupDir is where `db backup` writes its files.
var backupDir = "data/backups"

var osExit = os.Exit

// databasePath returns the Badger directory the db commands operate on.
func databasePath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	cfg, err := config.Load("")
	if err != nil {
		return "", err
	}
	if cfg.BadgerPath == "" {
		return "", fmt.Errorf("%w: badgerPath is empty", config.ErrInvalidConfig)
	}
	return cfg.BadgerPath, nil
}

// confirm asks a yes/no question on stdout and reads the answer from stdin.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}
