package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"studentblog/app/repositories"
)

// Version is reported by the version command.
const Version = "1.0.0"

// HandleCommand runs one CLI command and returns its exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		osExit(1)
		return 1
	}

	switch args[0] {
	case "serve":
		return RunAppServer(args[1:])
	case "db":
		return handleDBCommand(args[1:])
	case "version":
		fmt.Printf("studentblog version %s\n", Version)
		return 0
	case "help", "-h", "--help":
		printHelp()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printHelp()
		osExit(1)
		return 1
	}
}

func handleDBCommand(args []string) int {
	if len(args) < 1 {
		fmt.Println("Error: db requires a subcommand (clean, init, backup, restore)")
		osExit(1)
		return 1
	}

	path, err := databasePath()
	if err != nil {
		fmt.Printf("Failed to resolve database path: %v\n", err)
		return 1
	}

	switch args[0] {
	case "clean":
		return clean(path)
	case "init":
		return initDB(path)
	case "backup":
		return backup(path)
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			osExit(1)
			return 1
		}
		return restore(path, args[1])
	default:
		fmt.Printf("Unknown db command: %s\n\n", args[0])
		printHelp()
		osExit(1)
		return 1
	}
}

func printHelp() {
	helpText := `Usage: studentblog <command> [options]

Commands:
  serve [--config <file>] [--addr <addr>] [--store badger|mongo] [--log-level <level>]
                                  Run the blog API
  db clean                        Remove the Badger database
  db init                         Initialize a new empty database
  db backup                       Create a backup of the database
  db restore <file>               Restore the database from a backup
  version                         Show version information
  help                            Display this help message
`
	fmt.Println(helpText)
}

// clean removes the database directory.
func clean(path string) int {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 1
	}

	if err := os.RemoveAll(path); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// initDB creates a new empty database.
func initDB(path string) int {
	if _, err := os.Stat(path); err == nil {
		fmt.Println("Database already exists. Use 'db clean' first if you want to reinitialize.")
		return 1
	}

	repo, err := repositories.NewRepository(path)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer repo.Close()

	fmt.Println("Database initialized successfully")
	return 0
}

// backup writes a full backup of the database to backupDir.
func backup(path string) int {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return 1
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	repo, err := repositories.NewRepository(path)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer repo.Close()

	backupFile := filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if _, err := repo.DB().Backup(f, 0); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore replaces the database with the contents of backupFile.
func restore(path, backupFile string) int {
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if _, err := os.Stat(path); err == nil {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(path); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	repo, err := repositories.NewRepository(path)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer repo.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return repo.DB().Load(f, 4)
	}()
	if err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}
