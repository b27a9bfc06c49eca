package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/railbook/railbook_core/internal/db"
)

func main() {
	email := flag.String("email", "", "Admin account email")
	name := flag.String("name", "Administrator", "Display name")
	password := flag.String("password", "", "Admin password (min 8 characters)")
	flag.Parse()

	if *email == "" || len(*password) < 8 {
		fmt.Println("Error: -email and -password (min 8 characters) are required")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error hashing password: %v\n", err)
		os.Exit(1)
	}

	pool, err := db.GetDB()
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = pool.Exec(ctx, `
		INSERT INTO users (email, name, password_hash, role)
		VALUES ($1, $2, $3, 'admin')
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, role = 'admin'
	`, *email, *name, string(hash))
	if err != nil {
		fmt.Printf("Error writing admin account: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Println("🔑 Admin account ready")
	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Printf("Email: %s\n", *email)
	fmt.Println("\n⚠️  Store the password securely; only its hash is kept.")
}
