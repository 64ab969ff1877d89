// CLI tool to create a user with a bcrypt-hashed password and a fresh auth token.
// Usage: go run ./cmd/create-user [--admin] (from the repo root)
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	admin := flag.Bool("admin", false, "create the user with the admin role (can edit products)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	conn, err := pgx.Connect(context.Background(), os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(context.Background())

	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label + ": ")
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	email := strings.ToLower(prompt("Email"))
	firstName := prompt("First name")
	lastName := prompt("Last name")
	password := prompt("Password")
	if email == "" || len(password) < 6 {
		fmt.Fprintln(os.Stderr, "Email is required and password must be at least 6 characters")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	role := "user"
	if *admin {
		role = "admin"
	}
	authToken := uuid.New().String()

	var userID int
	err = conn.QueryRow(context.Background(),
		`INSERT INTO users (email, first_name, last_name, role, password, auth_token)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		email, firstName, lastName, role, string(hash), authToken,
	).Scan(&userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Email:      %s\n", email)
	fmt.Printf("  Role:       %s\n", role)
	fmt.Printf("  Auth Token: %s\n", authToken)
}
